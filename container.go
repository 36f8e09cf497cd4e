package graceful

type containerKind int

const (
	containerList containerKind = iota
	containerSet
	containerCustom
)

// Container selects how multiple coerced values of a Many parameter combine
// into the final stored value. The zero value behaves like OrderedList.
type Container struct {
	kind    containerKind
	combine func(values []any) any
}

// OrderedList keeps every coerced value in order of arrival. This is the
// default container.
func OrderedList() Container {
	return Container{kind: containerList}
}

// SetOf drops duplicate values, keeping the first occurrence of each.
// Coerced values must be comparable.
func SetOf() Container {
	return Container{kind: containerSet}
}

// Combine reduces the coerced values with an arbitrary function.
func Combine(fn func(values []any) any) Container {
	return Container{kind: containerCustom, combine: fn}
}

// apply combines coerced values according to the container strategy.
func (c Container) apply(values []any) any {
	switch c.kind {
	case containerSet:
		seen := make(map[any]struct{}, len(values))
		unique := make([]any, 0, len(values))
		for _, v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			unique = append(unique, v)
		}
		return unique
	case containerCustom:
		return c.combine(values)
	default:
		return values
	}
}
