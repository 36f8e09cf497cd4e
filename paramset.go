package graceful

import (
	"net/url"
)

// ParamMap holds resolved parameter values keyed by parameter name. Absent
// optional parameters are omitted entirely, so presence of a key is explicit
// information that the parameter was specified (or defaulted).
type ParamMap map[string]any

// Params is an ordered, immutable set of parameter descriptors bound to a
// resource. Declaration order is preserved and drives self-description.
type Params struct {
	order []Param
	index map[string]int
}

// NewParams builds a parameter set, rejecting invalid descriptor wiring:
// duplicate names, a missing coercion rule, or required combined with a
// default.
func NewParams(params ...Param) (*Params, error) {
	ps := &Params{
		order: make([]Param, 0, len(params)),
		index: make(map[string]int, len(params)),
	}
	for _, p := range params {
		if p.Name == "" {
			return nil, configErrorf("parameter with empty name")
		}
		if p.Coerce == nil {
			return nil, configErrorf("parameter %q has no coercion rule", p.Name)
		}
		if _, ok := ps.index[p.Name]; ok {
			return nil, configErrorf("duplicate parameter %q", p.Name)
		}
		if p.Required && p.HasDefault {
			return nil, configErrorf(
				"parameter %q: initialization with both required and default makes no sense", p.Name)
		}
		ps.index[p.Name] = len(ps.order)
		ps.order = append(ps.order, p)
	}
	return ps, nil
}

// MustParams is like NewParams but panics on configuration errors. Intended
// for package-level schema definitions.
func MustParams(params ...Param) *Params {
	ps, err := NewParams(params...)
	if err != nil {
		panic(err)
	}
	return ps
}

// Len returns the number of declared parameters.
func (ps *Params) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.order)
}

// At returns the parameter at position i in declaration order.
func (ps *Params) At(i int) Param { return ps.order[i] }

// Get returns the parameter with the given name.
func (ps *Params) Get(name string) (Param, bool) {
	if ps == nil {
		return Param{}, false
	}
	i, ok := ps.index[name]
	if !ok {
		return Param{}, false
	}
	return ps.order[i], true
}

// Extend returns a new set with extra parameters appended. The receiver is
// not modified.
func (ps *Params) Extend(extra ...Param) (*Params, error) {
	all := make([]Param, 0, ps.Len()+len(extra))
	if ps != nil {
		all = append(all, ps.order...)
	}
	all = append(all, extra...)
	return NewParams(all...)
}

// Resolve turns a raw multi-valued query into a validated parameter mapping.
// Per descriptor, in declared order: absent required parameters are recorded
// as missing; absent parameters with a default coerce the default string;
// absent optional parameters are omitted. When multiple raw values arrive
// for a single-valued parameter the last occurrence wins. Many parameters
// coerce every raw value in arrival order and combine them with the
// container. Validators run after coercion, short-circuiting per parameter.
//
// All problems across all parameters are aggregated before failing, so a
// client sees every error at once. The returned error, if any, is a
// *ParamError; the mapping is nil in that case.
func (ps *Params) Resolve(query url.Values) (ParamMap, error) {
	params := make(ParamMap)
	resErr := &ParamError{}

	if ps == nil {
		return params, nil
	}

	for _, p := range ps.order {
		raw, supplied := query[p.Name]
		if !supplied || len(raw) == 0 {
			switch {
			case p.Required:
				resErr.Missing = append(resErr.Missing, p.Name)
				continue
			case p.HasDefault:
				raw = []string{p.Default}
			default:
				continue
			}
		}

		value, err := p.resolveRaw(raw)
		if err != nil {
			resErr.Invalid = append(resErr.Invalid, Failure{Name: p.Name, Message: err.Error()})
			continue
		}

		if err := runValidators(p.Validators, value); err != nil {
			resErr.Invalid = append(resErr.Invalid, Failure{Name: p.Name, Message: err.Error()})
			continue
		}

		params[p.Name] = value
	}

	if !resErr.empty() {
		return nil, resErr
	}
	return params, nil
}

// resolveRaw coerces the raw occurrences of one parameter into its stored
// value.
func (p Param) resolveRaw(raw []string) (any, error) {
	if !p.Many {
		// Last occurrence wins. This is a deliberate, documented policy:
		// clients repeating a single-valued parameter get deterministic
		// behavior instead of an accident of map iteration.
		return p.Coerce(raw[len(raw)-1])
	}

	values := make([]any, 0, len(raw))
	for _, r := range raw {
		v, err := p.Coerce(r)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return p.Container.apply(values), nil
}

// describe renders the self-description of every parameter in declaration
// order.
func (ps *Params) describe() *Rep {
	d := NewRep()
	if ps == nil {
		return d
	}
	for _, p := range ps.order {
		d.Set(p.Name, p.describe())
	}
	return d
}
