package graceful

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

// Validator is a pure check run on an already-coerced value. Validators are
// composed into ordered chains evaluated short-circuit on first failure.
type Validator interface {
	Validate(value any) error
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(value any) error

// Validate calls f.
func (f ValidatorFunc) Validate(value any) error { return f(value) }

// Min returns a validator that rejects numeric values below min.
func Min(min float64) Validator {
	return ValidatorFunc(func(value any) error {
		n, ok := asFloat64(value)
		if !ok {
			return fmt.Errorf("%v is not a number", value)
		}
		if n < min {
			return fmt.Errorf("%v is not >= %v", value, min)
		}
		return nil
	})
}

// Max returns a validator that rejects numeric values above max.
func Max(max float64) Validator {
	return ValidatorFunc(func(value any) error {
		n, ok := asFloat64(value)
		if !ok {
			return fmt.Errorf("%v is not a number", value)
		}
		if n > max {
			return fmt.Errorf("%v is not <= %v", value, max)
		}
		return nil
	})
}

// Choices returns a validator that rejects values outside the given set.
func Choices(choices ...any) Validator {
	return ValidatorFunc(func(value any) error {
		for _, c := range choices {
			if c == value {
				return nil
			}
		}
		return fmt.Errorf("%v is not in %v", value, choices)
	})
}

// Match returns a validator that rejects strings not matching the pattern.
// The pattern is compiled once; an invalid pattern panics at construction
// time, before any request is served.
func Match(pattern string) Validator {
	compiled := regexp.MustCompile(pattern)
	return ValidatorFunc(func(value any) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%v is not a string", value)
		}
		if !compiled.MatchString(s) {
			return fmt.Errorf("%q does not match pattern: %s", s, compiled.String())
		}
		return nil
	})
}

// asFloat64 widens any supported numeric value to float64 for range checks.
func asFloat64(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	default:
		return 0, false
	}
}

// runValidators applies each validator in order and returns the first error.
func runValidators(validators []Validator, value any) error {
	for _, v := range validators {
		if err := v.Validate(value); err != nil {
			return err
		}
	}
	return nil
}
