package graceful

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CoerceFunc converts one raw query-string value into its typed form.
type CoerceFunc func(raw string) (any, error)

// SpecRef points at an external document describing a value format. It is
// documentation metadata only and takes no part in coercion or validation.
type SpecRef struct {
	Name string
	URL  string
}

// Param describes one query-string parameter: its name, coercion rule,
// multiplicity, and default/required policy. Params are immutable after the
// owning Params set is built; the chainable With*/As* methods return
// modified copies for use at schema-definition time.
type Param struct {
	// Name is the query-string key. Unique within a Params set.
	Name string
	// Details is a verbose description used for self-documentation.
	Details string
	// Label is an optional short human-readable label.
	Label string
	// Required makes resolution fail when the parameter is absent.
	Required bool
	// Default is the raw string used when the parameter is absent. It runs
	// through the same coercion as a supplied value. HasDefault
	// distinguishes an empty-string default from no default at all.
	Default    string
	HasDefault bool
	// Many allows multiple occurrences in the query string; coerced values
	// are combined by Container.
	Many      bool
	Container Container
	// Coerce turns a raw string into the typed value.
	Coerce CoerceFunc
	// Validators run in order on the coerced (and combined) value.
	Validators []Validator
	// Type and Spec are documentation metadata.
	Type string
	Spec *SpecRef
}

// WithLabel returns a copy of the parameter with a human-readable label.
func (p Param) WithLabel(label string) Param {
	p.Label = label
	return p
}

// WithDefault returns a copy of the parameter with a raw string default.
// The default is coerced exactly like a supplied value.
func (p Param) WithDefault(raw string) Param {
	p.Default = raw
	p.HasDefault = true
	return p
}

// AsRequired returns a copy of the parameter marked required. Combining
// required with a default is rejected when the Params set is built.
func (p Param) AsRequired() Param {
	p.Required = true
	return p
}

// AsMany returns a copy of the parameter accepting multiple occurrences,
// combined by the given container strategy.
func (p Param) AsMany(c Container) Param {
	p.Many = true
	p.Container = c
	return p
}

// WithValidators returns a copy of the parameter with validators appended.
func (p Param) WithValidators(validators ...Validator) Param {
	p.Validators = append(p.Validators[:len(p.Validators):len(p.Validators)], validators...)
	return p
}

// describe renders the parameter's self-description entry.
func (p Param) describe() *Rep {
	d := NewRep()
	d.Set("label", orNil(p.Label))
	d.Set("details", p.Details)
	d.Set("required", p.Required)
	d.Set("many", p.Many)
	if p.Spec != nil {
		d.Set("spec", []string{p.Spec.Name, p.Spec.URL})
	} else {
		d.Set("spec", nil)
	}
	if p.HasDefault {
		d.Set("default", p.Default)
	} else {
		d.Set("default", nil)
	}
	if p.Type != "" {
		d.Set("type", p.Type)
	} else {
		d.Set("type", "unspecified")
	}
	return d
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// StringParam describes a parameter returned exactly as provided in the
// query string.
func StringParam(name, details string) Param {
	return Param{
		Name:    name,
		Details: details,
		Type:    "string",
		Coerce:  func(raw string) (any, error) { return raw, nil },
	}
}

// IntParam describes a parameter expressed as an integer number. Values
// resolve to int64.
func IntParam(name, details string) Param {
	return Param{
		Name:    name,
		Details: details,
		Type:    "integer",
		Coerce: func(raw string) (any, error) {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("could not parse %q as integer", raw)
			}
			return n, nil
		},
	}
}

// FloatParam describes a parameter expressed as a floating point number.
func FloatParam(name, details string) Param {
	return Param{
		Name:    name,
		Details: details,
		Type:    "float",
		Coerce: func(raw string) (any, error) {
			n, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("could not parse %q as float", raw)
			}
			return n, nil
		},
	}
}

// BoolParam describes a parameter expressed as a boolean. It accepts the
// forms understood by strconv.ParseBool.
func BoolParam(name, details string) Param {
	return Param{
		Name:    name,
		Details: details,
		Type:    "bool",
		Coerce: func(raw string) (any, error) {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("%q is not a valid boolean value", raw)
			}
			return b, nil
		},
	}
}

// DecimalParam describes a parameter expressed as an arbitrary-precision
// decimal number. Values resolve to decimal.Decimal.
func DecimalParam(name, details string) Param {
	return Param{
		Name:    name,
		Details: details,
		Type:    "decimal",
		Coerce: func(raw string) (any, error) {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("could not parse %q as decimal", raw)
			}
			return d, nil
		},
	}
}

// Base64Param describes a string parameter whose value is Base64 encoded on
// the wire. Values resolve to the decoded string.
func Base64Param(name, details string) Param {
	return Param{
		Name:    name,
		Details: details,
		Type:    "string",
		Spec: &SpecRef{
			Name: "RFC-4648 Section 4",
			URL:  "https://tools.ietf.org/html/rfc4648#section-4",
		},
		Coerce: func(raw string) (any, error) {
			b, err := base64.StdEncoding.DecodeString(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid base64 value: %v", err)
			}
			return string(b), nil
		},
	}
}

// TimeParam describes a parameter expressed as an RFC 3339 timestamp.
// Values resolve to time.Time.
func TimeParam(name, details string) Param {
	return Param{
		Name:    name,
		Details: details,
		Type:    "datetime",
		Spec: &SpecRef{
			Name: "RFC-3339",
			URL:  "https://tools.ietf.org/html/rfc3339",
		},
		Coerce: func(raw string) (any, error) {
			t, err := parseRFC3339(raw)
			if err != nil {
				return nil, fmt.Errorf("could not parse %q as RFC 3339 time", raw)
			}
			return t, nil
		},
	}
}

// DurationParam describes a parameter expressed in Go duration syntax,
// e.g. "1h30m". Values resolve to time.Duration.
func DurationParam(name, details string) Param {
	return Param{
		Name:    name,
		Details: details,
		Type:    "duration",
		Coerce: func(raw string) (any, error) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return nil, fmt.Errorf("could not parse %q as duration", raw)
			}
			return d, nil
		},
	}
}

func parseRFC3339(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, raw); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}
