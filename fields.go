package graceful

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// WholeObject is the wildcard source that passes the entire internal object
// to a field instead of a single attribute or key.
const WholeObject = "*"

// ConvertFunc converts a field value between its representation form and its
// internal form (one direction per function).
type ConvertFunc func(value any) (any, error)

// Getter reads the value backing a field from an internal object. ok is
// false when the object has no such attribute or key.
type Getter func(obj any, source string) (value any, ok bool)

// Setter stores a decoded field value into the object dict built by
// Serializer.Decode. Overriding it allows a single field to fan out into
// several underlying keys.
type Setter func(obj ObjectDict, source string, value any)

// Field describes one representation field: its name, coercion pair,
// visibility, multiplicity, and attribute-access strategy. Like Param, a
// Field is immutable once the owning Serializer is built; the chainable
// methods return modified copies.
type Field struct {
	// Name is the representation key. Unique within a Serializer.
	Name string
	// Details is a verbose description used for self-documentation.
	Details string
	// Label is an optional short human-readable label.
	Label string
	// Source is the attribute or key on the internal object backing this
	// field. Empty means the field name; WholeObject passes the whole
	// object.
	Source string
	// Many applies the coercion pair element-wise over an ordered sequence.
	Many bool
	// ReadOnly excludes the field from decoding; WriteOnly from encoding.
	ReadOnly  bool
	WriteOnly bool
	// Decode converts a representation value to its internal form; Encode
	// the inverse. Encode failures are not validation errors and propagate
	// to the caller unwrapped.
	Decode ConvertFunc
	Encode ConvertFunc
	// Validators run in order on the decoded value; never on encode.
	Validators []Validator
	// Getter and Setter override the default key-or-attribute access.
	Getter Getter
	Setter Setter
	// Type and Spec are documentation metadata.
	Type string
	Spec *SpecRef
}

// WithLabel returns a copy of the field with a human-readable label.
func (f Field) WithLabel(label string) Field {
	f.Label = label
	return f
}

// WithSource returns a copy of the field bound to a different attribute or
// key on the internal object.
func (f Field) WithSource(source string) Field {
	f.Source = source
	return f
}

// AsMany returns a copy of the field that applies its coercion pair
// element-wise over an ordered sequence.
func (f Field) AsMany() Field {
	f.Many = true
	return f
}

// AsReadOnly returns a copy of the field excluded from the decode path.
// Supplying a read-only field in a representation is a validation error.
func (f Field) AsReadOnly() Field {
	f.ReadOnly = true
	return f
}

// AsWriteOnly returns a copy of the field excluded from the encode path.
func (f Field) AsWriteOnly() Field {
	f.WriteOnly = true
	return f
}

// WithValidators returns a copy of the field with validators appended.
func (f Field) WithValidators(validators ...Validator) Field {
	f.Validators = append(f.Validators[:len(f.Validators):len(f.Validators)], validators...)
	return f
}

// WithMin returns a copy of the field rejecting decoded values below min.
func (f Field) WithMin(min float64) Field {
	return f.WithValidators(Min(min))
}

// WithMax returns a copy of the field rejecting decoded values above max.
func (f Field) WithMax(max float64) Field {
	return f.WithValidators(Max(max))
}

// WithAccess returns a copy of the field with a custom attribute-access
// strategy. Either function may be nil to keep the default.
func (f Field) WithAccess(getter Getter, setter Setter) Field {
	if getter != nil {
		f.Getter = getter
	}
	if setter != nil {
		f.Setter = setter
	}
	return f
}

// source returns the effective source key for this field.
func (f Field) source() string {
	if f.Source != "" {
		return f.Source
	}
	return f.Name
}

// read fetches the raw attribute backing this field from obj.
func (f Field) read(obj any) (any, bool) {
	if f.Getter != nil {
		return f.Getter(obj, f.source())
	}
	return ReadInstance(obj, f.source())
}

// store writes a decoded value into the object dict.
func (f Field) store(obj ObjectDict, value any) {
	if f.Setter != nil {
		f.Setter(obj, f.source(), value)
		return
	}
	obj[f.source()] = value
}

// describe renders the field's self-description entry.
func (f Field) describe() *Rep {
	d := NewRep()
	d.Set("label", orNil(f.Label))
	d.Set("details", f.Details)
	typ := f.Type
	if typ == "" {
		typ = "unspecified"
	}
	if f.Many {
		typ = "list of " + typ
	}
	d.Set("type", typ)
	if f.Spec != nil {
		d.Set("spec", []string{f.Spec.Name, f.Spec.URL})
	} else {
		d.Set("spec", nil)
	}
	return d
}

// ReadInstance is the default attribute-access strategy: a key lookup for
// maps, an exported-field lookup for structs, and the whole object for the
// WholeObject source.
func ReadInstance(obj any, source string) (any, bool) {
	if source == WholeObject {
		return obj, true
	}

	if m, ok := obj.(map[string]any); ok {
		v, ok := m[source]
		return v, ok
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(source))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		t := rv.Type()
		for i := range t.NumField() {
			sf := t.Field(i)
			if !sf.IsExported() {
				continue
			}
			if sf.Name == source || strings.EqualFold(sf.Name, source) {
				return rv.Field(i).Interface(), true
			}
		}
		return nil, false
	default:
		return nil, false
	}
}

// RawField describes a field passed through in the same form both ways.
func RawField(name, details string) Field {
	identity := func(value any) (any, error) { return value, nil }
	return Field{
		Name:    name,
		Details: details,
		Type:    "string",
		Decode:  identity,
		Encode:  identity,
	}
}

// IntField describes an integer field. Decoding accepts JSON numbers,
// numeric strings, and Go integer types; values decode to int64.
func IntField(name, details string) Field {
	return Field{
		Name:    name,
		Details: details,
		Type:    "int",
		Decode:  toInt64,
		Encode:  toInt64,
	}
}

// FloatField describes a floating point field.
func FloatField(name, details string) Field {
	return Field{
		Name:    name,
		Details: details,
		Type:    "float",
		Decode:  toFloat,
		Encode:  toFloat,
	}
}

// BoolField describes a boolean field. The wire representation defaults to
// JSON true/false; WithRepresentations substitutes custom wire values.
func BoolField(name, details string) Field {
	return Field{
		Name:    name,
		Details: details,
		Type:    "bool",
		Decode:  toBool,
		Encode:  func(value any) (any, error) { return toBool(value) },
	}
}

// WithRepresentations returns a copy of a boolean field using custom wire
// values for false and true. Decoding accepts exactly those two values;
// encoding emits them.
func (f Field) WithRepresentations(falseRep, trueRep any) Field {
	f.Decode = func(value any) (any, error) {
		switch value {
		case trueRep:
			return true, nil
		case falseRep:
			return false, nil
		default:
			return nil, fmt.Errorf("%s type value must be one of [%v %v]", f.Type, falseRep, trueRep)
		}
	}
	f.Encode = func(value any) (any, error) {
		b, err := toBool(value)
		if err != nil {
			return nil, err
		}
		if b.(bool) {
			return trueRep, nil
		}
		return falseRep, nil
	}
	return f
}

// TimeField describes an RFC 3339 timestamp field: strings on the wire,
// time.Time internally.
func TimeField(name, details string) Field {
	return Field{
		Name:    name,
		Details: details,
		Type:    "datetime",
		Spec: &SpecRef{
			Name: "RFC-3339",
			URL:  "https://tools.ietf.org/html/rfc3339",
		},
		Decode: func(value any) (any, error) {
			s, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%v is not an RFC 3339 string", value)
			}
			t, err := parseRFC3339(s)
			if err != nil {
				return nil, fmt.Errorf("could not parse %q as RFC 3339 time", s)
			}
			return t, nil
		},
		Encode: func(value any) (any, error) {
			t, ok := value.(time.Time)
			if !ok {
				return nil, fmt.Errorf("%v is not a time.Time", value)
			}
			return t.UTC().Format(time.RFC3339Nano), nil
		},
	}
}

func toInt64(value any) (any, error) {
	switch n := value.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
		return int64(n), nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q as integer", n)
		}
		return i, nil
	default:
		return nil, fmt.Errorf("%v is not an integer", value)
	}
}

func toFloat(value any) (any, error) {
	switch n := value.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse %q as float", n)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%v is not a float", value)
	}
}

func toBool(value any) (any, error) {
	switch b := value.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid boolean value", b)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("%v is not a boolean", value)
	}
}
