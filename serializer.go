package graceful

import (
	"errors"
	"fmt"
	"reflect"
)

// ObjectDict is the internal form produced by decoding a representation,
// keyed by field source (not field name).
type ObjectDict map[string]any

// ObjectValidator performs whole-object validation (for example cross-field
// consistency) after every field decoded cleanly. Returned errors are
// appended to the aggregate validation error.
type ObjectValidator func(obj ObjectDict, partial bool) error

// Serializer converts between internal objects and wire representations
// using an ordered collection of field descriptors. Declaration order fixes
// representation key order and drives self-description.
type Serializer struct {
	order    []Field
	index    map[string]int
	validate ObjectValidator
}

// SerializerOption configures a Serializer at construction time.
type SerializerOption func(*Serializer)

// WithObjectValidator installs a whole-object validation hook run by Decode
// after field-level processing succeeds.
func WithObjectValidator(v ObjectValidator) SerializerOption {
	return func(s *Serializer) {
		s.validate = v
	}
}

// NewSerializer builds a serializer from fields in declaration order,
// rejecting duplicate names, missing coercion rules, and fields marked both
// read-only and write-only.
func NewSerializer(fields []Field, opts ...SerializerOption) (*Serializer, error) {
	s := &Serializer{
		order: make([]Field, 0, len(fields)),
		index: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, configErrorf("field with empty name")
		}
		if f.Decode == nil || f.Encode == nil {
			return nil, configErrorf("field %q has an incomplete coercion pair", f.Name)
		}
		if f.ReadOnly && f.WriteOnly {
			return nil, configErrorf("field %q cannot be both read-only and write-only", f.Name)
		}
		if _, ok := s.index[f.Name]; ok {
			return nil, configErrorf("duplicate field %q", f.Name)
		}
		s.index[f.Name] = len(s.order)
		s.order = append(s.order, f)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MustSerializer is like NewSerializer but panics on configuration errors.
// Intended for package-level schema definitions.
func MustSerializer(fields []Field, opts ...SerializerOption) *Serializer {
	s, err := NewSerializer(fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns the field descriptors in declaration order.
func (s *Serializer) Fields() []Field {
	fields := make([]Field, len(s.order))
	copy(fields, s.order)
	return fields
}

// Encode converts an internal object into its ordered wire representation.
// Fields are visited in declaration order; write-only fields are skipped.
// A nil or absent attribute encodes as null (an empty list for Many fields)
// so individual field encoders never deal with missing values. Encode
// failures are not validation errors and propagate unwrapped.
func (s *Serializer) Encode(obj any) (*Rep, error) {
	rep := NewRep()

	for _, f := range s.order {
		if f.WriteOnly {
			continue
		}

		attr, ok := f.read(obj)
		if !ok || attr == nil {
			if f.Many {
				rep.Set(f.Name, []any{})
			} else {
				rep.Set(f.Name, nil)
			}
			continue
		}

		if f.Many {
			items, err := asSequence(attr)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			encoded := make([]any, len(items))
			for i, item := range items {
				v, err := f.Encode(item)
				if err != nil {
					return nil, fmt.Errorf("field %q: %w", f.Name, err)
				}
				encoded[i] = v
			}
			rep.Set(f.Name, encoded)
			continue
		}

		v, err := f.Encode(attr)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		rep.Set(f.Name, v)
	}

	return rep, nil
}

// Decode converts a raw representation mapping into a validated object dict
// keyed by field source. Fields are visited in declaration order; read-only
// fields are skipped on this path and reported as forbidden when supplied.
// Absent fields are skipped silently when partial is true and recorded in
// the missing bucket otherwise. Coercion failures land in the failed bucket,
// validator failures in the invalid bucket; processing continues so every
// problem is reported at once. The whole-object hook runs only when all
// field-level processing succeeded. A non-nil error is a *ValidationError.
func (s *Serializer) Decode(representation map[string]any, partial bool) (ObjectDict, error) {
	obj := make(ObjectDict)
	decErr := &ValidationError{}

	for _, f := range s.order {
		raw, present := representation[f.Name]

		if f.ReadOnly {
			if present {
				decErr.Forbidden = append(decErr.Forbidden, f.Name)
			}
			continue
		}

		if !present {
			if !partial {
				decErr.Missing = append(decErr.Missing, f.Name)
			}
			continue
		}

		value, failure := f.decodeValue(raw)
		if failure != nil {
			switch failure.stage {
			case stageCoerce:
				decErr.Failed = append(decErr.Failed, Failure{Name: f.Name, Message: failure.err.Error()})
			case stageValidate:
				decErr.Invalid = append(decErr.Invalid, Failure{Name: f.Name, Message: failure.err.Error()})
			}
			continue
		}

		f.store(obj, value)
	}

	if decErr.empty() && s.validate != nil {
		if err := s.validate(obj, partial); err != nil {
			var nested *ValidationError
			if errors.As(err, &nested) {
				decErr.Missing = append(decErr.Missing, nested.Missing...)
				decErr.Forbidden = append(decErr.Forbidden, nested.Forbidden...)
				decErr.Failed = append(decErr.Failed, nested.Failed...)
				decErr.Invalid = append(decErr.Invalid, nested.Invalid...)
				decErr.Object = append(decErr.Object, nested.Object...)
			} else {
				decErr.Object = append(decErr.Object, err.Error())
			}
		}
	}

	if !decErr.empty() {
		return nil, decErr
	}
	return obj, nil
}

type decodeStage int

const (
	stageCoerce decodeStage = iota
	stageValidate
)

type decodeFailure struct {
	stage decodeStage
	err   error
}

// decodeValue runs the field's coercion and validator chain, element-wise
// for Many fields with order and count preserved.
func (f Field) decodeValue(raw any) (any, *decodeFailure) {
	if f.Many {
		items, err := asSequence(raw)
		if err != nil {
			return nil, &decodeFailure{stage: stageCoerce, err: err}
		}
		decoded := make([]any, len(items))
		for i, item := range items {
			v, err := f.Decode(item)
			if err != nil {
				return nil, &decodeFailure{stage: stageCoerce, err: err}
			}
			decoded[i] = v
		}
		if err := runValidators(f.Validators, decoded); err != nil {
			return nil, &decodeFailure{stage: stageValidate, err: err}
		}
		return decoded, nil
	}

	v, err := f.Decode(raw)
	if err != nil {
		return nil, &decodeFailure{stage: stageCoerce, err: err}
	}
	if err := runValidators(f.Validators, v); err != nil {
		return nil, &decodeFailure{stage: stageValidate, err: err}
	}
	return v, nil
}

// describe renders the self-description of every field in declaration order.
func (s *Serializer) describe() *Rep {
	d := NewRep()
	for _, f := range s.order {
		d.Set(f.Name, f.describe())
	}
	return d
}

// asSequence normalizes any slice or array into []any, preserving order.
func asSequence(value any) ([]any, error) {
	if items, ok := value.([]any); ok {
		return items, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%v is not a sequence", value)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}
