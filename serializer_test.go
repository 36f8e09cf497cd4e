package graceful_test

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swistakm/graceful"
)

func catFields() []graceful.Field {
	return []graceful.Field{
		graceful.RawField("name", "cat name"),
		graceful.IntField("age", "cat age in years").WithMin(0).WithMax(30),
	}
}

func TestNewSerializer_configuration_errors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		fields []graceful.Field
	}{
		"empty name": {
			fields: []graceful.Field{graceful.RawField("", "test")},
		},
		"missing coercion pair": {
			fields: []graceful.Field{{Name: "broken", Details: "test"}},
		},
		"read-only and write-only": {
			fields: []graceful.Field{
				graceful.RawField("f", "test").AsReadOnly().AsWriteOnly(),
			},
		},
		"duplicate name": {
			fields: []graceful.Field{
				graceful.RawField("f", "first"),
				graceful.IntField("f", "second"),
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := graceful.NewSerializer(tc.fields)
			require.Error(t, err)

			var cfgErr *graceful.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)

			assert.Panics(t, func() { graceful.MustSerializer(tc.fields) })
		})
	}
}

func TestSerializer_decode_then_encode(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer(catFields())

	obj, err := s.Decode(map[string]any{"name": "Molly", "age": "3"}, false)
	require.NoError(t, err)
	assert.Equal(t, graceful.ObjectDict{"name": "Molly", "age": int64(3)}, obj)

	rep, err := s.Encode(map[string]any(obj))
	require.NoError(t, err)

	data, err := json.Marshal(rep)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Molly","age":3}`, string(data),
		"representation keys follow field declaration order")
}

func TestSerializer_encode_key_order_is_stable(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.RawField("zebra", "test"),
		graceful.RawField("apple", "test"),
		graceful.RawField("mango", "test"),
	})

	obj := map[string]any{"zebra": 1, "apple": 2, "mango": 3}

	for range 5 {
		rep, err := s.Encode(obj)
		require.NoError(t, err)
		assert.Equal(t, []string{"zebra", "apple", "mango"}, rep.Keys())
	}
}

func TestSerializer_encode_struct(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.IntField("id", "test"),
		graceful.RawField("name", "test"),
	})

	rep, err := s.Encode(testCat{ID: 7, Name: "kitty"})
	require.NoError(t, err)

	id, _ := rep.Get("id")
	assert.Equal(t, int64(7), id)
	name, _ := rep.Get("name")
	assert.Equal(t, "kitty", name)
}

func TestSerializer_encode_nil_attribute(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.RawField("name", "test"),
		graceful.RawField("tags", "test").AsMany(),
	})

	rep, err := s.Encode(map[string]any{})
	require.NoError(t, err)

	name, ok := rep.Get("name")
	require.True(t, ok, "absent attributes still appear in the representation")
	assert.Nil(t, name)

	tags, _ := rep.Get("tags")
	assert.Equal(t, []any{}, tags, "absent sequence encodes as an empty list")
}

func TestSerializer_encode_failure_propagates(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{graceful.IntField("age", "test")})

	_, err := s.Encode(map[string]any{"age": "not a number"})
	require.Error(t, err)

	var valErr *graceful.ValidationError
	assert.False(t, errors.As(err, &valErr), "encode failures are not validation errors")
}

func TestSerializer_encode_skips_validators(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.IntField("age", "test").WithMin(10),
	})

	rep, err := s.Encode(map[string]any{"age": 3})
	require.NoError(t, err, "validators run on decode only")

	age, _ := rep.Get("age")
	assert.Equal(t, int64(3), age)
}

func TestSerializer_decode_missing_fields(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer(catFields())

	_, err := s.Decode(map[string]any{"name": "Molly"}, false)
	require.Error(t, err)

	var valErr *graceful.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"age"}, valErr.Missing)

	obj, err := s.Decode(map[string]any{"name": "Molly"}, true)
	require.NoError(t, err, "partial decode skips absent fields")
	assert.Equal(t, graceful.ObjectDict{"name": "Molly"}, obj)
}

func TestSerializer_decode_forbidden_read_only(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.IntField("id", "test").AsReadOnly(),
		graceful.RawField("name", "test"),
	})

	_, err := s.Decode(map[string]any{"id": 1, "name": "Molly"}, false)
	require.Error(t, err)

	var valErr *graceful.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"id"}, valErr.Forbidden)

	obj, err := s.Decode(map[string]any{"name": "Molly"}, false)
	require.NoError(t, err, "read-only fields are never required on decode")
	assert.Equal(t, graceful.ObjectDict{"name": "Molly"}, obj)
}

func TestSerializer_decode_failure_buckets(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.IntField("age", "test"),
		graceful.IntField("weight", "test").WithMin(1),
		graceful.RawField("name", "test"),
	})

	_, err := s.Decode(map[string]any{
		"age":    "three",
		"weight": 0,
	}, false)
	require.Error(t, err)

	var valErr *graceful.ValidationError
	require.ErrorAs(t, err, &valErr)

	require.Len(t, valErr.Failed, 1, "coercion failures land in the failed bucket")
	assert.Equal(t, "age", valErr.Failed[0].Name)

	require.Len(t, valErr.Invalid, 1, "validator failures land in the invalid bucket")
	assert.Equal(t, "weight", valErr.Invalid[0].Name)

	assert.Equal(t, []string{"name"}, valErr.Missing,
		"processing continues so every problem is reported at once")
}

func TestSerializer_decode_ignores_unknown_keys(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer(catFields())

	obj, err := s.Decode(map[string]any{
		"name":  "Molly",
		"age":   3,
		"color": "black",
	}, false)
	require.NoError(t, err)
	assert.NotContains(t, obj, "color")
}

func TestSerializer_decode_keyed_by_source(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.IntField("age", "test").WithSource("age_years"),
	})

	obj, err := s.Decode(map[string]any{"age": 3}, false)
	require.NoError(t, err)
	assert.Equal(t, graceful.ObjectDict{"age_years": int64(3)}, obj)
}

func TestSerializer_decode_many(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.IntField("scores", "test").AsMany(),
	})

	obj, err := s.Decode(map[string]any{"scores": []any{"1", float64(2), 3}}, false)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, obj["scores"])

	_, err = s.Decode(map[string]any{"scores": "not a list"}, false)
	require.Error(t, err)

	var valErr *graceful.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Len(t, valErr.Failed, 1)
	assert.Equal(t, "scores", valErr.Failed[0].Name)
}

func TestSerializer_encode_many_element_wise(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.IntField("scores", "test").AsMany(),
	})

	rep, err := s.Encode(map[string]any{"scores": []int{1, 2, 3}})
	require.NoError(t, err)

	scores, _ := rep.Get("scores")
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, scores)
}

func TestSerializer_write_only_excluded_from_encode(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		graceful.RawField("name", "test"),
		graceful.RawField("password", "test").AsWriteOnly(),
	})

	rep, err := s.Encode(map[string]any{"name": "Molly", "password": "hunter2"})
	require.NoError(t, err)

	_, ok := rep.Get("password")
	assert.False(t, ok)

	obj, err := s.Decode(map[string]any{"name": "Molly", "password": "hunter2"}, false)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", obj["password"], "write-only fields still decode")
}

func TestSerializer_whole_object_source(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer([]graceful.Field{
		{
			Name:    "summary",
			Details: "test",
			Source:  graceful.WholeObject,
			Encode: func(value any) (any, error) {
				m := value.(map[string]any)
				return len(m), nil
			},
			Decode: func(value any) (any, error) { return value, nil },
		},
	})

	rep, err := s.Encode(map[string]any{"a": 1, "b": 2})
	require.NoError(t, err)

	summary, _ := rep.Get("summary")
	assert.Equal(t, 2, summary)
}

func TestSerializer_custom_setter_fan_out(t *testing.T) {
	t.Parallel()

	splitName := graceful.RawField("full_name", "test").WithAccess(nil,
		func(obj graceful.ObjectDict, source string, value any) {
			obj[source] = value
			obj[source+"_length"] = len(value.(string))
		})

	s := graceful.MustSerializer([]graceful.Field{splitName})

	obj, err := s.Decode(map[string]any{"full_name": "Molly"}, false)
	require.NoError(t, err)
	assert.Equal(t, graceful.ObjectDict{"full_name": "Molly", "full_name_length": 5}, obj)
}

func TestSerializer_object_validator(t *testing.T) {
	t.Parallel()

	hook := graceful.WithObjectValidator(func(obj graceful.ObjectDict, partial bool) error {
		if !partial && obj["name"] == obj["breed"] {
			return errors.New("name and breed must differ")
		}
		return nil
	})

	s := graceful.MustSerializer([]graceful.Field{
		graceful.RawField("name", "test"),
		graceful.RawField("breed", "test"),
	}, hook)

	obj, err := s.Decode(map[string]any{"name": "Molly", "breed": "sphynx"}, false)
	require.NoError(t, err)
	assert.Equal(t, "Molly", obj["name"])

	_, err = s.Decode(map[string]any{"name": "x", "breed": "x"}, false)
	require.Error(t, err)

	var valErr *graceful.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"name and breed must differ"}, valErr.Object)
}

func TestSerializer_object_validator_skipped_on_field_errors(t *testing.T) {
	t.Parallel()

	var hookRan bool
	s := graceful.MustSerializer(
		[]graceful.Field{graceful.IntField("age", "test")},
		graceful.WithObjectValidator(func(graceful.ObjectDict, bool) error {
			hookRan = true
			return nil
		}),
	)

	_, err := s.Decode(map[string]any{"age": "three"}, false)
	require.Error(t, err)
	assert.False(t, hookRan, "the hook runs only on field-level success")
}

func TestSerializer_object_validator_merges_nested_error(t *testing.T) {
	t.Parallel()

	s := graceful.MustSerializer(
		[]graceful.Field{graceful.RawField("name", "test")},
		graceful.WithObjectValidator(func(graceful.ObjectDict, bool) error {
			return &graceful.ValidationError{
				Invalid: []graceful.Failure{{Name: "name", Message: "too plain"}},
			}
		}),
	)

	_, err := s.Decode(map[string]any{"name": "cat"}, false)
	require.Error(t, err)

	var valErr *graceful.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Len(t, valErr.Invalid, 1)
	assert.Equal(t, "too plain", valErr.Invalid[0].Message)
	assert.Empty(t, valErr.Object)
}
