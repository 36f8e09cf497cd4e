package graceful_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swistakm/graceful"
)

func TestParamCoercion(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		param   graceful.Param
		raw     string
		want    any
		wantErr require.ErrorAssertionFunc
	}{
		"string passthrough": {
			param:   graceful.StringParam("p", "test"),
			raw:     "as-is",
			want:    "as-is",
			wantErr: require.NoError,
		},
		"int": {
			param:   graceful.IntParam("p", "test"),
			raw:     "42",
			want:    int64(42),
			wantErr: require.NoError,
		},
		"int garbage": {
			param:   graceful.IntParam("p", "test"),
			raw:     "forty-two",
			wantErr: require.Error,
		},
		"float": {
			param:   graceful.FloatParam("p", "test"),
			raw:     "1.5",
			want:    1.5,
			wantErr: require.NoError,
		},
		"bool true": {
			param:   graceful.BoolParam("p", "test"),
			raw:     "true",
			want:    true,
			wantErr: require.NoError,
		},
		"bool garbage": {
			param:   graceful.BoolParam("p", "test"),
			raw:     "maybe",
			wantErr: require.Error,
		},
		"base64": {
			param:   graceful.Base64Param("p", "test"),
			raw:     "SGVsbG8=",
			want:    "Hello",
			wantErr: require.NoError,
		},
		"base64 garbage": {
			param:   graceful.Base64Param("p", "test"),
			raw:     "%%%",
			wantErr: require.Error,
		},
		"time rfc3339": {
			param:   graceful.TimeParam("p", "test"),
			raw:     "2026-08-23T10:00:00Z",
			want:    time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
			wantErr: require.NoError,
		},
		"time garbage": {
			param:   graceful.TimeParam("p", "test"),
			raw:     "yesterday",
			wantErr: require.Error,
		},
		"duration": {
			param:   graceful.DurationParam("p", "test"),
			raw:     "1h30m",
			want:    90 * time.Minute,
			wantErr: require.NoError,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.param.Coerce(tc.raw)
			tc.wantErr(t, err)
			if tc.want != nil {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestDecimalParam(t *testing.T) {
	t.Parallel()

	p := graceful.DecimalParam("price", "test")

	got, err := p.Coerce("1.337")
	require.NoError(t, err)

	d, ok := got.(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, d.Equal(decimal.RequireFromString("1.337")))

	_, err = p.Coerce("one point three")
	require.Error(t, err)
}

func TestParamChaining(t *testing.T) {
	t.Parallel()

	base := graceful.StringParam("breed", "cat breed")

	withDefault := base.WithDefault("")
	assert.True(t, withDefault.HasDefault, "empty-string default is still a default")
	assert.False(t, base.HasDefault, "chaining must not mutate the original")

	required := base.AsRequired()
	assert.True(t, required.Required)
	assert.False(t, base.Required)

	many := base.AsMany(graceful.SetOf())
	assert.True(t, many.Many)

	labeled := base.WithLabel("Breed")
	assert.Equal(t, "Breed", labeled.Label)

	validated := base.WithValidators(graceful.Match(`^\w+$`))
	assert.Len(t, validated.Validators, 1)
	assert.Empty(t, base.Validators)
}
