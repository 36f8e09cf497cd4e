package graceful_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swistakm/graceful"
)

func TestMin(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		min     float64
		value   any
		wantErr require.ErrorAssertionFunc
	}{
		"int above":        {min: 0, value: 5, wantErr: require.NoError},
		"int64 equal":      {min: 5, value: int64(5), wantErr: require.NoError},
		"int below":        {min: 10, value: 5, wantErr: require.Error},
		"float above":      {min: 1.5, value: 2.5, wantErr: require.NoError},
		"float below":      {min: 1.5, value: 0.5, wantErr: require.Error},
		"decimal above":    {min: 1, value: decimal.NewFromFloat(1.337), wantErr: require.NoError},
		"decimal below":    {min: 2, value: decimal.NewFromFloat(1.337), wantErr: require.Error},
		"not a number":     {min: 0, value: "nope", wantErr: require.Error},
		"uint above":       {min: 1, value: uint(3), wantErr: require.NoError},
		"negative allowed": {min: -10, value: -5, wantErr: require.NoError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tc.wantErr(t, graceful.Min(tc.min).Validate(tc.value))
		})
	}
}

func TestMax(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		max     float64
		value   any
		wantErr require.ErrorAssertionFunc
	}{
		"below":        {max: 10, value: 5, wantErr: require.NoError},
		"equal":        {max: 5, value: int64(5), wantErr: require.NoError},
		"above":        {max: 3, value: 5, wantErr: require.Error},
		"not a number": {max: 0, value: struct{}{}, wantErr: require.Error},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tc.wantErr(t, graceful.Max(tc.max).Validate(tc.value))
		})
	}
}

func TestChoices(t *testing.T) {
	t.Parallel()

	v := graceful.Choices("cat", "dog")

	require.NoError(t, v.Validate("cat"))
	require.NoError(t, v.Validate("dog"))

	err := v.Validate("hamster")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not in")
}

func TestMatch(t *testing.T) {
	t.Parallel()

	v := graceful.Match(`^\w+$`)

	require.NoError(t, v.Validate("word"))
	require.Error(t, v.Validate("two words"))
	require.Error(t, v.Validate(42), "non-strings never match")
}

func TestMatch_invalid_pattern_panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		graceful.Match("([")
	})
}

func TestValidatorFunc(t *testing.T) {
	t.Parallel()

	called := false
	v := graceful.ValidatorFunc(func(any) error {
		called = true
		return nil
	})

	require.NoError(t, v.Validate("anything"))
	assert.True(t, called)
}
