package validate_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
	"marketplace/internal/validate"
)

func TestAmountAcceptsNumbersAndStrings(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{`49990`, 49990},
		{`"49990"`, 49990},
		{`12.5`, 13},
		{`" 12.4 "`, 12},
		{`0`, 0},
	}
	for _, tc := range cases {
		var a validate.Amount
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &a), tc.raw)
		got, err := a.NonNegative("price")
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestAmountRejectsNegativeAndGarbage(t *testing.T) {
	var a validate.Amount
	require.NoError(t, json.Unmarshal([]byte(`-1`), &a))
	_, err := a.NonNegative("price")
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	require.NoError(t, json.Unmarshal([]byte(`"-0.2"`), &a))
	_, err = a.NonNegative("price")
	assert.Error(t, err)

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &a))
	assert.Error(t, json.Unmarshal([]byte(`true`), &a))
}

func TestQuantityClampsAtZero(t *testing.T) {
	assert.Equal(t, int64(0), validate.Quantity(nil, 0))
	assert.Equal(t, int64(0), validate.Quantity(validate.NewAmount(-4), 0))
	assert.Equal(t, int64(5), validate.Quantity(validate.NewAmount(5), 0))
	assert.Equal(t, int64(3), validate.Quantity(validate.NewAmount(2.5), 0))
}

func TestAmountOutOfRange(t *testing.T) {
	var a validate.Amount
	err := json.Unmarshal([]byte(`1e30`), &a)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	err = json.Unmarshal([]byte(`"-1e13"`), &a)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	require.NoError(t, json.Unmarshal([]byte(`1e12`), &a))
	n, err := a.NonNegative("price")
	require.NoError(t, err)
	assert.Equal(t, int64(1e12), n)

	_, err = validate.NewAmount(1e30).NonNegative("price")
	assert.EqualError(t, err, "price is out of range")
	assert.Equal(t, int64(validate.MaxAmount), validate.Quantity(validate.NewAmount(1e30), 0))
}
