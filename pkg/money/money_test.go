package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"990", "990"},
		{"1,500", "1500"},
		{" 1,900 ", "1900"},
		{"1 900", "1900"},
		{"12.50", "12.5"},
		{"1,234,567", "1234567"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "  ", "abc", "1.5.0", "-10"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "990", Format(decimal.NewFromInt(990)))
	assert.Equal(t, "1,500", Format(decimal.NewFromInt(1500)))
	assert.Equal(t, "1,234,567", Format(decimal.NewFromInt(1234567)))
	assert.Equal(t, "12.50", Format(decimal.RequireFromString("12.5")))
	assert.Equal(t, "0", Format(decimal.Zero))
}

func TestFormatParseRoundTrip(t *testing.T) {
	d := decimal.NewFromInt(1900)
	back, err := Parse(Format(d))
	require.NoError(t, err)
	assert.True(t, d.Equal(back))
}

func TestWholeUnits(t *testing.T) {
	assert.Equal(t, int64(1500), WholeUnits(MustParse("1,500")))
	assert.Equal(t, int64(13), WholeUnits(decimal.RequireFromString("12.5")))
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
}
