package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"invoicer/pkg/models"
)

func TestPercentOf(t *testing.T) {
	assert.Equal(t, 20.0, PercentOf(100, 20))
	assert.Equal(t, 0.0, PercentOf(0, 15))
	assert.Equal(t, -5.0, PercentOf(-50, 10))
	assert.InDelta(t, 8.8, PercentOf(88, 10), 1e-12)
	assert.Equal(t, 0.0, PercentOf(math.Inf(1), 10))
	assert.Equal(t, 0.0, PercentOf(math.NaN(), 10))
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, 12.5, Coerce("12.5"))
	assert.Equal(t, 0.0, Coerce(""))
	assert.Equal(t, 0.0, Coerce("twelve"))
	assert.Equal(t, 0.0, Coerce("NaN"))
	assert.Equal(t, -3.0, Coerce("-3"))
}

func TestRoundAndFixed(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 83.16, want: "83.16"},
		{in: 79.19999999999999, want: "79.20"},
		{in: 2.675, want: "2.68"},
		{in: 0.005, want: "0.01"},
		{in: -1.005, want: "-1.01"},
		{in: 0, want: "0.00"},
		{in: math.NaN(), want: "0.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fixed(tt.in), "Fixed(%v)", tt.in)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$83.16", Format(83.16, models.CurrencyUSD))
	assert.Equal(t, "€1200.50", Format(1200.5, models.CurrencyEUR))
	assert.Equal(t, "-£8.80", Format(-8.8, models.CurrencyGBP))
	assert.Equal(t, "CHF 10.00", Format(10, models.Currency("CHF")))
	assert.Equal(t, "10.00", Format(10, ""))
}
