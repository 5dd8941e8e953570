package quote

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCounterpartSolToUsdc(t *testing.T) {
	out, err := ComputeCounterpart(2, 98.45, 1.00)
	require.NoError(t, err)
	assert.Equal(t, "196.900000", Format(out))
}

func TestComputeCounterpartPreservesValue(t *testing.T) {
	cases := []struct {
		amount, source, target float64
	}{
		{1, 98.45, 1},
		{100, 1.25, 98.45},
		{0.000123, 0.0045, 0.89},
		{12.5, 0.0234, 1.25},
		{1e6, 1, 0.000001},
	}

	for _, c := range cases {
		out, err := ComputeCounterpart(c.amount, c.source, c.target)
		require.NoError(t, err)
		assert.InEpsilon(t, c.amount*c.source, out*c.target, 1e-12)

		again, err := ComputeCounterpart(c.amount, c.source, c.target)
		require.NoError(t, err)
		assert.Equal(t, out, again)
	}
}

func TestComputeCounterpartInvalidPrice(t *testing.T) {
	for _, target := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		out, err := ComputeCounterpart(1, 98.45, target)
		assert.ErrorIs(t, err, ErrInvalidPrice)
		assert.Zero(t, out)
	}

	_, err := ComputeCounterpart(1, -1, 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ComputeCounterpart(-1, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ComputeCounterpart(math.MaxFloat64, 10, 0.1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestComputeCounterpartZeroAmount(t *testing.T) {
	out, err := ComputeCounterpart(0, 98.45, 1)
	require.NoError(t, err)
	assert.Zero(t, out)
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount(" 2 ")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = ParseAmount("0.000001")
	require.NoError(t, err)
	assert.Equal(t, 0.000001, v)

	_, err = ParseAmount("")
	assert.ErrorIs(t, err, ErrEmptyAmount)

	_, err = ParseAmount("abc")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseAmount("-3")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseAmountRejectsExponents(t *testing.T) {
	for _, in := range []string{"1e400", "1e99999999", "2E3", "1e-5"} {
		start := time.Now()
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
		assert.Less(t, time.Since(start), 100*time.Millisecond, in)
	}

	v, err := ParseAmount(strings.Repeat("9", 32))
	require.NoError(t, err)
	assert.False(t, math.IsInf(v, 0))
}

func TestFormatDoesNotAffectPrecision(t *testing.T) {
	v := 1.0 / 3.0
	assert.Equal(t, "0.333333", Format(v))
	assert.Equal(t, 1.0/3.0, v)
	assert.Equal(t, "", Format(math.NaN()))
}

func TestOrderTotal(t *testing.T) {
	assert.Equal(t, "196.90", OrderTotal(2, 98.45))
	assert.Equal(t, "0.00", OrderTotal(0, 98.45))
}

func TestMinReceived(t *testing.T) {
	assert.InDelta(t, 195.9155, MinReceived(196.9, 0.5), 1e-9)
	assert.Equal(t, 196.9, MinReceived(196.9, 0))
	assert.Zero(t, MinReceived(196.9, 100))
}

func TestRate(t *testing.T) {
	r, err := Rate(98.45, 1)
	require.NoError(t, err)
	assert.Equal(t, 98.45, r)

	_, err = Rate(1, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}
