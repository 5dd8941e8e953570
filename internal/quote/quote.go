// internal/quote/quote.go
package quote

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayDecimals is the precision of counterpart amounts on screen.
const DisplayDecimals = 6

var (
	ErrInvalidPrice  = errors.New("invalid price")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyAmount   = errors.New("amount is empty")
)

// ComputeCounterpart converts amount of the source token into the target
// token at equal USD value: amount * sourcePrice / targetPrice.
// The result is never Inf or NaN.
func ComputeCounterpart(amount, sourcePrice, targetPrice float64) (float64, error) {
	if !finite(targetPrice) || targetPrice <= 0 {
		return 0, fmt.Errorf("%w: target price %v", ErrInvalidPrice, targetPrice)
	}
	if !finite(sourcePrice) || sourcePrice < 0 {
		return 0, fmt.Errorf("%w: source price %v", ErrInvalidPrice, sourcePrice)
	}
	if !finite(amount) || amount < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	out := amount * sourcePrice / targetPrice
	if !finite(out) {
		return 0, fmt.Errorf("%w: result overflows", ErrInvalidAmount)
	}
	return out, nil
}

// Format renders v with DisplayDecimals places. Display only; callers keep
// the float for further calculations.
func Format(v float64) string {
	return FormatPlaces(v, DisplayDecimals)
}

// FormatPlaces renders v with a fixed number of decimal places.
func FormatPlaces(v float64, places int32) string {
	if !finite(v) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// ParseAmount parses user input. Thousands separators and exponent
// notation are not accepted.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyAmount
	}
	// decimal expands the exponent in full before converting
	if strings.ContainsAny(s, "eE") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	f, _ := d.Float64()
	if !finite(f) {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidAmount, s)
	}
	return f, nil
}

// OrderTotal is the USD total of an order ticket, two decimals.
func OrderTotal(amount, price float64) string {
	return FormatPlaces(amount*price, 2)
}

// MinReceived applies a slippage tolerance in percent to an expected output.
// Slippage is an input, never derived from pool state.
func MinReceived(expected, slippagePercent float64) float64 {
	if slippagePercent <= 0 {
		return expected
	}
	if slippagePercent >= 100 {
		return 0
	}
	return expected * (1 - slippagePercent/100)
}

// Rate is the number of target tokens per one source token.
func Rate(sourcePrice, targetPrice float64) (float64, error) {
	return ComputeCounterpart(1, sourcePrice, targetPrice)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
