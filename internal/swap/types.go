// internal/swap/types.go
package swap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rovshanmuradov/dex2k/internal/token"
)

// State of the two-sided swap form.
type State int

const (
	StateIdle State = iota
	StateEditingFrom
	StateEditingTo
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditingFrom:
		return "editing_from"
	case StateEditingTo:
		return "editing_to"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Side of the form.
type Side int

const (
	SideFrom Side = iota
	SideTo
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("swap validation failed")

// ValidationError blocks a submit. The form is left untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Quote is a validated swap ready for execution. Slippage and price impact
// are inputs carried along, never computed from pool state.
type Quote struct {
	From        token.Token
	To          token.Token
	FromAmount  float64
	ToAmount    float64
	Rate        float64 // To units per one From unit
	Slippage    float64 // percent
	PriceImpact float64 // percent
	MinReceived float64
	NetworkFee  string
}

// USDValue of the input side.
func (q Quote) USDValue() float64 {
	return q.FromAmount * q.From.Price
}

// Receipt is what an executor returns for an accepted swap.
type Receipt struct {
	ID         string
	Quote      Quote
	ExecutedAt time.Time
}

// Executor carries out a validated swap. Wallet and chain integrations
// implement it outside this module.
type Executor interface {
	ExecuteSwap(ctx context.Context, q Quote) (Receipt, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, q Quote) (Receipt, error)

func (f ExecutorFunc) ExecuteSwap(ctx context.Context, q Quote) (Receipt, error) {
	return f(ctx, q)
}
