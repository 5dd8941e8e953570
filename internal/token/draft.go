// internal/token/draft.go
package token

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// PoolFeeOptions are the fee tiers offered when seeding liquidity.
var PoolFeeOptions = []string{"0.1%", "0.3%", "1%"}

// DefaultPoolFee is preselected in the create token wizard.
const DefaultPoolFee = "0.3%"

var ErrInvalidDraft = errors.New("invalid token draft")

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// Draft collects the create token wizard input.
type Draft struct {
	Name         string
	Symbol       string
	Decimals     int
	Supply       float64
	Description  string
	Hook         TransferHookConfig
	Liquidity    float64
	InitialPrice float64
	PoolFee      string
}

// NewDraft returns a draft with the wizard defaults.
func NewDraft() Draft {
	return Draft{Decimals: 9, PoolFee: DefaultPoolFee}
}

// ValidateBasics checks the first wizard step.
func (d Draft) ValidateBasics() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDraft)
	}
	if !symbolPattern.MatchString(NormalizeSymbol(d.Symbol)) {
		return fmt.Errorf("%w: symbol must be 1-10 letters or digits", ErrInvalidDraft)
	}
	if d.Decimals < 0 || d.Decimals > 9 {
		return fmt.Errorf("%w: decimals must be between 0 and 9", ErrInvalidDraft)
	}
	if d.Supply <= 0 {
		return fmt.Errorf("%w: supply must be positive", ErrInvalidDraft)
	}
	return nil
}

// ValidateLiquidity checks the liquidity step.
func (d Draft) ValidateLiquidity() error {
	if d.Liquidity <= 0 || d.InitialPrice <= 0 {
		return fmt.Errorf("%w: liquidity amount and initial price are required", ErrInvalidDraft)
	}
	for _, opt := range PoolFeeOptions {
		if d.PoolFee == opt {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported pool fee %q", ErrInvalidDraft, d.PoolFee)
}

// Validate runs every step. The hook step is enforced against the policy.
func (d Draft) Validate(policy HookPolicy) error {
	if err := d.ValidateBasics(); err != nil {
		return err
	}
	if err := d.Hook.Validate(policy); err != nil {
		return err
	}
	return d.ValidateLiquidity()
}

// MarketCap is supply times the initial price.
func (d Draft) MarketCap() float64 {
	return d.Supply * d.InitialPrice
}
