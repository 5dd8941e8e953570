// internal/token/hook.go
package token

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrHookNotWhitelisted = errors.New("hook program is not whitelisted")
	ErrInvalidHookConfig  = errors.New("invalid transfer hook config")
)

// HookPolicy decides whether a transfer hook program may be attached.
type HookPolicy interface {
	IsHookWhitelisted(id string) bool
}

// HookPolicyFunc adapts a function to HookPolicy.
type HookPolicyFunc func(id string) bool

func (f HookPolicyFunc) IsHookWhitelisted(id string) bool { return f(id) }

// StaticPolicy is an allow-list loaded from configuration.
type StaticPolicy struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewStaticPolicy builds an allow-list from ids.
func NewStaticPolicy(ids ...string) *StaticPolicy {
	p := &StaticPolicy{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		p.Allow(id)
	}
	return p
}

// Allow adds id to the allow-list.
func (p *StaticPolicy) Allow(id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	p.mu.Lock()
	p.ids[id] = struct{}{}
	p.mu.Unlock()
}

// IsHookWhitelisted reports whether id is allowed. No hook is always allowed.
func (p *StaticPolicy) IsHookWhitelisted(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.ids[id]
	return ok
}

// TransferHookConfig is the Token-2022 transfer hook section of a new token.
// Zero bounds mean "unset".
type TransferHookConfig struct {
	Enabled            bool
	WhitelistEnabled   bool
	KYCEnabled         bool
	MinTransferAmount  float64
	MaxTransferAmount  float64
	TransferFeePercent float64
	HookProgramID      string
}

// HookError carries the offending field of a hook config.
type HookError struct {
	Field  string
	Reason string
	Err    error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *HookError) Unwrap() error { return e.Err }

// Validate checks bounds, the program id format and the allow-list.
// A disabled hook is always valid.
func (c TransferHookConfig) Validate(policy HookPolicy) error {
	if !c.Enabled {
		return nil
	}
	if c.MinTransferAmount < 0 {
		return &HookError{Field: "min_transfer_amount", Reason: "must not be negative", Err: ErrInvalidHookConfig}
	}
	if c.MaxTransferAmount < 0 {
		return &HookError{Field: "max_transfer_amount", Reason: "must not be negative", Err: ErrInvalidHookConfig}
	}
	if c.MaxTransferAmount > 0 && c.MinTransferAmount > c.MaxTransferAmount {
		return &HookError{Field: "max_transfer_amount", Reason: "must not be below the minimum", Err: ErrInvalidHookConfig}
	}
	if c.TransferFeePercent < 0 || c.TransferFeePercent > 100 {
		return &HookError{Field: "transfer_fee", Reason: "must be between 0 and 100", Err: ErrInvalidHookConfig}
	}
	return CheckHookProgram(c.HookProgramID, policy)
}

// CheckHookProgram validates a single hook program id. Used for the inline
// warning while the id is being typed.
func CheckHookProgram(id string, policy HookPolicy) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if !ValidAddress(id) {
		return &HookError{Field: "hook_program_id", Reason: "not a valid program address", Err: ErrInvalidHookConfig}
	}
	if policy != nil && !policy.IsHookWhitelisted(id) {
		return &HookError{Field: "hook_program_id", Reason: "this hook program is not whitelisted", Err: ErrHookNotWhitelisted}
	}
	return nil
}

// CheckTransfer applies the configured bounds to a transfer amount and
// returns the fee that would be withheld.
func (c TransferHookConfig) CheckTransfer(amount float64) (fee float64, err error) {
	if !c.Enabled {
		return 0, nil
	}
	if c.MinTransferAmount > 0 && amount < c.MinTransferAmount {
		return 0, fmt.Errorf("transfer of %g is below minimum %g", amount, c.MinTransferAmount)
	}
	if c.MaxTransferAmount > 0 && amount > c.MaxTransferAmount {
		return 0, fmt.Errorf("transfer of %g exceeds maximum %g", amount, c.MaxTransferAmount)
	}
	return amount * c.TransferFeePercent / 100, nil
}
