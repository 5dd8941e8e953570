// internal/appstate/state.go
package appstate

import (
	"context"
	"fmt"
	"strconv"
)

const keyOnboarded = "onboarded"

// State is the application state shared by the screens. It is created once
// in main and passed down.
type State struct {
	store Store
}

// New wraps a store.
func New(store Store) *State {
	return &State{store: store}
}

// Onboarded reports whether the welcome flow was completed.
func (s *State) Onboarded(ctx context.Context) (bool, error) {
	v, ok, err := s.store.Get(ctx, keyOnboarded)
	if err != nil {
		return false, fmt.Errorf("read onboarding flag: %w", err)
	}
	if !ok {
		return false, nil
	}
	done, err := strconv.ParseBool(v)
	if err != nil {
		return false, nil
	}
	return done, nil
}

// CompleteOnboarding persists the onboarding flag.
func (s *State) CompleteOnboarding(ctx context.Context) error {
	if err := s.store.Set(ctx, keyOnboarded, strconv.FormatBool(true)); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	return nil
}

// ResetOnboarding clears the flag so the welcome flow shows again.
func (s *State) ResetOnboarding(ctx context.Context) error {
	return s.store.Delete(ctx, keyOnboarded)
}

// Close releases the underlying store.
func (s *State) Close() error {
	return s.store.Close()
}
