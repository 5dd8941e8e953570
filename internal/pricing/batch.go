// internal/pricing/batch.go
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ErrAllFailed is returned by FetchMany when no symbol could be priced.
var ErrAllFailed = errors.New("failed to fetch token data")

// BatchResult holds per-symbol outcomes of FetchMany.
type BatchResult struct {
	Prices map[string]float64
	Errors map[string]error
}

// FetchMany prices every symbol concurrently. Partial failures are kept in
// Errors; the returned error is non-nil only when every symbol failed.
func FetchMany(ctx context.Context, oracle Oracle, symbols []string, limit int) (BatchResult, error) {
	res := BatchResult{
		Prices: make(map[string]float64, len(symbols)),
		Errors: make(map[string]error),
	}
	if len(symbols) == 0 {
		return res, nil
	}

	var mu sync.Mutex
	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, sym := range symbols {
		sym := strings.ToUpper(strings.TrimSpace(sym))
		g.Go(func() error {
			price, err := oracle.GetPrice(gCtx, sym)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Errors[sym] = err
				return nil
			}
			res.Prices[sym] = price
			return nil
		})
	}
	_ = g.Wait()

	if len(res.Prices) == 0 {
		return res, fmt.Errorf("%w: %d symbols", ErrAllFailed, len(res.Errors))
	}
	return res, nil
}

// Static serves fixed prices. Used offline and in tests.
type Static struct {
	mu     sync.RWMutex
	prices map[string]float64
}

// NewStatic creates a static oracle from a symbol to price map.
func NewStatic(prices map[string]float64) *Static {
	s := &Static{prices: make(map[string]float64, len(prices))}
	for sym, p := range prices {
		s.prices[strings.ToUpper(sym)] = p
	}
	return s
}

// Set updates one price.
func (s *Static) Set(symbol string, price float64) {
	s.mu.Lock()
	s.prices[strings.ToUpper(symbol)] = price
	s.mu.Unlock()
}

// GetPrice implements Oracle.
func (s *Static) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &PriceFetchError{Symbol: symbol, Message: "cancelled", Err: err}
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	s.mu.RLock()
	p, ok := s.prices[symbol]
	s.mu.RUnlock()
	if !ok || p <= 0 {
		return 0, &PriceFetchError{Symbol: symbol, Message: "no price available"}
	}
	return p, nil
}
