// internal/swap/refresh.go
package swap

import (
	"context"
	"sync"
	"time"

	"github.com/rovshanmuradov/dex2k/internal/pricing"
	"github.com/rovshanmuradov/dex2k/internal/token"
)

// PriceResult is the outcome of one tagged price request.
type PriceResult struct {
	Seq    uint64
	Symbol string
	Price  float64
	Err    error
}

// Refresher runs price requests for the form. Starting a request for a
// symbol cancels the one still in flight for it, so at most one request per
// symbol is outstanding. The sequence guard in Controller stays the
// authority on which result is applied.
type Refresher struct {
	oracle  pricing.Oracle
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]inflight
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// NewRefresher wraps an oracle. timeout <= 0 means no per-request deadline.
func NewRefresher(oracle pricing.Oracle, timeout time.Duration) *Refresher {
	return &Refresher{
		oracle:   oracle,
		timeout:  timeout,
		inflight: make(map[string]inflight),
	}
}

// Fetch blocks until the price for symbol arrives, fails, or is superseded
// by a newer Fetch for the same symbol.
func (r *Refresher) Fetch(ctx context.Context, seq uint64, symbol string) PriceResult {
	symbol = token.NormalizeSymbol(symbol)

	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	r.mu.Lock()
	if prev, ok := r.inflight[symbol]; ok {
		prev.cancel()
	}
	r.inflight[symbol] = inflight{seq: seq, cancel: cancel}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		if cur, ok := r.inflight[symbol]; ok && cur.seq == seq {
			delete(r.inflight, symbol)
		}
		r.mu.Unlock()
		cancel()
	}()

	price, err := r.oracle.GetPrice(ctx, symbol)
	return PriceResult{Seq: seq, Symbol: symbol, Price: price, Err: err}
}

// InFlight reports how many symbols have a request outstanding.
func (r *Refresher) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}

// Apply feeds a result into the controller. It returns false for a stale
// result.
func Apply(c *Controller, res PriceResult) (bool, error) {
	if res.Err != nil {
		return c.ApplyPriceError(res.Seq, res.Symbol, res.Err), nil
	}
	return c.ApplyPrice(res.Seq, res.Symbol, res.Price)
}
