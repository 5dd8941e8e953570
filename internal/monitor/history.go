package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/pricing"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"go.uber.org/zap"
)

// DefaultMaxPoints bounds the per-symbol history.
const DefaultMaxPoints = 240

// ErrNoHistory is returned for a symbol that was never observed.
var ErrNoHistory = errors.New("no price history")

// Point is one observed price.
type Point struct {
	Price float64
	At    time.Time
}

// PriceHistory remembers every price the application applied, per symbol,
// in a bounded circular buffer. It serves the trading chart when the
// oracle has no historical endpoint.
type PriceHistory struct {
	mu        sync.RWMutex
	points    map[string][]Point
	maxPoints int
	logger    *zap.Logger
}

// NewPriceHistory creates a history keeping maxPoints per symbol.
func NewPriceHistory(maxPoints int, logger *zap.Logger) *PriceHistory {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceHistory{
		points:    make(map[string][]Point),
		maxPoints: maxPoints,
		logger:    logger,
	}
}

// Record appends a price. Non-positive prices are ignored.
func (h *PriceHistory) Record(symbol string, price float64, at time.Time) {
	symbol = token.NormalizeSymbol(symbol)
	if symbol == "" || price <= 0 {
		return
	}
	if at.IsZero() {
		at = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	pts := h.points[symbol]
	if len(pts) >= h.maxPoints {
		// drop the oldest point
		pts = pts[1:]
	}
	h.points[symbol] = append(pts, Point{Price: price, At: at})
}

// Observe records an applied price. Subscribe it with events.On.
func (h *PriceHistory) Observe(_ context.Context, u events.PriceUpdatedEvent) error {
	h.Record(u.Symbol, u.Price, u.Timestamp())
	h.logger.Debug("Price observed", zap.String("symbol", u.Symbol), zap.Float64("price", u.Price))
	return nil
}

// Seed records the current catalog prices, so every chart has a first point.
func (h *PriceHistory) Seed(prices map[string]float64) {
	now := time.Now()
	for sym, p := range prices {
		h.Record(sym, p, now)
	}
}

// Points returns a copy of the observed prices, oldest first.
func (h *PriceHistory) Points(symbol string) []Point {
	h.mu.RLock()
	defer h.mu.RUnlock()

	pts := h.points[token.NormalizeSymbol(symbol)]
	out := make([]Point, len(pts))
	copy(out, pts)
	return out
}

// GetHistorical returns one flat candle per observation. The interval is
// ignored; observations are as frequent as the refreshes were.
func (h *PriceHistory) GetHistorical(ctx context.Context, symbol, _ string) ([]pricing.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pts := h.Points(symbol)
	if len(pts) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoHistory, token.NormalizeSymbol(symbol))
	}

	candles := make([]pricing.Candle, len(pts))
	for i, p := range pts {
		candles[i] = pricing.Candle{Open: p.Price, High: p.Price, Low: p.Price, Close: p.Price, Timestamp: p.At}
	}
	return candles, nil
}

// Stats summarises the observations of one symbol.
type Stats struct {
	Count     int
	Min       float64
	Max       float64
	First     float64
	Last      float64
	ChangePct float64
}

// GetStatistics returns the statistics of symbol.
func (h *PriceHistory) GetStatistics(symbol string) Stats {
	pts := h.Points(symbol)
	if len(pts) == 0 {
		return Stats{}
	}

	s := Stats{
		Count: len(pts),
		Min:   pts[0].Price,
		Max:   pts[0].Price,
		First: pts[0].Price,
		Last:  pts[len(pts)-1].Price,
	}
	for _, p := range pts[1:] {
		if p.Price < s.Min {
			s.Min = p.Price
		}
		if p.Price > s.Max {
			s.Max = p.Price
		}
	}
	if s.First > 0 {
		s.ChangePct = (s.Last - s.First) / s.First * 100
	}
	return s
}
