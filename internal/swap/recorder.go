// internal/swap/recorder.go
package swap

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"go.uber.org/zap"
)

// DefaultHistorySize bounds the recent swaps list.
const DefaultHistorySize = 50

// HistoryHeader is the column layout of Receipt.Record.
var HistoryHeader = []string{"executed_at", "id", "from", "to", "from_amount", "to_amount", "rate", "usd_value"}

// RecordWriter receives one row per executed swap.
type RecordWriter interface {
	WriteRecord(record []string) error
}

// Recorder is the local Executor: it accepts every validated quote, keeps
// it in the recent swaps list and announces it on the bus. Nothing is sent
// to a chain.
type Recorder struct {
	mu      sync.RWMutex
	history []Receipt
	max     int
	pub     events.Publisher
	sink    RecordWriter
	logger  *zap.Logger
	now     func() time.Time
}

// NewRecorder creates a recorder keeping at most max receipts.
func NewRecorder(max int, pub events.Publisher, logger *zap.Logger) *Recorder {
	if max <= 0 {
		max = DefaultHistorySize
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		max:    max,
		pub:    pub,
		logger: logger.Named("swap_recorder"),
		now:    time.Now,
	}
}

// SetSink exports every subsequent receipt to w.
func (r *Recorder) SetSink(w RecordWriter) {
	r.mu.Lock()
	r.sink = w
	r.mu.Unlock()
}

// ExecuteSwap implements Executor.
func (r *Recorder) ExecuteSwap(ctx context.Context, q Quote) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	receipt := Receipt{
		ID:         uuid.New().String(),
		Quote:      q,
		ExecutedAt: r.now(),
	}

	r.mu.Lock()
	r.history = append(r.history, receipt)
	if len(r.history) > r.max {
		r.history = r.history[len(r.history)-r.max:]
	}
	sink := r.sink
	r.mu.Unlock()

	if sink != nil {
		if err := sink.WriteRecord(receipt.Record()); err != nil {
			r.logger.Warn("Failed to export swap", zap.String("id", receipt.ID), zap.Error(err))
		}
	}
	r.logger.Info("Swap recorded",
		zap.String("id", receipt.ID),
		zap.String("from", q.From.Symbol),
		zap.String("to", q.To.Symbol),
		zap.Float64("from_amount", q.FromAmount),
		zap.Float64("to_amount", q.ToAmount))

	evt := events.SwapExecutedEvent{
		BaseEvent:  events.NewBase(events.SwapExecuted),
		ID:         receipt.ID,
		FromSymbol: q.From.Symbol,
		ToSymbol:   q.To.Symbol,
		FromAmount: q.FromAmount,
		ToAmount:   q.ToAmount,
	}
	if err := r.pub.Publish(evt); err != nil {
		r.logger.Warn("Failed to publish swap event", zap.String("id", receipt.ID), zap.Error(err))
	}
	return receipt, nil
}

// Recent returns up to n receipts, newest first.
func (r *Recorder) Recent(n int) []Receipt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > len(r.history) {
		n = len(r.history)
	}
	out := make([]Receipt, 0, n)
	for i := len(r.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.history[i])
	}
	return out
}

// Len returns the number of stored receipts.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.history)
}

// Record renders the receipt as a HistoryHeader row.
func (rc Receipt) Record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		rc.ExecutedAt.UTC().Format(time.RFC3339),
		rc.ID,
		rc.Quote.From.Symbol,
		rc.Quote.To.Symbol,
		f(rc.Quote.FromAmount),
		f(rc.Quote.ToAmount),
		f(rc.Quote.Rate),
		f(rc.Quote.USDValue()),
	}
}
