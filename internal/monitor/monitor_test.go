package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type spyPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *spyPublisher) Publish(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func priceEvent(sym string, price float64) events.PriceUpdatedEvent {
	return events.PriceUpdatedEvent{BaseEvent: events.NewBase(events.PriceUpdated), Symbol: sym, Price: price}
}

func TestPriceHistoryIsBounded(t *testing.T) {
	h := NewPriceHistory(3, zap.NewNop())
	base := time.Now()
	for i, p := range []float64{1, 2, 0, 3, 4} {
		h.Record("sol", p, base.Add(time.Duration(i)*time.Second))
	}

	pts := h.Points("SOL")
	require.Len(t, pts, 3)
	assert.Equal(t, []float64{2, 3, 4}, []float64{pts[0].Price, pts[1].Price, pts[2].Price})

	stats := h.GetStatistics("SOL")
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 2.0, stats.Min)
	assert.Equal(t, 4.0, stats.Max)
	assert.InDelta(t, 100, stats.ChangePct, 1e-9)
}

func TestPriceHistoryServesCandles(t *testing.T) {
	h := NewPriceHistory(0, nil)
	h.Seed(map[string]float64{"SOL": 98.45})
	handler := events.On(h.Observe)
	require.NoError(t, handler.Handle(context.Background(), priceEvent("SOL", 101)))
	require.NoError(t, handler.Handle(context.Background(), events.Notify(events.LevelInfo, "x", "y")))

	candles, err := h.GetHistorical(context.Background(), "sol", "1h")
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, 98.45, candles[0].Close)
	assert.Equal(t, 101.0, candles[1].Close)

	_, err = h.GetHistorical(context.Background(), "JUP", "1h")
	assert.ErrorIs(t, err, ErrNoHistory)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.GetHistorical(ctx, "SOL", "1h")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAlertManagerRaisesOnLargeMoves(t *testing.T) {
	pub := &spyPublisher{}
	am := NewAlertManager(AlertConfig{MovePercent: 5, Cooldown: time.Minute}, pub, zap.NewNop())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	am.now = func() time.Time { return now }

	_, raised := am.Check("SOL", 100)
	assert.False(t, raised, "first price is the baseline")

	_, raised = am.Check("SOL", 104)
	assert.False(t, raised)

	alert, raised := am.Check("SOL", 106)
	require.True(t, raised)
	assert.Equal(t, AlertTypePriceRise, alert.Type)
	assert.InDelta(t, 6, alert.ChangePct, 1e-9)

	// cooldown
	_, raised = am.Check("SOL", 90)
	assert.False(t, raised)

	now = now.Add(2 * time.Minute)
	alert, raised = am.Check("SOL", 90)
	require.True(t, raised)
	assert.Equal(t, AlertTypePriceDrop, alert.Type)

	require.Len(t, pub.events, 2)
	n := pub.events[1].(events.NotificationEvent)
	assert.Equal(t, events.LevelError, n.Level)
	assert.Contains(t, n.Text, "SOL moved -15.1%")
	assert.Len(t, am.GetAlerts(), 2)
}

func TestAlertManagerDisabled(t *testing.T) {
	pub := &spyPublisher{}
	am := NewAlertManager(AlertConfig{}, pub, nil)
	require.NoError(t, am.Observe(context.Background(), priceEvent("SOL", 1)))
	require.NoError(t, am.Observe(context.Background(), priceEvent("SOL", 100)))
	assert.Empty(t, pub.events)
}
