package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBusPublishSyncDeliversToTypedAndWildcard(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var mu sync.Mutex
	var typed, all []EventType

	bus.SubscribeFunc(SwapExecuted, func(_ context.Context, e Event) error {
		mu.Lock()
		typed = append(typed, e.Type())
		mu.Unlock()
		return nil
	})
	bus.SubscribeAll(HandlerFunc(func(_ context.Context, e Event) error {
		mu.Lock()
		all = append(all, e.Type())
		mu.Unlock()
		return nil
	}))

	require.NoError(t, bus.PublishSync(context.Background(), SwapExecutedEvent{BaseEvent: NewBase(SwapExecuted), ID: "x"}))
	require.NoError(t, bus.PublishSync(context.Background(), Notify(LevelInfo, "t", "x")))

	assert.Equal(t, []EventType{SwapExecuted}, typed)
	assert.Equal(t, []EventType{SwapExecuted, Notification}, all)
}

func TestOnSkipsOtherEventTypes(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	var symbols []string
	bus.SubscribeAll(On(func(_ context.Context, e PriceUpdatedEvent) error {
		symbols = append(symbols, e.Symbol)
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, bus.PublishSync(ctx, Notify(LevelInfo, "t", "x")))
	require.NoError(t, bus.PublishSync(ctx, PriceUpdatedEvent{BaseEvent: NewBase(PriceUpdated), Symbol: "SOL", Price: 98.45}))
	require.NoError(t, bus.PublishSync(ctx, SwapExecutedEvent{BaseEvent: NewBase(SwapExecuted), ID: "x"}))

	assert.Equal(t, []string{"SOL"}, symbols)
}

func TestBusPublishAsync(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)

	got := make(chan Event, 1)
	bus.SubscribeFunc(PriceUpdated, func(_ context.Context, e Event) error {
		got <- e
		return nil
	})

	require.NoError(t, bus.Publish(PriceUpdatedEvent{BaseEvent: NewBase(PriceUpdated), Symbol: "SOL", Price: 98.45}))

	select {
	case e := <-got:
		pe, ok := e.(PriceUpdatedEvent)
		require.True(t, ok)
		assert.Equal(t, "SOL", pe.Symbol)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	require.NoError(t, bus.Shutdown(context.Background()))
	assert.Error(t, bus.Publish(Notify(LevelInfo, "late", "")))
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	calls := 0
	sub := bus.SubscribeFunc(Notification, func(context.Context, Event) error {
		calls++
		return nil
	})
	all := bus.SubscribeAll(HandlerFunc(func(context.Context, Event) error {
		calls++
		return nil
	}))

	st := bus.Stats()
	assert.Equal(t, 1, st.HandlersPerType[Notification])
	assert.Equal(t, 1, st.WildcardHandles)

	sub.Unsubscribe()
	all.Unsubscribe()
	require.NoError(t, bus.PublishSync(context.Background(), Notify(LevelInfo, "t", "")))
	assert.Zero(t, calls)
	assert.Zero(t, bus.Stats().WildcardHandles)
}

func TestBusHandlerErrorsAreReported(t *testing.T) {
	bus := NewBus(zap.NewNop(), 8)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	bus.SubscribeFunc(SwapRejected, func(context.Context, Event) error {
		return errors.New("boom")
	})

	err := bus.PublishSync(context.Background(), SwapRejectedEvent{BaseEvent: NewBase(SwapRejected), Reason: "x"})
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(Notify(LevelError, "t", "x")))
}
