// internal/events/handler.go
package events

import (
	"context"
)

// Handler processes events delivered by the bus. Handlers run on the bus
// workers and must not block the update loop.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls f(ctx, event).
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// On adapts a function taking one concrete event type. Events of any other
// type are skipped, so the same handler is safe on a wildcard subscription.
func On[T Event](fn func(ctx context.Context, event T) error) Handler {
	return HandlerFunc(func(ctx context.Context, e Event) error {
		typed, ok := e.(T)
		if !ok {
			return nil
		}
		return fn(ctx, typed)
	})
}

// Subscription is returned by Subscribe; Unsubscribe detaches the handler.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	id  string
	bus *Bus
	typ EventType
}

func (s *subscription) Unsubscribe() {
	s.bus.unsubscribe(s.id, s.typ)
}

// anyEvent keys wildcard subscriptions.
const anyEvent EventType = "*"
