// internal/events/types.go
package events

import (
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	// Price events
	PriceUpdated EventType = "price.updated"
	PriceFailed  EventType = "price.failed"

	// Swap events
	SwapExecuted EventType = "swap.executed"
	SwapRejected EventType = "swap.rejected"

	// Token events
	TokenDrafted EventType = "token.drafted"

	// User-facing toasts
	Notification EventType = "notification"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// NewBase stamps an event header with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now()}
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// PriceUpdatedEvent is emitted when a fresh price was applied.
type PriceUpdatedEvent struct {
	BaseEvent
	Symbol   string
	Price    float64
	Previous float64
	Seq      uint64
}

// PriceFailedEvent is emitted when a price request failed. The displayed
// price is kept.
type PriceFailedEvent struct {
	BaseEvent
	Symbol string
	Error  error
}

// SwapExecutedEvent is emitted once the executor accepted a swap.
type SwapExecutedEvent struct {
	BaseEvent
	ID         string
	FromSymbol string
	ToSymbol   string
	FromAmount float64
	ToAmount   float64
}

// SwapRejectedEvent is emitted when validation blocked a submit.
type SwapRejectedEvent struct {
	BaseEvent
	Reason string
}

// TokenDraftedEvent is emitted when the create token wizard completes.
type TokenDraftedEvent struct {
	BaseEvent
	Symbol      string
	HookEnabled bool
}

// Level of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// NotificationEvent is a toast for the user.
type NotificationEvent struct {
	BaseEvent
	Level Level
	Title string
	Text  string
}

// Notify builds a notification event.
func Notify(level Level, title, text string) NotificationEvent {
	return NotificationEvent{BaseEvent: NewBase(Notification), Level: level, Title: title, Text: text}
}
