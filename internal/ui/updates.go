// internal/ui/updates.go
package ui

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"go.uber.org/zap"
)

// UpdateSender delivers messages from background goroutines to the tea
// loop without ever blocking the sender.
type UpdateSender struct {
	msgChan        chan tea.Msg
	droppedUpdates uint64
	sentUpdates    uint64
	logger         *zap.Logger
	statsInterval  time.Duration
	stopStats      chan struct{}
}

// NewUpdateSender creates a sender with a buffer of size messages.
func NewUpdateSender(size int, logger *zap.Logger) *UpdateSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	us := &UpdateSender{
		msgChan:       make(chan tea.Msg, size),
		logger:        logger,
		statsInterval: 30 * time.Second,
		stopStats:     make(chan struct{}),
	}

	go us.logStats()

	return us
}

// SendUpdate queues msg or drops it when the buffer is full.
func (us *UpdateSender) SendUpdate(msg tea.Msg) {
	select {
	case us.msgChan <- msg:
		atomic.AddUint64(&us.sentUpdates, 1)
	default:
		atomic.AddUint64(&us.droppedUpdates, 1)
	}
}

// Listen returns a command that waits for the next queued message and
// delivers it as an UpdateMsg. The receiver re-arms it after handling each
// UpdateMsg; it returns nil once the sender is closed.
func (us *UpdateSender) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-us.msgChan:
			return UpdateMsg{Msg: msg}
		case <-us.stopStats:
			return nil
		}
	}
}

// Bridge forwards every bus event as an EventMsg, and notifications as
// toasts.
func (us *UpdateSender) Bridge(bus *events.Bus) events.Subscription {
	return bus.SubscribeAll(events.HandlerFunc(func(_ context.Context, e events.Event) error {
		if n, ok := e.(events.NotificationEvent); ok {
			us.SendUpdate(ToastMsg{Level: n.Level, Title: n.Title, Text: n.Text})
			return nil
		}
		us.SendUpdate(EventMsg{Event: e})
		return nil
	}))
}

// GetStats returns current statistics
func (us *UpdateSender) GetStats() (sent, dropped uint64) {
	sent = atomic.LoadUint64(&us.sentUpdates)
	dropped = atomic.LoadUint64(&us.droppedUpdates)
	return sent, dropped
}

func (us *UpdateSender) logStats() {
	ticker := time.NewTicker(us.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, dropped := us.GetStats()
			if dropped > 0 {
				us.logger.Warn("UI update statistics",
					zap.Uint64("sent", sent),
					zap.Uint64("dropped", dropped),
					zap.Float64("drop_rate", float64(dropped)/float64(sent+dropped)*100))
			}
		case <-us.stopStats:
			return
		}
	}
}

// Close stops the update sender
func (us *UpdateSender) Close() {
	close(us.stopStats)
}
