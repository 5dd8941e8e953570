// internal/ui/msg.go
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/dex2k/internal/events"
)

// Tea message types for UI communication

// RouterMsg asks the app to navigate.
type RouterMsg struct {
	To Route
	// Replace swaps the current screen instead of pushing.
	Replace bool
}

// BackMsg pops the current screen.
type BackMsg struct{}

// UpdateMsg wraps a message delivered by UpdateSender.Listen. Only this
// message re-arms the listener.
type UpdateMsg struct {
	Msg tea.Msg
}

// EventMsg carries a bus event into the update loop.
type EventMsg struct {
	Event events.Event
}

// ToastMsg shows a transient notification in the status line.
type ToastMsg struct {
	Level events.Level
	Title string
	Text  string
	TTL   time.Duration
}

// ToastExpiredMsg hides the toast with the given id.
type ToastExpiredMsg struct {
	ID int
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// SuccessMsg represents success conditions
type SuccessMsg struct {
	Message string
	Title   string
}

// Navigate returns a command that emits a RouterMsg.
func Navigate(route Route) tea.Cmd {
	return func() tea.Msg {
		return RouterMsg{To: route}
	}
}

// Back returns a command that emits a BackMsg.
func Back() tea.Cmd {
	return func() tea.Msg { return BackMsg{} }
}

// Toast returns a command that emits a toast.
func Toast(level events.Level, title, text string) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Level: level, Title: title, Text: text}
	}
}

// Route represents different screens in the application
type Route int

const (
	RouteWelcome Route = iota
	RouteHome
	RouteSwap
	RouteTrading
	RoutePools
	RouteCreateToken
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteWelcome:
		return "welcome"
	case RouteHome:
		return "home"
	case RouteSwap:
		return "swap"
	case RouteTrading:
		return "trading"
	case RoutePools:
		return "pools"
	case RouteCreateToken:
		return "create_token"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}
