// internal/ui/keymap.go
package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Tab      key.Binding
	ShiftTab key.Binding

	// Screens
	Swap        key.Binding
	Trade       key.Binding
	Pools       key.Binding
	CreateToken key.Binding
	Logs        key.Binding

	// Swap form
	Flip        key.Binding
	NextFrom    key.Binding
	NextTo      key.Binding
	ClearForm   key.Binding
	Refresh     key.Binding
	Submit      key.Binding
	ToggleSide  key.Binding
	FilterLevel key.Binding
	Export      key.Binding
	SortMarket  key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "right"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev"),
		),

		Swap: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "swap"),
		),
		Trade: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "trade"),
		),
		Pools: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pools"),
		),
		CreateToken: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "create token"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l", "f12"),
			key.WithHelp("l", "logs"),
		),

		Flip: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "flip"),
		),
		NextFrom: key.NewBinding(
			key.WithKeys("ctrl+a"),
			key.WithHelp("ctrl+a", "from token"),
		),
		NextTo: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "to token"),
		),
		ClearForm: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "clear"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r", "f5"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		ToggleSide: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "buy/sell"),
		),
		FilterLevel: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter level"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export swaps"),
		),
		SortMarket: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "gainers/losers"),
		),
	}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteWelcome:
		return []key.Binding{k.Left, k.Right, k.Enter, k.Quit}
	case RouteHome:
		return []key.Binding{k.Up, k.Down, k.Enter, k.Swap, k.Trade, k.Pools, k.CreateToken, k.Logs, k.Quit}
	case RouteSwap:
		return []key.Binding{k.Tab, k.NextFrom, k.NextTo, k.Flip, k.Refresh, k.ClearForm, k.Export, k.Submit, k.Back}
	case RouteTrading:
		return []key.Binding{k.Up, k.Down, k.ToggleSide, k.SortMarket, k.Refresh, k.Submit, k.Back}
	case RoutePools:
		return []key.Binding{k.Tab, k.Up, k.Down, k.Back}
	case RouteCreateToken:
		return []key.Binding{k.Tab, k.ShiftTab, k.Enter, k.Back}
	case RouteLogs:
		return []key.Binding{k.Up, k.Down, k.FilterLevel, k.Back}
	default:
		return []key.Binding{k.Back, k.Quit}
	}
}
