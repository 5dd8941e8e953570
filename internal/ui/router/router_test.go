package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScreen struct {
	route  ui.Route
	inits  int
	width  int
	height int
	msgs   []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd { s.inits++; return nil }

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.msgs = append(s.msgs, msg)
	return s, nil
}

func (s *stubScreen) View() string { return s.route.String() }

func (s *stubScreen) SetSize(width, height int) { s.width, s.height = width, height }

func (s *stubScreen) Route() ui.Route { return s.route }

func TestRouterPushPop(t *testing.T) {
	home := &stubScreen{route: ui.RouteHome}
	r := New(home)
	r.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	swap := &stubScreen{route: ui.RouteSwap}
	r.Push(swap)
	assert.Equal(t, 2, r.Depth())
	assert.True(t, r.CanGoBack())
	assert.Equal(t, 80, swap.width, "pushed screens get the current size")
	assert.Equal(t, 1, swap.inits)

	route, ok := r.CurrentRoute()
	require.True(t, ok)
	assert.Equal(t, ui.RouteSwap, route)

	r.Update(ui.BackMsg{})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "home", r.View())
	assert.Equal(t, 1, home.inits, "the uncovered screen is re-initialised")
}

func TestRouterNeverPopsRoot(t *testing.T) {
	r := New(&stubScreen{route: ui.RouteHome})
	assert.Nil(t, r.Pop())
	assert.Equal(t, 1, r.Depth())
	assert.False(t, r.CanGoBack())
}

func TestRouterForwardsToTopOnly(t *testing.T) {
	home := &stubScreen{route: ui.RouteHome}
	logs := &stubScreen{route: ui.RouteLogs}
	r := New(home)
	r.Push(logs)

	key := tea.KeyMsg{Type: tea.KeyEsc}
	r.Update(key)

	assert.Empty(t, home.msgs)
	require.Len(t, logs.msgs, 1)
	assert.Equal(t, key, logs.msgs[0], "esc is left to the screen")
}

func TestRouterReplaceAndReset(t *testing.T) {
	r := New(&stubScreen{route: ui.RouteWelcome})

	r.Replace(&stubScreen{route: ui.RouteHome})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "home", r.View())

	r.Push(&stubScreen{route: ui.RoutePools})
	r.Reset(&stubScreen{route: ui.RouteHome})
	assert.Equal(t, 1, r.Depth())
	assert.Equal(t, "home", r.View())
}
