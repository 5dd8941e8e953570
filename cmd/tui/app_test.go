package main

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/dex2k/internal/appstate"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/pricing"
	"github.com/rovshanmuradov/dex2k/internal/swap"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, onboarded bool) *AppModel {
	t.Helper()
	catalog := token.DefaultCatalog()
	deps := &screen.Deps{
		Ctx:        context.Background(),
		Catalog:    catalog,
		Oracle:     pricing.NewStatic(catalog.Prices()),
		Recorder:   swap.NewRecorder(10, events.NopPublisher{}, zap.NewNop()),
		State:      appstate.New(appstate.NewMemoryStore()),
		Hooks:      token.NewStaticPolicy(),
		Bus:        events.NopPublisher{},
		Logger:     zap.NewNop(),
		Slippage:   0.5,
		NetworkFee: "~$0.002",
	}
	app := NewAppModel(deps, nil, onboarded)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

func currentRoute(t *testing.T, app *AppModel) ui.Route {
	t.Helper()
	route, ok := app.Router().CurrentRoute()
	require.True(t, ok)
	return route
}

func TestAppStartsOnWelcomeUntilOnboarded(t *testing.T) {
	assert.Equal(t, ui.RouteWelcome, currentRoute(t, newTestApp(t, false)))
	assert.Equal(t, ui.RouteHome, currentRoute(t, newTestApp(t, true)))
}

func TestAppNavigation(t *testing.T) {
	app := newTestApp(t, true)

	app.Update(ui.RouterMsg{To: ui.RouteSwap})
	assert.Equal(t, ui.RouteSwap, currentRoute(t, app))
	assert.Equal(t, 2, app.Router().Depth())

	app.Update(ui.RouterMsg{To: ui.RoutePools, Replace: true})
	assert.Equal(t, ui.RoutePools, currentRoute(t, app))
	assert.Equal(t, 2, app.Router().Depth())

	app.Update(ui.BackMsg{})
	assert.Equal(t, ui.RouteHome, currentRoute(t, app))

	for _, route := range []ui.Route{ui.RouteTrading, ui.RouteCreateToken, ui.RouteLogs, ui.RouteWelcome} {
		app.Update(ui.RouterMsg{To: route})
		assert.Equal(t, route, currentRoute(t, app))
	}

	depth := app.Router().Depth()
	app.Update(ui.RouterMsg{To: ui.Route(99)})
	assert.Equal(t, depth, app.Router().Depth())
}

func TestAppToastLifecycle(t *testing.T) {
	app := newTestApp(t, true)

	_, cmd := app.Update(ui.ToastMsg{Level: events.LevelSuccess, Title: "Swap executed", Text: "2 SOL"})
	require.NotNil(t, cmd)
	assert.Equal(t, "Swap executed: 2 SOL", app.Toast())
	assert.Contains(t, app.View(), "Swap executed: 2 SOL")

	app.Update(ui.ErrorMsg{Title: "Prices", Error: errors.New("timeout")})
	assert.Equal(t, "Prices: timeout", app.Toast())

	// the first toast's expiry must not hide the newer one
	app.Update(ui.ToastExpiredMsg{ID: 1})
	assert.Equal(t, "Prices: timeout", app.Toast())

	app.Update(ui.ToastExpiredMsg{ID: 2})
	assert.Empty(t, app.Toast())
}

func TestAppRearmsListenerOnlyForSenderMessages(t *testing.T) {
	sender := ui.NewUpdateSender(4, zap.NewNop())
	defer sender.Close()
	app := newTestApp(t, true)
	app.sender = sender

	// toast returned by a screen command: only the expiry tick
	_, cmd := app.Update(ui.ToastMsg{Title: "Swaps exported", TTL: time.Millisecond})
	require.NotNil(t, cmd)
	assert.IsType(t, ui.ToastExpiredMsg{}, cmd())

	// toast delivered by the sender: expiry tick plus a new listener
	sender.SendUpdate(ui.ToastMsg{Title: "Price alert", TTL: time.Millisecond})
	msg := sender.Listen()()
	require.IsType(t, ui.UpdateMsg{}, msg)

	_, cmd = app.Update(msg)
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	assert.Len(t, batch, 2)
	assert.Equal(t, "Price alert", app.Toast())

	sender.SendUpdate(ui.BackMsg{})
	var got []tea.Msg
	for _, c := range batch {
		got = append(got, c())
	}
	assert.Contains(t, got, tea.Msg(ui.UpdateMsg{Msg: ui.BackMsg{}}))
}

func TestAppQuitsOnCtrlC(t *testing.T) {
	app := newTestApp(t, true)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppViewBeforeSize(t *testing.T) {
	catalog := token.DefaultCatalog()
	app := NewAppModel(&screen.Deps{Catalog: catalog}, nil, true)
	assert.Equal(t, "Initializing...", app.View())
}
