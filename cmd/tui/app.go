package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/router"
	"github.com/rovshanmuradov/dex2k/internal/ui/screen"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
	"go.uber.org/zap"
)

const defaultToastTTL = 4 * time.Second

type toast struct {
	id    int
	level events.Level
	title string
	text  string
}

// AppModel represents the main TUI application model
type AppModel struct {
	router *router.Router
	deps   *screen.Deps
	sender *ui.UpdateSender
	logger *zap.Logger

	toast   *toast
	toastID int
	width   int
	height  int
}

// NewAppModel creates the application model. The first screen is the
// onboarding flow until it has been completed once.
func NewAppModel(deps *screen.Deps, sender *ui.UpdateSender, onboarded bool) *AppModel {
	var first router.Screen
	if onboarded {
		first = screen.NewHomeScreen(deps)
	} else {
		first = screen.NewWelcomeScreen(deps)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AppModel{
		router: router.New(first),
		deps:   deps,
		sender: sender,
		logger: logger.Named("app"),
	}
}

// Init initializes the application
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.router.Init(), m.listen())
}

func (m *AppModel) listen() tea.Cmd {
	if m.sender == nil {
		return nil
	}
	return m.sender.Listen()
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// one line for the toast
		return m, m.router.Update(tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-1, 0)})

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, m.router.Update(msg)

	case ui.RouterMsg:
		return m, m.navigate(msg)

	case ui.UpdateMsg:
		_, cmd := m.Update(msg.Msg)
		return m, tea.Batch(cmd, m.listen())

	case ui.ToastMsg:
		return m, m.showToast(msg.Level, msg.Title, msg.Text, msg.TTL)

	case ui.ToastExpiredMsg:
		if m.toast != nil && m.toast.id == msg.ID {
			m.toast = nil
		}
		return m, nil

	case ui.ErrorMsg:
		text := "unknown error"
		if msg.Error != nil {
			text = msg.Error.Error()
		}
		m.logger.Warn("UI error", zap.String("title", msg.Title), zap.String("error", text))
		return m, m.showToast(events.LevelError, msg.Title, text, 0)

	case ui.SuccessMsg:
		return m, m.showToast(events.LevelSuccess, msg.Title, msg.Message, 0)

	}

	return m, m.router.Update(msg)
}

// navigate builds the screen for a route and pushes it, or replaces the
// top screen when asked to.
func (m *AppModel) navigate(msg ui.RouterMsg) tea.Cmd {
	next := m.screenFor(msg.To)
	if next == nil {
		m.logger.Warn("Unknown route", zap.String("route", msg.To.String()))
		return nil
	}
	m.logger.Debug("Navigate", zap.String("route", msg.To.String()), zap.Bool("replace", msg.Replace))
	if msg.Replace {
		return m.router.Replace(next)
	}
	return m.router.Push(next)
}

func (m *AppModel) screenFor(route ui.Route) router.Screen {
	switch route {
	case ui.RouteWelcome:
		return screen.NewWelcomeScreen(m.deps)
	case ui.RouteHome:
		return screen.NewHomeScreen(m.deps)
	case ui.RouteSwap:
		return screen.NewSwapScreen(m.deps)
	case ui.RouteTrading:
		return screen.NewTradingScreen(m.deps)
	case ui.RoutePools:
		return screen.NewPoolsScreen(m.deps)
	case ui.RouteCreateToken:
		return screen.NewCreateTokenWizard(m.deps)
	case ui.RouteLogs:
		return screen.NewLogsScreen(m.deps)
	default:
		return nil
	}
}

func (m *AppModel) showToast(level events.Level, title, text string, ttl time.Duration) tea.Cmd {
	if ttl <= 0 {
		ttl = defaultToastTTL
	}
	m.toastID++
	id := m.toastID
	m.toast = &toast{id: id, level: level, title: title, text: text}
	return tea.Tick(ttl, func(time.Time) tea.Msg { return ui.ToastExpiredMsg{ID: id} })
}

// Toast returns the visible toast text, empty when none is shown.
func (m *AppModel) Toast() string {
	if m.toast == nil {
		return ""
	}
	if m.toast.text == "" {
		return m.toast.title
	}
	return fmt.Sprintf("%s: %s", m.toast.title, m.toast.text)
}

// Router exposes the screen stack.
func (m *AppModel) Router() *router.Router { return m.router }

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.router.View(), m.renderToast())
}

func (m *AppModel) renderToast() string {
	if m.toast == nil {
		return ""
	}
	palette := style.DefaultPalette()
	color := palette.Info
	icon := "•"
	switch m.toast.level {
	case events.LevelSuccess:
		color, icon = palette.Success, "✓"
	case events.LevelError:
		color, icon = palette.Error, "✗"
	}
	return lipgloss.NewStyle().Foreground(color).Width(m.width).Render(icon + " " + m.Toast())
}
