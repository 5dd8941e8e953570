// internal/ui/screen/home.go
package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/dex2k/internal/events"
	"github.com/rovshanmuradov/dex2k/internal/token"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/component"
	"github.com/rovshanmuradov/dex2k/internal/ui/router"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
)

// MenuItem represents a menu item
type MenuItem struct {
	Label       string
	Description string
	Route       ui.Route
}

var homeMenu = []MenuItem{
	{Label: "⇄ Swap", Description: "Swap Token-2022 tokens at live prices", Route: ui.RouteSwap},
	{Label: "▲ Trade", Description: "Market prices and order ticket", Route: ui.RouteTrading},
	{Label: "◎ Pools", Description: "Your liquidity positions and all pools", Route: ui.RoutePools},
	{Label: "✚ Create Token", Description: "Launch a token with transfer hooks", Route: ui.RouteCreateToken},
	{Label: "≡ Logs", Description: "Application activity", Route: ui.RouteLogs},
}

// HomeScreen shows the portfolio and the quick actions.
type HomeScreen struct {
	deps   *Deps
	width  int
	height int
	keyMap ui.KeyMap

	helpBar *component.HelpBar
	tokens  *component.Table

	selectedIndex int
	lastSwap      string
	lastUpdate    time.Time
	tickGen       int

	titleStyle    lipgloss.Style
	menuItemStyle lipgloss.Style
	selectedStyle lipgloss.Style
	descStyle     lipgloss.Style
}

// NewHomeScreen creates the home screen.
func NewHomeScreen(deps *Deps) *HomeScreen {
	palette := style.DefaultPalette()
	keyMap := ui.DefaultKeyMap()

	return &HomeScreen{
		deps:       deps,
		keyMap:     keyMap,
		lastUpdate: time.Now(),
		helpBar:    component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteHome)),
		tokens: component.NewTable().
			AddColumn("Token", 10, lipgloss.Left).
			AddColumn("Name", 16, lipgloss.Left).
			AddColumn("Price", 14, lipgloss.Right).
			AddColumn("24h", 9, lipgloss.Right).
			AddColumn("Balance", 14, lipgloss.Right).
			SetSelectable(false),

		titleStyle: style.Title(),

		menuItemStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2),

		selectedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 2).
			Bold(true),

		descStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Padding(0, 2).
			Italic(true),
	}
}

func (m *HomeScreen) Route() ui.Route { return ui.RouteHome }

type homeTickMsg struct {
	gen int
	at  time.Time
}

// Init restarts the clock. The generation drops ticks scheduled before the
// screen was covered and shown again.
func (m *HomeScreen) Init() tea.Cmd {
	m.tickGen++
	return m.tick()
}

func (m *HomeScreen) tick() tea.Cmd {
	gen := m.tickGen
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return homeTickMsg{gen: gen, at: t} })
}

func (m *HomeScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Up):
			m.selectedIndex = (m.selectedIndex - 1 + len(homeMenu)) % len(homeMenu)
		case key.Matches(msg, m.keyMap.Down):
			m.selectedIndex = (m.selectedIndex + 1) % len(homeMenu)
		case key.Matches(msg, m.keyMap.Enter):
			return m, ui.Navigate(homeMenu[m.selectedIndex].Route)
		case key.Matches(msg, m.keyMap.Swap):
			return m, ui.Navigate(ui.RouteSwap)
		case key.Matches(msg, m.keyMap.Trade):
			return m, ui.Navigate(ui.RouteTrading)
		case key.Matches(msg, m.keyMap.Pools):
			return m, ui.Navigate(ui.RoutePools)
		case key.Matches(msg, m.keyMap.CreateToken):
			return m, ui.Navigate(ui.RouteCreateToken)
		case key.Matches(msg, m.keyMap.Logs):
			return m, ui.Navigate(ui.RouteLogs)
		}

	case homeTickMsg:
		if msg.gen != m.tickGen {
			return m, nil
		}
		m.lastUpdate = msg.at
		return m, m.tick()

	case ui.EventMsg:
		if e, ok := msg.Event.(events.SwapExecutedEvent); ok {
			m.lastSwap = fmt.Sprintf("%g %s → %g %s", e.FromAmount, e.FromSymbol, e.ToAmount, e.ToSymbol)
		}
	}

	return m, nil
}

func (m *HomeScreen) View() string {
	var content strings.Builder

	content.WriteString(m.renderHeader())
	content.WriteString("\n\n")
	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderMenu(), "  ", m.renderTokens()))
	content.WriteString("\n")
	content.WriteString(m.helpBar.SetWidth(m.width).View())

	return content.String()
}

func (m *HomeScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *HomeScreen) renderHeader() string {
	value, change := m.deps.Catalog.Portfolio(token.VariantHome)

	title := m.titleStyle.Render("Dex2.0K") + style.Muted().Render("  Token-2022 AMM")
	portfolio := fmt.Sprintf("Portfolio Value  %s  %s",
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("$%.2f", value)),
		style.Change(change).Render(fmt.Sprintf("%+.2f%%", change)))

	status := fmt.Sprintf("%s • prices: %s", m.lastUpdate.Format("15:04:05"), m.oracleLabel())
	if m.lastSwap != "" {
		status += " • last swap: " + m.lastSwap
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, portfolio, style.Muted().Render(status))
}

func (m *HomeScreen) oracleLabel() string {
	if m.deps.OracleLabel == "" {
		return "offline"
	}
	return m.deps.OracleLabel
}

func (m *HomeScreen) renderMenu() string {
	var items []string
	for i, item := range homeMenu {
		if i == m.selectedIndex {
			items = append(items, m.selectedStyle.Render(item.Label))
			items = append(items, m.descStyle.Render(item.Description))
		} else {
			items = append(items, m.menuItemStyle.Render(item.Label))
		}
	}
	return style.Panel().Render(strings.Join(items, "\n"))
}

func (m *HomeScreen) renderTokens() string {
	list := m.deps.Catalog.Tokens(token.VariantHome)
	rows := make([][]string, len(list))
	for i, t := range list {
		rows[i] = []string{t.Symbol, t.Name, t.PriceLabel(), t.ChangeLabel(), fmt.Sprintf("%g", t.Balance)}
	}
	m.tokens.SetRows(rows)
	for i, t := range list {
		m.tokens.SetCellStyle(i, 3, style.Change(t.Change24h))
	}

	heading := style.Title().Render("Recent Token-2022 Tokens")
	return lipgloss.JoinVertical(lipgloss.Left, heading, m.tokens.View())
}

// Selected returns the highlighted menu route.
func (m *HomeScreen) Selected() ui.Route {
	return homeMenu[m.selectedIndex].Route
}
