// internal/ui/screen/pools.go
package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/component"
	"github.com/rovshanmuradov/dex2k/internal/ui/router"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
)

// PoolsScreen shows the user's positions and the full pool list.
type PoolsScreen struct {
	deps   *Deps
	keyMap ui.KeyMap
	width  int
	height int

	mine    bool
	table   *component.Table
	helpBar *component.HelpBar
}

// NewPoolsScreen creates the pools screen on the "My Pools" tab.
func NewPoolsScreen(deps *Deps) *PoolsScreen {
	keyMap := ui.DefaultKeyMap()
	return &PoolsScreen{
		deps:    deps,
		keyMap:  keyMap,
		mine:    true,
		table:   component.NewTable(),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RoutePools)),
	}
}

func (s *PoolsScreen) Route() ui.Route { return ui.RoutePools }

func (s *PoolsScreen) Init() tea.Cmd {
	s.rebuild()
	return nil
}

func (s *PoolsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, s.keyMap.Back):
			return s, ui.Back()
		case key.Matches(msg, s.keyMap.Tab), key.Matches(msg, s.keyMap.ShiftTab):
			s.mine = !s.mine
			s.rebuild()
		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()
		}
	}
	return s, nil
}

// rebuild swaps the columns for the active tab.
func (s *PoolsScreen) rebuild() {
	pools := s.deps.Catalog.Pools(s.mine)

	t := component.NewTable().AddColumn("Pair", 14, lipgloss.Left).
		AddColumn("Liquidity", 14, lipgloss.Right)
	if s.mine {
		t.AddColumn("Share", 8, lipgloss.Right).AddColumn("Value", 12, lipgloss.Right)
	} else {
		t.AddColumn("24h Volume", 14, lipgloss.Right).AddColumn("APR", 8, lipgloss.Right)
	}
	t.AddColumn("24h", 8, lipgloss.Right)

	rows := make([][]string, len(pools))
	for i, p := range pools {
		row := []string{p.Pair(), usd(p.Liquidity)}
		if s.mine {
			row = append(row, fmt.Sprintf("%.2f%%", p.Share), usd(p.Value))
		} else {
			row = append(row, usd(p.Volume24h), fmt.Sprintf("%.1f%%", p.APR))
		}
		row = append(row, fmt.Sprintf("%+.1f%%", p.Change))
		rows[i] = row
	}
	t.SetRows(rows)
	for i, p := range pools {
		t.SetCellStyle(i, 4, style.Change(p.Change))
	}
	s.table = t
}

// Mine reports whether the "My Pools" tab is active.
func (s *PoolsScreen) Mine() bool { return s.mine }

// Stats returns the header figures for the active tab.
func (s *PoolsScreen) Stats() (liquidity float64, active int, volume float64) {
	pools := s.deps.Catalog.Pools(s.mine)
	for _, p := range pools {
		volume += p.Volume24h
	}
	return s.deps.Catalog.TotalLiquidity(s.mine), len(pools), volume
}

func (s *PoolsScreen) View() string {
	palette := style.DefaultPalette()

	var content strings.Builder
	content.WriteString(style.Title().Render("Liquidity Pools"))
	content.WriteString("\n\n")
	content.WriteString(s.renderTabs(palette))
	content.WriteString("\n\n")

	liquidity, active, volume := s.Stats()
	stat := func(label, value string) string {
		return style.Panel().Render(style.Muted().Render(label) + "\n" + lipgloss.NewStyle().Bold(true).Render(value))
	}
	content.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Total Liquidity", usd(liquidity)),
		stat("Active Pools", fmt.Sprintf("%d", active)),
		stat("24h Volume", usd(volume)),
	))
	content.WriteString("\n")

	if active == 0 {
		empty := lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Render("No Liquidity Pools"),
			style.Muted().Render("Add liquidity to a pool to see your positions here."))
		content.WriteString(style.Panel().Render(empty))
	} else {
		content.WriteString(s.table.View())
	}
	content.WriteString("\n")
	content.WriteString(s.helpBar.SetWidth(s.width).View())
	return content.String()
}

func (s *PoolsScreen) renderTabs(palette style.Palette) string {
	active := lipgloss.NewStyle().Foreground(palette.Background).Background(palette.Primary).Bold(true).Padding(0, 2)
	inactive := lipgloss.NewStyle().Foreground(palette.TextMuted).Padding(0, 2)

	my, all := inactive.Render("My Pools"), inactive.Render("All Pools")
	if s.mine {
		my = active.Render("My Pools")
	} else {
		all = active.Render("All Pools")
	}
	return my + " " + all
}

func (s *PoolsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func usd(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}
