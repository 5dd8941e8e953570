// internal/ui/screen/logs.go
package screen

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/dex2k/internal/logger"
	"github.com/rovshanmuradov/dex2k/internal/ui"
	"github.com/rovshanmuradov/dex2k/internal/ui/component"
	"github.com/rovshanmuradov/dex2k/internal/ui/router"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
	"go.uber.org/zap/zapcore"
)

const (
	maxLogRows         = 200
	logRefreshInterval = 2 * time.Second
)

// filter cycle; a level shows itself and everything more severe
var logFilters = []string{"all", "debug", "info", "warn", "error"}

type logsTickMsg struct {
	gen int
}

// LogsScreen shows the in-memory log ring.
type LogsScreen struct {
	deps   *Deps
	keyMap ui.KeyMap
	width  int
	height int

	table   *component.Table
	helpBar *component.HelpBar

	entries    []logger.LogEntry
	filtered   []logger.LogEntry
	filterIdx  int
	tail       bool
	tickGen    int
	lastUpdate time.Time

	debugStyle lipgloss.Style
	infoStyle  lipgloss.Style
	warnStyle  lipgloss.Style
	errorStyle lipgloss.Style
}

// NewLogsScreen creates the logs screen in tail mode.
func NewLogsScreen(deps *Deps) *LogsScreen {
	palette := style.DefaultPalette()
	keyMap := ui.DefaultKeyMap()

	return &LogsScreen{
		deps:   deps,
		keyMap: keyMap,
		tail:   true,
		table: component.NewTable().
			AddColumn("Time", 10, lipgloss.Left).
			AddColumn("Level", 7, lipgloss.Left).
			AddColumn("Message", 60, lipgloss.Left).
			SetEmptyText("No log entries match the current filter."),
		helpBar: component.NewHelpBar().SetKeyBindings(keyMap.ContextualHelp(ui.RouteLogs)),

		debugStyle: lipgloss.NewStyle().Foreground(palette.TextMuted),
		infoStyle:  lipgloss.NewStyle().Foreground(palette.Info),
		warnStyle:  lipgloss.NewStyle().Foreground(palette.Warning),
		errorStyle: lipgloss.NewStyle().Foreground(palette.Error).Bold(true),
	}
}

func (s *LogsScreen) Route() ui.Route { return ui.RouteLogs }

func (s *LogsScreen) Init() tea.Cmd {
	s.tickGen++
	s.reload()
	return s.tick()
}

func (s *LogsScreen) tick() tea.Cmd {
	gen := s.tickGen
	return tea.Tick(logRefreshInterval, func(time.Time) tea.Msg { return logsTickMsg{gen: gen} })
}

func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Back):
			return s, ui.Back()
		case key.Matches(msg, s.keyMap.Up):
			s.table.MoveUp()
			s.tail = false
		case key.Matches(msg, s.keyMap.Down):
			s.table.MoveDown()
			s.tail = s.table.GetSelectedRow() == len(s.filtered)-1
		case key.Matches(msg, s.keyMap.FilterLevel):
			s.filterIdx = (s.filterIdx + 1) % len(logFilters)
			s.applyFilter()
		case key.Matches(msg, s.keyMap.Refresh):
			s.reload()
		}

	case logsTickMsg:
		if msg.gen != s.tickGen {
			return s, nil
		}
		s.reload()
		return s, s.tick()
	}

	return s, nil
}

func (s *LogsScreen) reload() {
	s.lastUpdate = time.Now()
	if s.deps.Logs == nil {
		s.entries = nil
	} else {
		s.entries = s.deps.Logs.GetRecentLogs(maxLogRows)
	}
	s.applyFilter()
}

func (s *LogsScreen) applyFilter() {
	s.filtered = s.filtered[:0]
	for _, e := range s.entries {
		if s.matches(e) {
			s.filtered = append(s.filtered, e)
		}
	}

	rows := make([][]string, len(s.filtered))
	for i, e := range s.filtered {
		rows[i] = []string{e.Timestamp.Format("15:04:05"), strings.ToUpper(e.Level), formatEntry(e)}
	}
	s.table.SetRows(rows)
	for i, e := range s.filtered {
		s.table.SetCellStyle(i, 1, s.levelStyle(e.Level))
	}

	if s.tail {
		for s.table.GetSelectedRow() < len(s.filtered)-1 {
			s.table.MoveDown()
		}
	}
}

func (s *LogsScreen) matches(e logger.LogEntry) bool {
	if s.filterIdx == 0 {
		return true
	}
	threshold, err := zapcore.ParseLevel(logFilters[s.filterIdx])
	if err != nil {
		return true
	}
	lvl, err := zapcore.ParseLevel(e.Level)
	if err != nil {
		// unparsable lines are kept visible
		return true
	}
	return lvl >= threshold
}

func (s *LogsScreen) levelStyle(level string) lipgloss.Style {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return s.infoStyle
	}
	switch {
	case lvl >= zapcore.ErrorLevel:
		return s.errorStyle
	case lvl == zapcore.WarnLevel:
		return s.warnStyle
	case lvl == zapcore.DebugLevel:
		return s.debugStyle
	default:
		return s.infoStyle
	}
}

// formatEntry renders the message followed by its fields in key order.
func formatEntry(e logger.LogEntry) string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	parts = append(parts, e.Message)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Fields[k]))
	}
	return strings.Join(parts, " ")
}

// Filter returns the active level filter.
func (s *LogsScreen) Filter() string { return logFilters[s.filterIdx] }

// Visible returns the number of entries passing the filter.
func (s *LogsScreen) Visible() int { return len(s.filtered) }

func (s *LogsScreen) View() string {
	var content strings.Builder

	content.WriteString(style.Title().Render("Application Logs"))
	content.WriteString("\n")

	status := []string{
		fmt.Sprintf("Total: %d", len(s.entries)),
		fmt.Sprintf("Shown: %d", len(s.filtered)),
		fmt.Sprintf("Filter: %s", s.Filter()),
		fmt.Sprintf("Updated: %s", s.lastUpdate.Format("15:04:05")),
	}
	if s.tail {
		status = append(status, "tail")
	}
	content.WriteString(style.Muted().Render(strings.Join(status, " • ")))
	content.WriteString("\n\n")

	content.WriteString(s.table.View())
	content.WriteString("\n")
	content.WriteString(s.helpBar.SetWidth(s.width).View())
	return content.String()
}

func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	// title, status, table chrome and help
	s.table.SetHeight(max(height-10, 5))
}
