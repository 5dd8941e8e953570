// internal/ui/component/table.go
package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/dex2k/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow is one rendered row. Cells may carry their own style.
type TableRow struct {
	Data   []string
	Styles map[int]lipgloss.Style
}

// Table represents a data table component
type Table struct {
	columns     []TableColumn
	rows        []TableRow
	selectedRow int

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style

	showBorder bool
	selectable bool
	emptyText  string
	height     int // visible rows, 0 shows all
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		showBorder: true,
		selectable: true,
		emptyText:  "Nothing to show",
	}
}

// AddColumn adds a column to the table
func (t *Table) AddColumn(header string, width int, align lipgloss.Position) *Table {
	t.columns = append(t.columns, TableColumn{
		Header: header,
		Width:  width,
		Align:  align,
	})
	return t
}

// SetRows replaces all rows, keeping the selection in range.
func (t *Table) SetRows(rows [][]string) *Table {
	t.rows = make([]TableRow, len(rows))
	for i, data := range rows {
		t.rows[i] = TableRow{Data: data}
	}
	if t.selectedRow >= len(t.rows) {
		t.selectedRow = len(t.rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	return t
}

// SetCellStyle overrides the style of one cell.
func (t *Table) SetCellStyle(row, col int, s lipgloss.Style) *Table {
	if row < 0 || row >= len(t.rows) {
		return t
	}
	if t.rows[row].Styles == nil {
		t.rows[row].Styles = make(map[int]lipgloss.Style)
	}
	t.rows[row].Styles[col] = s
	return t
}

// SetEmptyText sets the placeholder shown when there are no rows.
func (t *Table) SetEmptyText(text string) *Table {
	t.emptyText = text
	return t
}

// GetSelectedRow returns the currently selected row index
func (t *Table) GetSelectedRow() int {
	return t.selectedRow
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectable && t.selectedRow > 0 {
		t.selectedRow--
	}
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectable && t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	return t
}

// SetSelectable enables/disables row selection
func (t *Table) SetSelectable(selectable bool) *Table {
	t.selectable = selectable
	return t
}

// SetShowBorder enables/disables table border
func (t *Table) SetShowBorder(show bool) *Table {
	t.showBorder = show
	return t
}

// SetHeight limits the rendered rows to a window that follows the
// selection. Zero renders every row.
func (t *Table) SetHeight(rows int) *Table {
	if rows < 0 {
		rows = 0
	}
	t.height = rows
	return t
}

func (t *Table) window() (start, end int) {
	n := len(t.rows)
	if t.height == 0 || n <= t.height {
		return 0, n
	}
	start = t.selectedRow - t.height/2
	if start < 0 {
		start = 0
	}
	if start+t.height > n {
		start = n - t.height
	}
	return start, start + t.height
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return ""
	}

	var content strings.Builder

	header := make([]string, len(t.columns))
	sep := make([]string, len(t.columns))
	for i, col := range t.columns {
		header[i] = renderCell(col.Header, col, t.headerStyle)
		sep[i] = strings.Repeat("─", col.Width)
	}
	content.WriteString(strings.Join(header, "│"))
	content.WriteString("\n")
	content.WriteString(strings.Join(sep, "┼"))

	if len(t.rows) == 0 {
		content.WriteString("\n")
		content.WriteString(style.Muted().Padding(0, 1).Render(t.emptyText))
	}

	start, end := t.window()
	for r := start; r < end; r++ {
		row := t.rows[r]
		selected := t.selectable && r == t.selectedRow
		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			data := ""
			if i < len(row.Data) {
				data = row.Data[i]
			}
			s := t.rowStyle
			if selected {
				s = t.selectedRowStyle
			} else if cs, ok := row.Styles[i]; ok {
				s = cs.Padding(0, 1)
			}
			cells[i] = renderCell(data, col, s)
		}
		content.WriteString("\n")
		content.WriteString(strings.Join(cells, "│"))
	}

	if t.showBorder {
		return t.borderStyle.Render(content.String())
	}
	return content.String()
}

// GetRowCount returns the number of rows
func (t *Table) GetRowCount() int {
	return len(t.rows)
}

// GetSelectedRowData returns the data of the currently selected row
func (t *Table) GetSelectedRowData() []string {
	if t.selectedRow >= 0 && t.selectedRow < len(t.rows) {
		return t.rows[t.selectedRow].Data
	}
	return nil
}

// renderCell truncates to the column width, counting cells, not bytes.
func renderCell(content string, col TableColumn, s lipgloss.Style) string {
	inner := col.Width - 2
	if inner > 0 && lipgloss.Width(content) > inner {
		runes := []rune(content)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > inner {
			runes = runes[:len(runes)-1]
		}
		content = string(runes) + "…"
	}
	return s.Width(col.Width).Align(col.Align).Render(content)
}
