package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Alignment represents column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// ColumnDef defines a column in a Table.
type ColumnDef struct {
	Name       string         // Column name, for lookups
	WidthRatio float64        // Proportion of flexible width (0.0-1.0), 0 means fixed width
	MinWidth   int            // Minimum width in characters
	MaxWidth   int            // Maximum width (0 = no limit)
	Align      Alignment      // Text alignment
	Style      lipgloss.Style // Style to apply to cells in this column
}

// Column definitions for roadmap listings.
var (
	ColLabel = ColumnDef{
		Name:       "label",
		WidthRatio: 0.25,
		MinWidth:   12,
		MaxWidth:   40,
		Style:      Accent,
	}

	ColPriority = ColumnDef{
		Name:     "priority",
		MinWidth: 3,
		MaxWidth: 3,
		Style:    Bold,
	}

	ColKind = ColumnDef{
		Name:     "kind",
		MinWidth: 8,
		MaxWidth: 8,
		Style:    Muted,
	}

	ColLayer = ColumnDef{
		Name:     "layer",
		MinWidth: 9,
		MaxWidth: 9,
		Style:    Muted,
	}

	ColTitle = ColumnDef{
		Name:       "title",
		WidthRatio: 0.75,
		MinWidth:   20,
		MaxWidth:   100,
	}

	ColAction = ColumnDef{
		Name:     "action",
		MinWidth: 10,
		MaxWidth: 10,
	}

	ColRemote = ColumnDef{
		Name:     "remote",
		MinWidth: 8,
		MaxWidth: 24,
		Align:    AlignRight,
		Style:    Muted,
	}

	ColDetail = ColumnDef{
		Name:       "detail",
		WidthRatio: 0.75,
		MinWidth:   10,
		MaxWidth:   80,
		Style:      Muted,
	}
)

// Standard layouts.
var (
	// ItemLayout is used by list: [label, priority, kind, layer, title]
	ItemLayout = []ColumnDef{ColLabel, ColPriority, ColKind, ColLayer, ColTitle}

	// SyncLayout is used for push results: [label, action, remote, detail]
	SyncLayout = []ColumnDef{ColLabel, ColAction, ColRemote, ColDetail}
)

// Table renders rows in minimal style, sized to the terminal.
type Table struct {
	display *DisplayContext
	columns []ColumnDef
	rows    [][]string
}

// NewTable creates a new Table with the given display context and column layout.
func NewTable(display *DisplayContext, columns []ColumnDef) *Table {
	return &Table{display: display, columns: columns}
}

// AddRow adds a row to the table. Missing cells are left blank.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// ColumnWidth returns the calculated width for a column by name.
func (t *Table) ColumnWidth(name string) int {
	widths := t.calculateWidths()
	for i, col := range t.columns {
		if col.Name == name {
			return widths[i]
		}
	}
	return 60
}

// calculateWidths computes column widths based on terminal size and column definitions.
func (t *Table) calculateWidths() []int {
	widths := make([]int, len(t.columns))

	var totalRatio float64
	var fixedWidth int
	const columnPadding = 2

	for i, col := range t.columns {
		if col.WidthRatio == 0 {
			widths[i] = col.MinWidth
			if col.MaxWidth > 0 && widths[i] > col.MaxWidth {
				widths[i] = col.MaxWidth
			}
			fixedWidth += widths[i]
		} else {
			totalRatio += col.WidthRatio
		}
	}

	totalPadding := (len(t.columns) - 1) * columnPadding
	leftMargin := 2
	available := t.display.AvailableWidth(leftMargin) - fixedWidth - totalPadding
	if available < 0 {
		available = 0
	}

	for i, col := range t.columns {
		if col.WidthRatio > 0 {
			width := int(float64(available) * col.WidthRatio / totalRatio)
			if width < col.MinWidth {
				width = col.MinWidth
			}
			if col.MaxWidth > 0 && width > col.MaxWidth {
				width = col.MaxWidth
			}
			widths[i] = width
		}
	}

	return widths
}

// Render generates the table output as a string.
func (t *Table) Render() string {
	if len(t.rows) == 0 {
		return ""
	}

	widths := t.calculateWidths()
	rows := make([][]string, len(t.rows))
	for i, row := range t.rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = TruncateWithEllipsis(cell, widths[j])
		}
		rows[i] = cells
	}

	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col >= len(t.columns) {
				return lipgloss.NewStyle()
			}

			colDef := t.columns[col]
			style := colDef.Style.Width(widths[col])
			if colDef.Align == AlignRight {
				style = style.Align(lipgloss.Right)
			} else {
				style = style.Align(lipgloss.Left)
			}
			if col < len(t.columns)-1 {
				style = style.PaddingRight(2)
			}
			return style
		}).
		Rows(rows...)

	return tbl.Render()
}

// TruncateWithEllipsis truncates a string to maxLen runes, adding ellipsis if needed.
// It tries to break at word boundaries.
func TruncateWithEllipsis(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}

	truncated := string(runes[:maxLen-3])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
