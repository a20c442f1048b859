package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Step status values shown in tables.
const (
	StatusDone    = "done"
	StatusPending = "pending"
	StatusUnknown = "unknown"
)

// Column represents a table column definition
type Column struct {
	Title     string
	Key       string
	Width     int
	MinWidth  int
	MaxWidth  int
	Truncate  bool
	StyleFunc func(value string) lipgloss.Style
	Condition bool
}

// Row represents a table row with data
type Row map[string]string

// Table renders rows under a styled header, sizing columns to their content
type Table struct {
	columns        []Column
	rows           []Row
	headerStyle    lipgloss.Style
	separatorStyle lipgloss.Style
	maxWidth       int
}

// NewTable creates a new table with default styling
func NewTable() *Table {
	return &Table{
		headerStyle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorBrightCyan)).Padding(0, 1),
		separatorStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightGray)),
		maxWidth:       min(getTerminalWidth(), TableMaxWidth),
	}
}

// SetColumns sets the table columns
func (t *Table) SetColumns(columns []Column) *Table {
	t.columns = columns
	return t
}

// SetRows sets the table data
func (t *Table) SetRows(rows []Row) *Table {
	t.rows = rows
	return t
}

// SetMaxWidth sets the maximum table width
func (t *Table) SetMaxWidth(width int) *Table {
	t.maxWidth = width
	return t
}

func (t *Table) visibleColumns() []Column {
	var visible []Column
	for _, col := range t.columns {
		if col.Condition {
			visible = append(visible, col)
		}
	}
	return visible
}

// columnWidths sizes each visible column to its widest cell, then shrinks
// flexible columns to fit maxWidth.
func (t *Table) columnWidths(columns []Column) []int {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = max(runewidth.StringWidth(col.Title), col.MinWidth)
		if col.Width > 0 {
			widths[i] = col.Width
			continue
		}
		for _, row := range t.rows {
			widths[i] = max(widths[i], runewidth.StringWidth(row[col.Key]))
		}
	}

	fixed, flexible := 0, 0
	for i, col := range columns {
		if col.MaxWidth > 0 && widths[i] > col.MaxWidth {
			widths[i] = col.MaxWidth
		}
		if col.Width > 0 {
			fixed += widths[i]
		} else {
			flexible++
		}
	}

	if flexible > 0 && t.maxWidth > 0 {
		available := t.maxWidth - fixed - len(columns)*2
		if available > 0 {
			perColumn := available / flexible
			for i, col := range columns {
				if col.Width == 0 {
					widths[i] = min(widths[i], perColumn)
				}
			}
		}
	}

	return widths
}

// Render renders the table as a string
func (t *Table) Render() string {
	columns := t.visibleColumns()
	if len(columns) == 0 {
		return ""
	}

	var sb strings.Builder
	widths := t.columnWidths(columns)

	headers := make([]string, len(columns))
	for i, col := range columns {
		header := lipgloss.NewStyle().
			Width(widths[i]).
			MaxWidth(widths[i]).
			Inline(true).
			Render(truncateText(col.Title, widths[i]))
		headers[i] = t.headerStyle.Render(header)
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, headers...))
	sb.WriteString("\n")

	total := 0
	for _, width := range widths {
		total += width + 2
	}
	sb.WriteString(t.separatorStyle.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, row := range t.rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			value := row[col.Key]
			if value == "" {
				value = "-"
			}

			style := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightWhite))
			if col.StyleFunc != nil {
				style = col.StyleFunc(value)
			}

			content := value
			if col.Truncate || runewidth.StringWidth(value) > widths[i] {
				content = truncateText(value, widths[i])
			}

			cell := style.
				Width(widths[i]).
				MaxWidth(widths[i]).
				Inline(true).
				Render(content)
			cells[i] = lipgloss.NewStyle().Padding(0, 1).Render(cell)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, cells...))
		sb.WriteString("\n")
	}

	return sb.String()
}

// Fprint renders the table to w
func (t *Table) Fprint(w io.Writer) error {
	_, err := fmt.Fprint(w, t.Render())
	return err
}

// truncateText truncates text with an ellipsis
func truncateText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return runewidth.Truncate(text, maxWidth-1, "…")
}

func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return TableMaxWidth
	}
	return width
}

// IsTerminal reports whether stdout is a terminal
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetStepStatusStyle colors a step status value
func GetStepStatusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)).Bold(true)
	case StatusPending:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightGray))
	}
}

// GetPercentageStyle colors a completion percentage
func GetPercentageStyle(pct float64) lipgloss.Style {
	switch {
	case pct >= 100:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)).Bold(true)
	case pct > 0:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed))
	}
}
