package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// EntityTable renders one entity collection. Besides rows it carries the
// view states the loaders distinguish: loading placeholder, inline error,
// "collection is empty" and "nothing matches the filter".
type EntityTable struct {
	Title   string
	Headers []string
	Rows    [][]string

	Loading  bool
	Err      error
	EmptyMsg string // shown when the collection itself is empty
	NoMatch  bool   // true when rows were filtered away, not absent
}

// NewEntityTable creates a table with the given title and headers.
func NewEntityTable(title string, headers []string) *EntityTable {
	return &EntityTable{
		Title:   title,
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

// SetLoading puts the table into the loading state, dropping stale rows.
func (t *EntityTable) SetLoading() {
	t.Loading = true
	t.Err = nil
	t.NoMatch = false
	t.Rows = t.Rows[:0]
}

// SetError puts the table into the error state. The loading placeholder
// never survives a failed load.
func (t *EntityTable) SetError(err error) {
	t.Loading = false
	t.Err = err
	t.Rows = t.Rows[:0]
}

// SetRows replaces the rows wholesale. total is the pre-filter document
// count, used to tell an empty collection apart from an over-narrow filter.
func (t *EntityTable) SetRows(rows [][]string, total int) {
	t.Loading = false
	t.Err = nil
	t.Rows = rows
	t.NoMatch = len(rows) == 0 && total > 0
}

// View renders the table using the provided styles.
func (t *EntityTable) View(styles Styles) string {
	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	switch {
	case t.Loading:
		sb.WriteString(styles.Muted.Render("Loading..."))
		sb.WriteString("\n")
		return sb.String()
	case t.Err != nil:
		sb.WriteString(styles.Error.Render("Error: " + t.Err.Error()))
		sb.WriteString("\n")
		return sb.String()
	case len(t.Rows) == 0 && t.NoMatch:
		sb.WriteString(styles.Muted.Render("No matches"))
		sb.WriteString("\n")
		return sb.String()
	case len(t.Rows) == 0:
		msg := t.EmptyMsg
		if msg == "" {
			msg = "No records found"
		}
		sb.WriteString(styles.Muted.Render(msg))
		sb.WriteString("\n")
		return sb.String()
	}

	// Column widths from headers and cells
	colWidths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		colWidths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				if w := lipgloss.Width(cell); w > colWidths[i] {
					colWidths[i] = w
				}
			}
		}
	}
	for i := range colWidths {
		colWidths[i] += 2
	}

	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	sepStyle := styles.Muted

	for i, h := range t.Headers {
		sb.WriteString(headerStyle.Width(colWidths[i]).Render(h))
		if i < len(t.Headers)-1 {
			sb.WriteString(sepStyle.Render("|"))
		}
	}
	sb.WriteString("\n")

	totalWidth := len(t.Headers) - 1
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(sepStyle.Render(strings.Repeat("-", totalWidth)) + "\n")

	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				sb.WriteString(rowStyle.Width(colWidths[i]).Render(cell))
				if i < len(row)-1 {
					sb.WriteString(sepStyle.Render("|"))
				}
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
