package ui

import (
	"errors"
	"strings"
	"testing"
)

func TestEntityTableRows(t *testing.T) {
	table := NewEntityTable("Orders", []string{"Order", "Status"})
	table.SetRows([][]string{{"1042", "Pending"}}, 1)

	styles := DefaultStyles()
	view := table.View(styles)

	if !strings.Contains(view, "Orders") {
		t.Error("View missing title")
	}
	if !strings.Contains(view, "1042") {
		t.Error("View missing cell content")
	}
}

func TestEntityTableEmptyCollection(t *testing.T) {
	table := NewEntityTable("Orders", []string{"Order", "Status"})
	table.EmptyMsg = "No orders found"
	table.SetRows(nil, 0)

	view := table.View(DefaultStyles())
	if !strings.Contains(view, "No orders found") {
		t.Error("Empty collection should render the empty row, not a bare table")
	}
}

func TestEntityTableNoMatchesIsDistinct(t *testing.T) {
	table := NewEntityTable("Orders", []string{"Order", "Status"})
	table.EmptyMsg = "No orders found"
	// Five documents exist but the filter removed them all.
	table.SetRows(nil, 5)

	view := table.View(DefaultStyles())
	if strings.Contains(view, "No orders found") {
		t.Error("Filtered-to-nothing must not render the empty-collection row")
	}
	if !strings.Contains(view, "No matches") {
		t.Error("View missing the no-matches row")
	}
}

func TestEntityTableErrorReplacesLoading(t *testing.T) {
	table := NewEntityTable("Orders", []string{"Order"})
	table.SetLoading()

	view := table.View(DefaultStyles())
	if !strings.Contains(view, "Loading") {
		t.Error("View missing loading placeholder")
	}

	table.SetError(errors.New("request timed out"))
	view = table.View(DefaultStyles())
	if strings.Contains(view, "Loading") {
		t.Error("Loading placeholder must not survive a failed load")
	}
	if !strings.Contains(view, "request timed out") {
		t.Error("View missing error row")
	}
}
