package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shopadmin/internal/backend"
	"shopadmin/internal/entity"
	"shopadmin/internal/loader"
)

// ordersPage lists orders with debounced free-text search and a cycling
// status filter, and opens the order detail modal.
type ordersPage struct {
	loads  *loader.Loader[entity.Order]
	detail *loader.Detail[entity.Order]

	table       *EntityTable
	orders      []entity.Order
	searchInput textinput.Model
	searchFocus bool
	debounce    *SearchDebouncer
	status      string // "" means all statuses
	cursor      int

	events chan<- tea.Msg
	styles Styles
}

func newOrdersPage(loads *loader.Loader[entity.Order], detail *loader.Detail[entity.Order], events chan<- tea.Msg, debounce *SearchDebouncer, styles Styles) *ordersPage {
	si := textinput.New()
	si.Placeholder = "Search orders..."
	si.CharLimit = 64
	si.Width = 30

	t := NewEntityTable("Orders", []string{"Order", "Date", "Customer", "Total", "Status"})
	t.EmptyMsg = "No orders found"

	return &ordersPage{
		loads:       loads,
		detail:      detail,
		table:       t,
		searchInput: si,
		debounce:    debounce,
		events:      events,
		styles:      styles,
	}
}

// query assembles the current load request.
func (p *ordersPage) query() loader.Query {
	return loader.Query{Search: p.searchInput.Value(), Status: p.status}
}

// reload issues a fresh load and renders the placeholder immediately.
func (p *ordersPage) reload() tea.Cmd {
	p.table.SetLoading()
	seq := p.loads.Issue()
	q := p.query()
	return func() tea.Msg {
		snap, err := p.loads.Load(context.Background(), seq, q)
		return ordersMsg{snap: snap, err: err}
	}
}

func (p *ordersPage) openSelected() tea.Cmd {
	if p.cursor < 0 || p.cursor >= len(p.orders) {
		return nil
	}
	id := p.orders[p.cursor].ID
	return func() tea.Msg {
		o, err := p.detail.Open(context.Background(), id)
		return orderDetailMsg{order: o, err: err}
	}
}

func (p *ordersPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.searchFocus {
			switch msg.String() {
			case "esc":
				p.searchFocus = false
				p.searchInput.Blur()
				return nil
			case "enter":
				p.searchFocus = false
				p.searchInput.Blur()
				p.debounce.Cancel()
				return p.reload()
			}
			var cmd tea.Cmd
			p.searchInput, cmd = p.searchInput.Update(msg)
			// Keystrokes settle before a reload fires.
			p.debounce.Search(p.searchInput.Value(), func(q string) {
				p.events <- searchTickMsg{page: loader.PageOrders, query: q}
			})
			return cmd
		}
		switch msg.String() {
		case "/":
			p.searchFocus = true
			return p.searchInput.Focus()
		case "f":
			p.cycleStatus()
			return p.reload()
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.orders)-1 {
				p.cursor++
			}
		case "enter":
			return p.openSelected()
		case "r":
			return p.reload()
		}

	case ordersMsg:
		if msg.err != nil {
			// Superseded and skipped loads are not failures; the newer load
			// owns the table.
			if isStale(msg.err) {
				return nil
			}
			p.table.SetError(userFacing(msg.err))
			return nil
		}
		p.orders = msg.snap.Entities
		if p.cursor >= len(p.orders) {
			p.cursor = 0
		}
		rows := make([][]string, 0, len(p.orders))
		for _, o := range p.orders {
			rows = append(rows, []string{
				o.OrderIDLabel(),
				entity.OrFallback(o.Date),
				entity.OrFallback(o.UserID),
				entity.FormatVND(o.Total()),
				o.StatusOrDefault(),
			})
		}
		p.table.SetRows(rows, msg.snap.Total)

	case searchTickMsg:
		if msg.page == loader.PageOrders {
			return p.reload()
		}
	}
	return nil
}

// cycleStatus advances the status filter: all -> each status -> all.
func (p *ordersPage) cycleStatus() {
	if p.status == "" {
		p.status = entity.Statuses[0]
		return
	}
	for i, s := range entity.Statuses {
		if s == p.status {
			if i == len(entity.Statuses)-1 {
				p.status = ""
			} else {
				p.status = entity.Statuses[i+1]
			}
			return
		}
	}
	p.status = ""
}

func (p *ordersPage) view() string {
	var sb strings.Builder

	inputStyle := p.styles.Input
	if p.searchFocus {
		inputStyle = p.styles.Focused
	}
	sb.WriteString(inputStyle.Render(p.searchInput.View()))
	sb.WriteString("  ")
	statusLabel := p.status
	if statusLabel == "" {
		statusLabel = "All"
	}
	sb.WriteString(p.styles.Muted.Render("Status: ") + p.styles.Bold.Render(statusLabel))
	sb.WriteString("  " + p.styles.Muted.Render("[/] Search  [f] Status  [enter] Detail"))
	sb.WriteString("\n\n")

	sb.WriteString(p.table.View(p.styles))
	if len(p.orders) > 0 && p.cursor < len(p.orders) {
		sel := p.orders[p.cursor]
		sb.WriteString(p.styles.Muted.Render(
			fmt.Sprintf("Selected: %s (%d of %d)", sel.OrderIDLabel(), p.cursor+1, len(p.orders))))
		sb.WriteString("\n")
	}
	return sb.String()
}

// isStale reports whether a load error only means the result was discarded.
func isStale(err error) bool {
	return err != nil && (errors.Is(err, loader.ErrSuperseded) || errors.Is(err, loader.ErrInactive))
}

// userFacing converts a load error into its display form, keeping timeout
// errors distinguishable.
func userFacing(err error) error {
	if errors.Is(err, backend.ErrTimeout) {
		return errors.New("request timed out")
	}
	return err
}
