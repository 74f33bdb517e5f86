package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/lipgloss"

	"shopadmin/internal/backend"
	"shopadmin/internal/entity"
	"shopadmin/internal/loader"
)

// dashboardPage shows the summary tiles and the recent orders table.
type dashboardPage struct {
	loads *loader.SummaryLoader
	store backend.DocumentStore

	sum     loader.Summary
	loaded  bool
	loadErr error
	recent  *EntityTable
	latency string

	styles Styles
}

func newDashboardPage(loads *loader.SummaryLoader, store backend.DocumentStore, styles Styles) *dashboardPage {
	t := NewEntityTable("Recent Orders", []string{"Order", "Date", "Total", "Status"})
	t.EmptyMsg = "No orders yet"
	return &dashboardPage{
		loads:  loads,
		store:  store,
		recent: t,
		styles: styles,
	}
}

func (p *dashboardPage) reload() tea.Cmd {
	p.loaded = false
	p.loadErr = nil
	p.recent.SetLoading()
	seq := p.loads.Issue()
	return tea.Batch(
		func() tea.Msg {
			sum, err := p.loads.Load(context.Background(), seq)
			return summaryMsg{sum: sum, err: err}
		},
		p.ping(),
	)
}

// ping probes the store so the footer can show backend health.
func (p *dashboardPage) ping() tea.Cmd {
	return func() tea.Msg {
		d, err := p.store.Ping(context.Background())
		return pingMsg{latency: d, err: err}
	}
}

func (p *dashboardPage) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "r" {
			return p.reload()
		}

	case summaryMsg:
		if msg.err != nil {
			if isStale(msg.err) {
				return nil
			}
			p.loadErr = userFacing(msg.err)
			p.recent.SetError(p.loadErr)
			return nil
		}
		p.sum = msg.sum
		p.loaded = true
		rows := make([][]string, 0, len(msg.sum.Recent))
		for _, o := range msg.sum.Recent {
			rows = append(rows, []string{
				o.OrderIDLabel(),
				entity.OrFallback(o.Date),
				entity.FormatVND(o.Total()),
				o.StatusOrDefault(),
			})
		}
		p.recent.SetRows(rows, msg.sum.OrderCount)

	case pingMsg:
		if msg.err != nil {
			p.latency = p.styles.Error.Render("store unreachable")
		} else {
			p.latency = p.styles.Muted.Render(fmt.Sprintf("store: %s", msg.latency.Round(100*time.Microsecond)))
		}
	}
	return nil
}

func (p *dashboardPage) view() string {
	var sb strings.Builder

	if p.loadErr != nil {
		sb.WriteString(p.styles.Error.Render("Error: "+p.loadErr.Error()) + "\n\n")
	} else if !p.loaded {
		sb.WriteString(p.styles.Muted.Render("Loading...") + "\n\n")
	} else {
		sb.WriteString(p.renderTiles() + "\n\n")
	}

	sb.WriteString(p.recent.View(p.styles))
	if p.latency != "" {
		sb.WriteString("\n" + p.latency + "\n")
	}
	return sb.String()
}

// renderTiles lays the four summary cards out side by side. A tile that
// failed renders its error without blanking the others.
func (p *dashboardPage) renderTiles() string {
	tile := func(label, value string, err error) string {
		body := p.styles.Bold.Render(value) + "\n" + p.styles.Muted.Render(label)
		if err != nil {
			body = p.styles.Error.Render("unavailable") + "\n" + p.styles.Muted.Render(label)
		}
		return p.styles.Card.Render(body)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Orders", fmt.Sprintf("%d", p.sum.OrderCount), p.sum.OrdersErr),
		" ",
		tile("Revenue", entity.FormatVND(p.sum.Revenue), p.sum.OrdersErr),
		" ",
		tile("Products", fmt.Sprintf("%d", p.sum.ProductCount), p.sum.ProductsErr),
		" ",
		tile("Users", fmt.Sprintf("%d", p.sum.UserCount), p.sum.UsersErr),
	)
}
