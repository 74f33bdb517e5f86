package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shopadmin/internal/entity"
	"shopadmin/internal/loader"
)

// productsPage lists products with debounced search, and opens the product
// modal for edit ("enter") or create ("n").
type productsPage struct {
	loads  *loader.Loader[entity.Product]
	detail *loader.Detail[entity.Product]

	table       *EntityTable
	products    []entity.Product
	searchInput textinput.Model
	searchFocus bool
	debounce    *SearchDebouncer
	cursor      int

	events chan<- tea.Msg
	styles Styles
}

func newProductsPage(loads *loader.Loader[entity.Product], detail *loader.Detail[entity.Product], events chan<- tea.Msg, debounce *SearchDebouncer, styles Styles) *productsPage {
	si := textinput.New()
	si.Placeholder = "Search products..."
	si.CharLimit = 64
	si.Width = 30

	t := NewEntityTable("Products", []string{"Name", "Category", "Price", "Offer", "Colors"})
	t.EmptyMsg = "No products found"

	return &productsPage{
		loads:       loads,
		detail:      detail,
		table:       t,
		searchInput: si,
		debounce:    debounce,
		events:      events,
		styles:      styles,
	}
}

func (p *productsPage) reload() tea.Cmd {
	p.table.SetLoading()
	seq := p.loads.Issue()
	q := loader.Query{Search: p.searchInput.Value()}
	return func() tea.Msg {
		snap, err := p.loads.Load(context.Background(), seq, q)
		return productsMsg{snap: snap, err: err}
	}
}

func (p *productsPage) openSelected() tea.Cmd {
	if p.cursor < 0 || p.cursor >= len(p.products) {
		return nil
	}
	id := p.products[p.cursor].ID
	return func() tea.Msg {
		prod, err := p.detail.Open(context.Background(), id)
		return productDetailMsg{product: prod, err: err}
	}
}

func (p *productsPage) update(msg tea.Msg) tea.Cmd {
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
			p.debounce.Search(p.searchInput.Value(), func(q string) {
				p.events <- searchTickMsg{page: loader.PageProducts, query: q}
			})
			return cmd
		}
		switch msg.String() {
		case "/":
			p.searchFocus = true
			return p.searchInput.Focus()
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.products)-1 {
				p.cursor++
			}
		case "enter":
			return p.openSelected()
		case "r":
			return p.reload()
		}

	case productsMsg:
		if msg.err != nil {
			if isStale(msg.err) {
				return nil
			}
			p.table.SetError(userFacing(msg.err))
			return nil
		}
		p.products = msg.snap.Entities
		if p.cursor >= len(p.products) {
			p.cursor = 0
		}
		rows := make([][]string, 0, len(p.products))
		for _, prod := range p.products {
			rows = append(rows, []string{
				entity.OrFallback(prod.Name),
				entity.OrFallback(prod.Category),
				prod.PriceLabel(),
				offerLabel(prod.OfferPercentage),
				strings.Join(prod.Colors, " "),
			})
		}
		p.table.SetRows(rows, msg.snap.Total)

	case searchTickMsg:
		if msg.page == loader.PageProducts {
			return p.reload()
		}
	}
	return nil
}

func offerLabel(pct int) string {
	if pct <= 0 {
		return ""
	}
	return fmt.Sprintf("%d%%", pct)
}

func (p *productsPage) view() string {
	var sb strings.Builder

	inputStyle := p.styles.Input
	if p.searchFocus {
		inputStyle = p.styles.Focused
	}
	sb.WriteString(inputStyle.Render(p.searchInput.View()))
	sb.WriteString("  " + p.styles.Muted.Render("[/] Search  [n] New  [enter] Edit"))
	sb.WriteString("\n\n")
	sb.WriteString(p.table.View(p.styles))
	return sb.String()
}
