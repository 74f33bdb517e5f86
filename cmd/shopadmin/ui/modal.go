package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shopadmin/internal/backend"
	"shopadmin/internal/entity"
	"shopadmin/internal/loader"
)

// orderModal is the order detail view: line items, shipping address, and
// the status update control.
type orderModal struct {
	detail *loader.Detail[entity.Order]

	order     entity.Order
	loadErr   error
	loading   bool
	statusIdx int
	busy      bool // a status write is in flight; controls disabled
	notice    string

	styles Styles
}

func newOrderModal(detail *loader.Detail[entity.Order], styles Styles) *orderModal {
	return &orderModal{detail: detail, styles: styles}
}

func (m *orderModal) open() {
	m.loading = true
	m.loadErr = nil
	m.busy = false
	m.notice = ""
}

func (m *orderModal) close() {
	m.detail.Close()
}

func (m *orderModal) update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return nil, false
		}
		switch msg.String() {
		case "esc", "q":
			m.close()
			return nil, true
		case "left", "h":
			if m.statusIdx > 0 {
				m.statusIdx--
			}
		case "right", "l":
			if m.statusIdx < len(entity.Statuses)-1 {
				m.statusIdx++
			}
		case "enter":
			if m.loadErr != nil {
				return nil, false
			}
			m.busy = true
			m.notice = ""
			status := entity.Statuses[m.statusIdx]
			return func() tea.Msg {
				err := m.detail.UpdateStatus(context.Background(), "orderStatus", status)
				return statusUpdatedMsg{status: status, err: err}
			}, false
		}

	case orderDetailMsg:
		m.loading = false
		if msg.err != nil {
			// Not-found renders inside the still-open modal.
			m.loadErr = msg.err
			return nil, false
		}
		m.order = msg.order
		m.statusIdx = statusIndex(m.order.StatusOrDefault())

	case statusUpdatedMsg:
		// Controls re-enable whether the write landed or failed.
		m.busy = false
		if msg.err != nil {
			m.notice = m.styles.Error.Render(backend.UserMessage(msg.err))
			return nil, false
		}
		m.order.Status = msg.status
		m.notice = m.styles.Success.Render("status updated")
	}
	return nil, false
}

func statusIndex(status string) int {
	for i, s := range entity.Statuses {
		if s == status {
			return i
		}
	}
	return 0
}

func (m *orderModal) view() string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Order Detail") + "\n")

	switch {
	case m.loading:
		sb.WriteString(m.styles.Muted.Render("Loading...") + "\n")
	case m.loadErr != nil:
		sb.WriteString(m.styles.Error.Render(backend.UserMessage(m.loadErr)) + "\n")
	default:
		o := m.order
		sb.WriteString(m.styles.Bold.Render(o.OrderIDLabel()) + "  " + m.styles.StatusBadge(o.StatusOrDefault()) + "\n")
		sb.WriteString(m.styles.Muted.Render("Date: ") + entity.OrFallback(o.Date) + "\n")
		sb.WriteString(m.styles.Muted.Render("Customer: ") + entity.OrFallback(o.UserID) + "\n")
		sb.WriteString(m.styles.Muted.Render("Ship to: ") + o.Shipping.Format() + "\n")
		if o.Note != "" {
			sb.WriteString(m.styles.Muted.Render("Note: ") + o.Note + "\n")
		}
		sb.WriteString("\n")
		for _, it := range o.Items {
			sb.WriteString(fmt.Sprintf("  %s ×%d  %s\n",
				entity.OrFallback(it.Name), it.QuantityOrOne(), entity.FormatVND(it.Total())))
		}
		// Total always derives from line items.
		sb.WriteString(m.styles.Bold.Render("Total: "+entity.FormatVND(o.Total())) + "\n\n")

		sb.WriteString(m.styles.Muted.Render("Set status: "))
		for i, s := range entity.Statuses {
			if i == m.statusIdx {
				sb.WriteString(m.styles.TabActive.Render(s))
			} else {
				sb.WriteString(m.styles.TabInactive.Render(s))
			}
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
		if m.busy {
			sb.WriteString(m.styles.Muted.Render("Updating...") + "\n")
		} else {
			sb.WriteString(m.styles.Muted.Render("[←/→] Choose  [enter] Update  [esc] Close") + "\n")
		}
	}

	if m.notice != "" {
		sb.WriteString(m.notice + "\n")
	}
	return m.styles.Modal.Render(sb.String())
}

// productModal is the create/edit form for a product.
type productModal struct {
	detail *loader.Detail[entity.Product]

	editing bool // false while creating
	loading bool
	loadErr error
	inputs  []textinput.Model
	focus   int
	busy    bool
	notice  string

	styles Styles
}

const (
	fieldName = iota
	fieldCategory
	fieldPrice
	fieldDescription
	fieldCount
)

func newProductModal(detail *loader.Detail[entity.Product], styles Styles) *productModal {
	inputs := make([]textinput.Model, fieldCount)
	for i, placeholder := range []string{"Name", "Category", "Price (VND)", "Description"} {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.CharLimit = 128
		ti.Width = 40
		inputs[i] = ti
	}
	return &productModal{detail: detail, inputs: inputs, styles: styles}
}

// openNew resets the form for creating a product.
func (m *productModal) openNew() tea.Cmd {
	m.editing = false
	m.loading = false
	m.loadErr = nil
	m.busy = false
	m.notice = ""
	m.clearForm()
	return m.inputs[fieldName].Focus()
}

// openEdit resets the form for editing. The fields stay blank and the keys
// inert until the fetched product arrives.
func (m *productModal) openEdit() {
	m.editing = true
	m.loading = true
	m.loadErr = nil
	m.busy = false
	m.notice = ""
	m.clearForm()
}

func (m *productModal) clearForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldName
}

// fill populates the form from the fetched product.
func (m *productModal) fill(p entity.Product) tea.Cmd {
	m.inputs[fieldName].SetValue(p.Name)
	m.inputs[fieldCategory].SetValue(p.Category)
	if p.HasPrice {
		m.inputs[fieldPrice].SetValue(strconv.FormatFloat(p.Price, 'f', -1, 64))
	} else {
		m.inputs[fieldPrice].SetValue("")
	}
	m.inputs[fieldDescription].SetValue(p.Description)
	m.focus = fieldName
	return m.inputs[fieldName].Focus()
}

func (m *productModal) close() {
	m.detail.Close()
}

// save validates the form and writes the product. Create stamps createdAt
// and updatedAt; edit refreshes updatedAt only.
func (m *productModal) save() tea.Cmd {
	name := m.inputs[fieldName].Value()
	price := m.inputs[fieldPrice].Value()
	if err := entity.ValidateProductForm(name, price); err != nil {
		m.notice = m.styles.Error.Render(backend.UserMessage(err))
		return nil
	}
	priceVal, err := entity.ParsePrice(price)
	if err != nil {
		m.notice = m.styles.Error.Render(backend.UserMessage(err))
		return nil
	}
	fields := map[string]any{
		"name":        strings.TrimSpace(name),
		"category":    strings.TrimSpace(m.inputs[fieldCategory].Value()),
		"price":       priceVal,
		"description": strings.TrimSpace(m.inputs[fieldDescription].Value()),
	}

	m.busy = true
	m.notice = ""
	// The save targets the detail currently open; a create has none.
	id := ""
	if m.editing {
		id = m.detail.CurrentID()
	}
	return func() tea.Msg {
		newID, err := m.detail.Save(context.Background(), id, fields)
		return productSavedMsg{id: newID, err: err}
	}
}

// update returns (cmd, closed, saved). saved is true when a save landed and
// the owning list should reload.
func (m *productModal) update(msg tea.Msg) (tea.Cmd, bool, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return nil, false, false
		}
		if m.loading || m.loadErr != nil {
			// Only dismissal works until the fetch lands.
			if msg.String() == "esc" {
				m.close()
				return nil, true, false
			}
			return nil, false, false
		}
		switch msg.String() {
		case "esc":
			m.close()
			return nil, true, false
		case "tab", "down":
			return m.setFocus((m.focus + 1) % fieldCount), false, false
		case "shift+tab", "up":
			return m.setFocus((m.focus + fieldCount - 1) % fieldCount), false, false
		case "enter":
			return m.save(), false, false
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return cmd, false, false

	case productDetailMsg:
		m.loading = false
		if msg.err != nil {
			// Not-found renders inside the still-open modal.
			m.loadErr = msg.err
			return nil, false, false
		}
		return m.fill(msg.product), false, false

	case productSavedMsg:
		m.busy = false
		if msg.err != nil {
			// Save failed: the modal stays open with the form intact.
			m.notice = m.styles.Error.Render(backend.UserMessage(msg.err))
			return nil, false, false
		}
		m.close()
		return nil, true, true
	}
	return nil, false, false
}

func (m *productModal) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *productModal) view() string {
	var sb strings.Builder
	if m.editing {
		sb.WriteString(m.styles.Title.Render("Edit Product") + "\n")
	} else {
		sb.WriteString(m.styles.Title.Render("New Product") + "\n")
	}

	switch {
	case m.loading:
		sb.WriteString(m.styles.Muted.Render("Loading...") + "\n")
	case m.loadErr != nil:
		sb.WriteString(m.styles.Error.Render(backend.UserMessage(m.loadErr)) + "\n")
		sb.WriteString(m.styles.Muted.Render("[esc] Close") + "\n")
	default:
		for i := range m.inputs {
			style := m.styles.Input
			if i == m.focus {
				style = m.styles.Focused
			}
			sb.WriteString(style.Render(m.inputs[i].View()) + "\n")
		}
		if m.busy {
			sb.WriteString(m.styles.Muted.Render("Saving...") + "\n")
		} else {
			sb.WriteString(m.styles.Muted.Render("[tab] Next field  [enter] Save  [esc] Cancel") + "\n")
		}
	}
	if m.notice != "" {
		sb.WriteString(m.notice + "\n")
	}
	return m.styles.Modal.Render(sb.String())
}
