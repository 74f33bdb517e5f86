package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shopadmin/internal/admission"
	"shopadmin/internal/backend"
	"shopadmin/internal/entity"
	"shopadmin/internal/loader"
)

// usersPage lists registered users and toggles their admin flag.
type usersPage struct {
	loads   *loader.Loader[entity.User]
	checker *admission.Checker
	store   backend.DocumentStore

	table       *EntityTable
	users       []entity.User
	adminIDs    map[string]bool
	searchInput textinput.Model
	searchFocus bool
	debounce    *SearchDebouncer
	cursor      int
	notice      string

	events chan<- tea.Msg
	styles Styles
}

func newUsersPage(loads *loader.Loader[entity.User], checker *admission.Checker, store backend.DocumentStore, events chan<- tea.Msg, debounce *SearchDebouncer, styles Styles) *usersPage {
	si := textinput.New()
	si.Placeholder = "Search users..."
	si.CharLimit = 64
	si.Width = 30

	t := NewEntityTable("Users", []string{"Email", "Name", "Role"})
	t.EmptyMsg = "No users found"

	return &usersPage{
		loads:       loads,
		checker:     checker,
		store:       store,
		table:       t,
		adminIDs:    map[string]bool{},
		searchInput: si,
		debounce:    debounce,
		events:      events,
		styles:      styles,
	}
}

func (p *usersPage) reload() tea.Cmd {
	p.table.SetLoading()
	seq := p.loads.Issue()
	q := loader.Query{Search: p.searchInput.Value()}
	return tea.Batch(
		func() tea.Msg {
			snap, err := p.loads.Load(context.Background(), seq, q)
			return usersMsg{snap: snap, err: err}
		},
		p.loadAdminFlags(),
	)
}

// loadAdminFlags fetches the admin collection so the role column reflects
// current flags rather than sign-in-time state.
func (p *usersPage) loadAdminFlags() tea.Cmd {
	return func() tea.Msg {
		docs, err := p.store.Collection(backend.CollectionAdmin).Documents(context.Background())
		if err != nil {
			return adminFlagsMsg{err: err}
		}
		ids := make(map[string]bool, len(docs))
		for _, d := range docs {
			ids[d.ID] = true
		}
		return adminFlagsMsg{ids: ids}
	}
}

// toggleSelected flips the admin flag on the selected user, re-checking the
// actor's own admission inside the checker.
func (p *usersPage) toggleSelected(actorID string) tea.Cmd {
	if p.cursor < 0 || p.cursor >= len(p.users) {
		return nil
	}
	u := p.users[p.cursor]
	return func() tea.Msg {
		on, err := p.checker.Toggle(context.Background(), actorID, u.ID, u.Email)
		return adminToggledMsg{userID: u.ID, admin: on, err: err}
	}
}

func (p *usersPage) update(msg tea.Msg, actorID string) tea.Cmd {
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
				p.events <- searchTickMsg{page: loader.PageUsers, query: q}
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
			if p.cursor < len(p.users)-1 {
				p.cursor++
			}
		case "a":
			return p.toggleSelected(actorID)
		case "r":
			return p.reload()
		}

	case usersMsg:
		if msg.err != nil {
			if isStale(msg.err) {
				return nil
			}
			p.table.SetError(userFacing(msg.err))
			return nil
		}
		p.users = msg.snap.Entities
		if p.cursor >= len(p.users) {
			p.cursor = 0
		}
		p.rebuildRows(msg.snap.Total)

	case adminFlagsMsg:
		if msg.err == nil {
			p.adminIDs = msg.ids
			p.rebuildRows(len(p.users))
		}

	case adminToggledMsg:
		if msg.err != nil {
			p.notice = p.styles.Error.Render(backend.UserMessage(msg.err))
			return nil
		}
		if msg.admin {
			p.notice = p.styles.Success.Render("admin granted")
		} else {
			p.notice = p.styles.Warning.Render("admin revoked")
		}
		return p.loadAdminFlags()

	case searchTickMsg:
		if msg.page == loader.PageUsers {
			return p.reload()
		}
	}
	return nil
}

func (p *usersPage) rebuildRows(total int) {
	rows := make([][]string, 0, len(p.users))
	for _, u := range p.users {
		role := "user"
		if p.adminIDs[u.ID] {
			role = "admin"
		}
		rows = append(rows, []string{
			entity.OrFallback(u.Email),
			entity.OrFallback(u.DisplayName),
			role,
		})
	}
	p.table.SetRows(rows, total)
}

func (p *usersPage) view() string {
	var sb strings.Builder

	inputStyle := p.styles.Input
	if p.searchFocus {
		inputStyle = p.styles.Focused
	}
	sb.WriteString(inputStyle.Render(p.searchInput.View()))
	sb.WriteString("  " + p.styles.Muted.Render("[/] Search  [a] Toggle admin"))
	sb.WriteString("\n\n")
	sb.WriteString(p.table.View(p.styles))
	if p.notice != "" {
		sb.WriteString(p.notice + "\n")
	}
	return sb.String()
}
