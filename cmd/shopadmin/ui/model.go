package ui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"shopadmin/internal/admission"
	"shopadmin/internal/backend"
	"shopadmin/internal/loader"
	"shopadmin/internal/logging"
)

// modalKind tracks which modal, if any, sits over the active page.
type modalKind int

const (
	modalNone modalKind = iota
	modalOrder
	modalProduct
)

// Options tune the UI from config.
type Options struct {
	Theme          string
	SearchDebounce time.Duration
	LoadTimeout    time.Duration
}

// Model is the root program: it routes between login, the four pages and
// the modals, and owns the session lifecycle.
type Model struct {
	store   backend.DocumentStore
	auth    backend.SessionAuthority
	checker *admission.Checker
	state   *loader.ViewState

	session  *backend.Session
	admitted bool

	login     *loginPage
	dashboard *dashboardPage
	orders    *ordersPage
	products  *productsPage
	users     *usersPage

	orderModal   *orderModal
	productModal *productModal
	modal        modalKind

	showHelp  bool
	helpCache string

	// events carries messages produced outside the update loop: session
	// callbacks and debounced search timers.
	events      chan tea.Msg
	unsubscribe func()

	width  int
	height int
	styles Styles
}

// NewModel wires the full dashboard.
func NewModel(store backend.DocumentStore, auth backend.SessionAuthority, checker *admission.Checker, opts Options) *Model {
	styles := NewStyles(ThemeFor(opts.Theme))
	state := loader.NewViewState()
	events := make(chan tea.Msg, 16)

	debounce := opts.SearchDebounce
	if debounce <= 0 {
		debounce = DefaultSearchDuration
	}

	ordersLoader := loader.ForOrders(store, state)
	productsLoader := loader.ForProducts(store, state)
	usersLoader := loader.ForUsers(store, state)
	summaryLoader := loader.NewSummary(store, state)
	if opts.LoadTimeout > 0 {
		ordersLoader.SetTimeout(opts.LoadTimeout)
		productsLoader.SetTimeout(opts.LoadTimeout)
		usersLoader.SetTimeout(opts.LoadTimeout)
		summaryLoader.SetTimeout(opts.LoadTimeout)
	}

	orderDetail := loader.OrderDetail(store, state)
	productDetail := loader.ProductDetail(store, state)

	m := &Model{
		store:        store,
		auth:         auth,
		checker:      checker,
		state:        state,
		login:        newLoginPage(auth, styles),
		dashboard:    newDashboardPage(summaryLoader, store, styles),
		orders:       newOrdersPage(ordersLoader, orderDetail, events, NewSearchDebouncer(debounce), styles),
		products:     newProductsPage(productsLoader, productDetail, events, NewSearchDebouncer(debounce), styles),
		users:        newUsersPage(usersLoader, checker, store, events, NewSearchDebouncer(debounce), styles),
		orderModal:   newOrderModal(orderDetail, styles),
		productModal: newProductModal(productDetail, styles),
		events:       events,
		styles:       styles,
	}

	// Session transitions arrive through the event channel so the update
	// loop stays the single writer of view state.
	m.unsubscribe = auth.OnSessionChange(func(sess *backend.Session) {
		m.events <- sessionMsg{sess: sess}
	})

	return m
}

// Init starts the event pump and focuses the login form.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.login.reset())
}

// waitForEvent relays one external event into the program.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

// checkAdmission runs the fail-closed admin check for a fresh session.
func (m *Model) checkAdmission(sess *backend.Session) tea.Cmd {
	checker := m.checker
	return func() tea.Msg {
		admitted := checker.IsAdmin(context.Background(), sess.UserID)
		return admissionMsg{sess: sess, admitted: admitted}
	}
}

// forceSignOut tears down a session that failed the admission check. The
// shell is never shown to it, not even transiently.
func (m *Model) forceSignOut(sess *backend.Session) tea.Cmd {
	auth := m.auth
	return func() tea.Msg {
		logging.Sess("session %s rejected by admission check, signing out", sess.Email)
		_ = auth.SignOut(context.Background())
		return forcedSignOutMsg{email: sess.Email}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.unsubscribe != nil {
				m.unsubscribe()
			}
			return m, tea.Quit
		}
		return m.updateKey(msg)

	case sessionMsg:
		return m.updateSession(msg)

	case admissionMsg:
		// The event pump was re-armed when the session event was consumed;
		// this message came from a command, so no re-arm here.
		if !msg.admitted {
			return m, m.forceSignOut(msg.sess)
		}
		m.session = msg.sess
		m.admitted = true
		m.state.SetAuthenticated(true)
		m.state.Activate(loader.PageDashboard)
		// Backfill is best effort; the page load does not wait for it.
		checker, sess := m.checker, msg.sess
		backfill := func() tea.Msg {
			if err := checker.EnsureUserRecord(context.Background(), sess); err != nil {
				logging.Sess("user record backfill skipped: %v", err)
			}
			return nil
		}
		return m, tea.Batch(m.dashboard.reload(), backfill)

	case forcedSignOutMsg:
		// The session callback already cleared the session; the login page
		// just needs the explanation.
		return m, m.login.update(msg)

	case searchTickMsg:
		var cmd tea.Cmd
		switch msg.page {
		case loader.PageOrders:
			cmd = m.orders.update(msg)
		case loader.PageProducts:
			cmd = m.products.update(msg)
		case loader.PageUsers:
			cmd = m.users.update(msg, m.actorID())
		}
		return m, tea.Batch(cmd, m.waitForEvent())

	case signInResultMsg:
		return m, m.login.update(msg)

	case ordersMsg:
		return m, m.orders.update(msg)
	case productsMsg:
		return m, m.products.update(msg)
	case usersMsg, adminFlagsMsg:
		return m, m.users.update(msg, m.actorID())
	case summaryMsg, pingMsg:
		return m, m.dashboard.update(msg)

	case adminToggledMsg:
		cmd := m.users.update(msg, m.actorID())
		// Revoking your own flag is a revocation like any other: the next
		// privileged action fails, and the session is torn down now.
		if msg.err == nil && !msg.admin && m.session != nil && msg.userID == m.session.UserID {
			return m, tea.Batch(cmd, m.forceSignOut(m.session))
		}
		return m, cmd

	case orderDetailMsg:
		cmd, _ := m.orderModal.update(msg)
		return m, cmd

	case statusUpdatedMsg:
		cmd, _ := m.orderModal.update(msg)
		if msg.err == nil {
			// The list behind the modal and the dashboard summary both
			// reflect the new status. The summary reload is rejected while
			// the dashboard is inactive; navigation reloads it again.
			return m, tea.Batch(cmd, m.orders.reload(), m.dashboard.reload())
		}
		return m, cmd

	case productDetailMsg:
		cmd, _, _ := m.productModal.update(msg)
		return m, cmd

	case productSavedMsg:
		cmd, closed, saved := m.productModal.update(msg)
		if closed {
			m.modal = modalNone
		}
		if saved {
			return m, tea.Batch(cmd, m.products.reload())
		}
		return m, cmd
	}

	return m, nil
}

// updateSession reacts to the authority's transitions.
func (m *Model) updateSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	if msg.sess == nil {
		// Signed out: clear everything rendered and return to login.
		m.session = nil
		m.admitted = false
		m.modal = modalNone
		m.showHelp = false
		m.state.SetAuthenticated(false)
		m.clearTables()
		return m, tea.Batch(m.login.reset(), m.waitForEvent())
	}
	// Signed in: nothing is revealed until the admission check passes.
	return m, tea.Batch(m.checkAdmission(msg.sess), m.waitForEvent())
}

// clearTables drops all rendered entity data.
func (m *Model) clearTables() {
	m.orders.table.SetRows(nil, 0)
	m.orders.orders = nil
	m.products.table.SetRows(nil, 0)
	m.products.products = nil
	m.users.table.SetRows(nil, 0)
	m.users.users = nil
	m.dashboard.loaded = false
	m.dashboard.recent.SetRows(nil, 0)
}

func (m *Model) actorID() string {
	if m.session == nil {
		return ""
	}
	return m.session.UserID
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.admitted {
		return m, m.login.update(msg)
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch m.modal {
	case modalOrder:
		cmd, closed := m.orderModal.update(msg)
		if closed {
			m.modal = modalNone
		}
		return m, cmd
	case modalProduct:
		cmd, closed, saved := m.productModal.update(msg)
		if closed {
			m.modal = modalNone
		}
		if saved {
			return m, tea.Batch(cmd, m.products.reload())
		}
		return m, cmd
	}

	switch msg.String() {
	case "?":
		if m.helpCache == "" {
			m.helpCache = renderHelp(m.styles)
		}
		m.showHelp = true
		return m, nil
	case "ctrl+l":
		auth := m.auth
		return m, func() tea.Msg {
			_ = auth.SignOut(context.Background())
			return nil
		}
	case "1":
		return m.activate(loader.PageDashboard)
	case "2":
		return m.activate(loader.PageOrders)
	case "3":
		return m.activate(loader.PageProducts)
	case "4":
		return m.activate(loader.PageUsers)
	}

	switch m.state.ActivePage() {
	case loader.PageDashboard:
		return m, m.dashboard.update(msg)
	case loader.PageOrders:
		wasSearching := m.orders.searchFocus
		cmd := m.orders.update(msg)
		if msg.String() == "enter" && cmd != nil && !wasSearching {
			m.modal = modalOrder
			m.orderModal.open()
		}
		return m, cmd
	case loader.PageProducts:
		if msg.String() == "n" && !m.products.searchFocus {
			m.modal = modalProduct
			return m, m.productModal.openNew()
		}
		wasSearching := m.products.searchFocus
		cmd := m.products.update(msg)
		if msg.String() == "enter" && cmd != nil && !wasSearching {
			m.modal = modalProduct
			m.productModal.openEdit()
		}
		return m, cmd
	case loader.PageUsers:
		return m, m.users.update(msg, m.actorID())
	}
	return m, nil
}

// activate switches pages: the target becomes the only active page and its
// loader runs once.
func (m *Model) activate(p loader.Page) (tea.Model, tea.Cmd) {
	if m.state.ActivePage() == p {
		return m, nil
	}
	m.state.Activate(p)
	logging.UI("page switched to %s", p)
	switch p {
	case loader.PageDashboard:
		return m, m.dashboard.reload()
	case loader.PageOrders:
		return m, m.orders.reload()
	case loader.PageProducts:
		return m, m.products.reload()
	case loader.PageUsers:
		return m, m.users.reload()
	}
	return m, nil
}

func (m *Model) View() string {
	if !m.admitted {
		return "\n" + m.login.view()
	}
	if m.showHelp {
		return m.helpCache + m.styles.Muted.Render("press any key to close")
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader() + "\n\n")

	if m.modal != modalNone {
		switch m.modal {
		case modalOrder:
			sb.WriteString(m.orderModal.view())
		case modalProduct:
			sb.WriteString(m.productModal.view())
		}
		sb.WriteString("\n")
		return sb.String()
	}

	switch m.state.ActivePage() {
	case loader.PageDashboard:
		sb.WriteString(m.dashboard.view())
	case loader.PageOrders:
		sb.WriteString(m.orders.view())
	case loader.PageProducts:
		sb.WriteString(m.products.view())
	case loader.PageUsers:
		sb.WriteString(m.users.view())
	}

	sb.WriteString("\n" + m.renderFooter())
	return sb.String()
}

func (m *Model) renderHeader() string {
	var tabs []string
	for _, p := range []loader.Page{loader.PageDashboard, loader.PageOrders, loader.PageProducts, loader.PageUsers} {
		label := p.String()
		if m.state.ActivePage() == p {
			tabs = append(tabs, m.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(label))
		}
	}
	title := m.styles.Header.Render(" Shop Admin ")
	email := ""
	if m.session != nil {
		email = m.styles.Muted.Render("  " + m.session.Email)
	}
	return title + "  " + strings.Join(tabs, "  ") + email
}

func (m *Model) renderFooter() string {
	return m.styles.Footer.Render("[1-4] Pages  [r] Reload  [?] Help  [ctrl+l] Sign out  [ctrl+c] Quit")
}
