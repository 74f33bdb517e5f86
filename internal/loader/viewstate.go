package loader

import "sync"

// Page identifies one of the dashboard's views.
type Page int

const (
	PageDashboard Page = iota
	PageOrders
	PageProducts
	PageUsers
)

func (p Page) String() string {
	switch p {
	case PageDashboard:
		return "dashboard"
	case PageOrders:
		return "orders"
	case PageProducts:
		return "products"
	case PageUsers:
		return "users"
	}
	return "unknown"
}

// ViewState is the shared view context: which page is active, whether a
// session is established, and which entity the detail modal is showing.
// The UI event loop is the only writer; loaders read it from their own
// goroutines, hence the lock.
type ViewState struct {
	mu       sync.Mutex
	active   Page
	authed   bool
	detailID string
}

func NewViewState() *ViewState {
	return &ViewState{active: PageDashboard}
}

// Activate makes p the active page. All other pages deactivate implicitly;
// exactly one page is active at a time.
func (v *ViewState) Activate(p Page) {
	v.mu.Lock()
	v.active = p
	v.mu.Unlock()
}

func (v *ViewState) ActivePage() Page {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

func (v *ViewState) IsActive(p Page) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.authed && v.active == p
}

func (v *ViewState) SetAuthenticated(on bool) {
	v.mu.Lock()
	v.authed = on
	if !on {
		v.detailID = ""
	}
	v.mu.Unlock()
}

func (v *ViewState) Authenticated() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.authed
}

// OpenDetail records the entity the detail modal is showing. Only one id is
// current at a time; opening replaces any previous one.
func (v *ViewState) OpenDetail(id string) {
	v.mu.Lock()
	v.detailID = id
	v.mu.Unlock()
}

func (v *ViewState) DetailID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detailID
}

func (v *ViewState) CloseDetail() {
	v.mu.Lock()
	v.detailID = ""
	v.mu.Unlock()
}
