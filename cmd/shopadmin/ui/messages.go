package ui

import (
	"time"

	"shopadmin/internal/backend"
	"shopadmin/internal/entity"
	"shopadmin/internal/loader"
)

// Messages flowing through the program. Async work (loads, writes, session
// callbacks, debounced searches) always comes back as one of these; Update
// is the only place state changes.

// sessionMsg arrives from the session authority's change callback.
type sessionMsg struct {
	sess *backend.Session
}

// admissionMsg is the result of the admin check that follows a sign-in.
type admissionMsg struct {
	sess     *backend.Session
	admitted bool
}

// signInResultMsg is the outcome of a sign-in or sign-up attempt.
type signInResultMsg struct {
	err error
}

// forcedSignOutMsg reports a session that was rejected by the admission
// check and has been torn down.
type forcedSignOutMsg struct {
	email string
}

type ordersMsg struct {
	snap loader.Snapshot[entity.Order]
	err  error
}

type productsMsg struct {
	snap loader.Snapshot[entity.Product]
	err  error
}

type usersMsg struct {
	snap loader.Snapshot[entity.User]
	err  error
}

type summaryMsg struct {
	sum loader.Summary
	err error
}

// adminFlagsMsg carries the set of user ids holding the admin flag, for the
// users page badge column.
type adminFlagsMsg struct {
	ids map[string]bool
	err error
}

type orderDetailMsg struct {
	order entity.Order
	err   error
}

type productDetailMsg struct {
	product entity.Product
	err     error
}

type statusUpdatedMsg struct {
	status string
	err    error
}

type productSavedMsg struct {
	id  string
	err error
}

type adminToggledMsg struct {
	userID string
	admin  bool
	err    error
}

// searchTickMsg fires when a debounced search query settles.
type searchTickMsg struct {
	page  loader.Page
	query string
}

type pingMsg struct {
	latency time.Duration
	err     error
}
