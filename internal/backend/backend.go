// Package backend defines the interfaces through which shopadmin talks to
// its two external collaborators: the hosted document store and the hosted
// session authority. The rest of the application depends only on these
// interfaces; concrete implementations live in the localstore and localauth
// subpackages.
package backend

import (
	"context"
	"time"
)

// Collection names used by the dashboard. All durable state lives in the
// document store under these collections.
const (
	CollectionAdmin    = "admin"
	CollectionUsers    = "users"
	CollectionProducts = "product"
	CollectionOrders   = "order"
	CollectionItems    = "items"
)

// Session is the read-only projection of the authenticated identity. The
// application never constructs one; it is handed out by the SessionAuthority
// and observed through OnSessionChange.
type Session struct {
	UserID string
	Email  string
	Token  string
}

// SessionAuthority is the hosted identity provider. Sign-in and sign-up
// establish a current session; OnSessionChange fires with the new session
// on sign-in and with nil on sign-out.
type SessionAuthority interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error

	// Current returns the active session, or nil when signed out.
	Current() *Session

	// OnSessionChange registers a callback invoked on every session
	// transition. The returned function unregisters it.
	OnSessionChange(fn func(*Session)) (unsubscribe func())
}

// Document is a single record fetched from the store. Fields is the decoded
// body; the identifier is store-assigned on creation and immutable.
type Document struct {
	ID     string
	Fields map[string]any
}

// serverTimestamp is the sentinel type for ServerTimestamp.
type serverTimestamp struct{}

// ServerTimestamp is a write-time sentinel: any field set to this value is
// replaced by the store with its own clock at commit time. createdAt and
// updatedAt are always written this way so that ordering stays consistent
// despite client clock skew.
var ServerTimestamp = serverTimestamp{}

// Op is a query filter operator.
type Op string

const (
	OpEqual          Op = "=="
	OpNotEqual       Op = "!="
	OpLess           Op = "<"
	OpLessOrEqual    Op = "<="
	OpGreater        Op = ">"
	OpGreaterOrEqual Op = ">="
)

// Direction orders query results.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Query is a composable read over one collection. Builders return derived
// queries; the receiver is never mutated.
type Query interface {
	Where(field string, op Op, value any) Query
	OrderBy(field string, dir Direction) Query
	Limit(n int) Query

	// Documents executes the query. Fetch order is stable: repeated
	// executions over unchanged data return documents in the same order.
	Documents(ctx context.Context) ([]Document, error)

	// OnSnapshot registers a live subscription: fn is invoked with the
	// current result set immediately and again after every observed change.
	// The returned function cancels the subscription.
	OnSnapshot(ctx context.Context, fn func([]Document)) (cancel func(), err error)
}

// Collection is a named document collection.
type Collection interface {
	Query

	Name() string

	// Add creates a document with a store-assigned id and returns that id.
	Add(ctx context.Context, fields map[string]any) (string, error)

	Doc(id string) DocumentRef
}

// DocumentRef addresses a single document by id.
type DocumentRef interface {
	ID() string

	// Get fetches the document. A missing document yields ErrNotFound.
	Get(ctx context.Context) (Document, error)

	// Set creates or fully replaces the document.
	Set(ctx context.Context, fields map[string]any) error

	// Update merges the given fields into an existing document. A missing
	// document yields ErrNotFound.
	Update(ctx context.Context, fields map[string]any) error

	Delete(ctx context.Context) error
}

// DocumentStore is the hosted, eventually consistent document database.
type DocumentStore interface {
	Collection(name string) Collection

	// Ping measures round-trip latency to the store. Used by the footer
	// connectivity probe.
	Ping(ctx context.Context) (time.Duration, error)

	Close() error
}
