// Package loader implements the dashboard's view-refresh layer: per-entity
// list loaders with staleness rejection, the detail view controller, and the
// concurrent dashboard summary.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"shopadmin/internal/backend"
	"shopadmin/internal/logging"
)

// DefaultTimeout bounds every list read. A read that exceeds it surfaces as
// backend.ErrTimeout, distinct from a generic failure.
const DefaultTimeout = 30 * time.Second

// ErrInactive reports that a load was skipped because the loader's page is
// not the active one.
var ErrInactive = errors.New("page not active")

// ErrSuperseded reports that a newer load was issued while this one was in
// flight. The caller must discard the result.
var ErrSuperseded = errors.New("load superseded")

// Query is one load request.
type Query struct {
	// Search is a free-text filter, matched case-insensitively against the
	// entity's searchable fields.
	Search string
	// Status, when set, is pushed to the store as an equality filter on the
	// loader's status field.
	Status string
}

// Snapshot is the complete result of one load. Rendering replaces whatever
// was shown before; snapshots are never merged.
type Snapshot[T any] struct {
	// Seq is the sequence number of the load that produced this snapshot.
	Seq uint64
	// Query is the request the snapshot answers.
	Query Query
	// Entities is the filtered, sorted result set.
	Entities []T
	// Total counts documents before the free-text filter, so an empty
	// Entities distinguishes "collection is empty" (Total == 0) from "no
	// matches" (Total > 0).
	Total int
}

// Config describes how a Loader treats its entity type.
type Config[T any] struct {
	// Collection is the store collection to read.
	Collection string
	// Page is the view this loader feeds; loads are skipped while it is
	// inactive.
	Page Page
	// StatusField, when non-empty, enables server-side status filtering.
	StatusField string
	// Decode converts a raw document into the entity.
	Decode func(backend.Document) T
	// Match reports whether the entity matches a lowered search term.
	Match func(T, string) bool
	// SortKey extracts the numeric sort key. Entities missing the key keep
	// their fetch order.
	SortKey func(T) (int64, bool)
}

// Loader loads one entity collection into view snapshots.
type Loader[T any] struct {
	store   backend.DocumentStore
	state   *ViewState
	cfg     Config[T]
	timeout time.Duration

	seq atomic.Uint64
}

// New creates a loader over the given store and view state.
func New[T any](store backend.DocumentStore, state *ViewState, cfg Config[T]) *Loader[T] {
	return &Loader[T]{store: store, state: state, cfg: cfg, timeout: DefaultTimeout}
}

// SetTimeout overrides the per-load deadline. Used by tests and config.
func (l *Loader[T]) SetTimeout(d time.Duration) { l.timeout = d }

// Issue reserves the next sequence number. The UI calls it synchronously
// when it kicks off a load so it can render the loading placeholder tagged
// with the sequence the eventual snapshot must carry.
func (l *Loader[T]) Issue() uint64 {
	return l.seq.Add(1)
}

// IsCurrent reports whether seq is still the newest issued load.
func (l *Loader[T]) IsCurrent(seq uint64) bool {
	return l.seq.Load() == seq
}

// Load fetches, filters and sorts the collection for q under the sequence
// number seq (from Issue). If a newer load was issued while this one ran,
// the result is discarded and ErrSuperseded returned; stale results must
// never overwrite fresh ones regardless of arrival order.
func (l *Loader[T]) Load(ctx context.Context, seq uint64, q Query) (Snapshot[T], error) {
	if !l.state.IsActive(l.cfg.Page) {
		return Snapshot[T]{}, fmt.Errorf("%s: %w", l.cfg.Page, ErrInactive)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	query := backend.Query(l.store.Collection(l.cfg.Collection))
	if q.Status != "" && l.cfg.StatusField != "" {
		query = query.Where(l.cfg.StatusField, backend.OpEqual, q.Status)
	}
	docs, err := query.Documents(ctx)
	if err != nil {
		if !l.IsCurrent(seq) {
			return Snapshot[T]{}, fmt.Errorf("%s load %d: %w", l.cfg.Page, seq, ErrSuperseded)
		}
		return Snapshot[T]{}, backend.Timeoutf(err, "load %s", l.cfg.Collection)
	}

	entities := make([]T, 0, len(docs))
	for _, d := range docs {
		entities = append(entities, l.cfg.Decode(d))
	}
	total := len(entities)

	if lowered := strings.ToLower(strings.TrimSpace(q.Search)); lowered != "" {
		kept := entities[:0]
		for _, e := range entities {
			if l.cfg.Match(e, lowered) {
				kept = append(kept, e)
			}
		}
		entities = kept
	}

	if l.cfg.SortKey != nil {
		// Descending by key; pairs where either side lacks the key keep
		// their relative fetch order, so the sort must be stable.
		sort.SliceStable(entities, func(i, j int) bool {
			a, aok := l.cfg.SortKey(entities[i])
			b, bok := l.cfg.SortKey(entities[j])
			if !aok || !bok {
				return false
			}
			return a > b
		})
	}

	if !l.IsCurrent(seq) {
		logging.LoaderDebug("%s load %d superseded by %d", l.cfg.Page, seq, l.seq.Load())
		return Snapshot[T]{}, fmt.Errorf("%s load %d: %w", l.cfg.Page, seq, ErrSuperseded)
	}
	logging.Loader("%s load %d applied: %d/%d entities", l.cfg.Page, seq, len(entities), total)
	return Snapshot[T]{Seq: seq, Query: q, Entities: entities, Total: total}, nil
}
