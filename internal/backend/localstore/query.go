package localstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"shopadmin/internal/backend"
)

// filter is one Where clause.
type filter struct {
	field string
	op    backend.Op
	value any
}

type ordering struct {
	field string
	dir   backend.Direction
}

// query is an immutable view over one collection. Builder methods copy.
type query struct {
	store   *Store
	name    string
	filters []filter
	orderBy *ordering
	limit   int
}

func (q query) Where(field string, op backend.Op, value any) backend.Query {
	nq := q
	nq.filters = append(append([]filter(nil), q.filters...), filter{field, op, value})
	return nq
}

func (q query) OrderBy(field string, dir backend.Direction) backend.Query {
	nq := q
	nq.orderBy = &ordering{field, dir}
	return nq
}

func (q query) Limit(n int) backend.Query {
	nq := q
	nq.limit = n
	return nq
}

// Documents executes the query. Rows come back in seq order, so repeated
// executions over unchanged data keep a stable order; filters and ordering
// are evaluated over the decoded bodies.
func (q query) Documents(ctx context.Context) ([]backend.Document, error) {
	q.store.mu.RLock()
	rows, err := q.store.db.QueryContext(ctx,
		"SELECT doc_id, body FROM documents WHERE collection = ? ORDER BY seq", q.name)
	if err != nil {
		q.store.mu.RUnlock()
		return nil, backend.Timeoutf(err, "query %s", q.name)
	}

	var docs []backend.Document
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			rows.Close()
			q.store.mu.RUnlock()
			return nil, fmt.Errorf("scan %s: %w", q.name, err)
		}
		doc, err := decodeDoc(id, body)
		if err != nil {
			rows.Close()
			q.store.mu.RUnlock()
			return nil, err
		}
		docs = append(docs, doc)
	}
	err = rows.Err()
	rows.Close()
	q.store.mu.RUnlock()
	if err != nil {
		return nil, backend.Timeoutf(err, "query %s", q.name)
	}

	docs = q.apply(docs)
	return docs, nil
}

// apply evaluates filters, ordering and limit in memory.
func (q query) apply(docs []backend.Document) []backend.Document {
	if len(q.filters) > 0 {
		kept := docs[:0]
		for _, d := range docs {
			if q.matches(d) {
				kept = append(kept, d)
			}
		}
		docs = kept
	}
	if q.orderBy != nil {
		field, dir := q.orderBy.field, q.orderBy.dir
		sort.SliceStable(docs, func(i, j int) bool {
			c := compareValues(docs[i].Fields[field], docs[j].Fields[field])
			if dir == backend.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if q.limit > 0 && len(docs) > q.limit {
		docs = docs[:q.limit]
	}
	return docs
}

func (q query) matches(doc backend.Document) bool {
	for _, f := range q.filters {
		v, ok := doc.Fields[f.field]
		if !ok {
			return false
		}
		c := compareValues(v, f.value)
		switch f.op {
		case backend.OpEqual:
			if c != 0 {
				return false
			}
		case backend.OpNotEqual:
			if c == 0 {
				return false
			}
		case backend.OpLess:
			if c >= 0 {
				return false
			}
		case backend.OpLessOrEqual:
			if c > 0 {
				return false
			}
		case backend.OpGreater:
			if c <= 0 {
				return false
			}
		case backend.OpGreaterOrEqual:
			if c < 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders two document values. Numbers compare numerically
// (JSON decoding produces float64; writes may carry int), strings compare
// lexically, booleans false<true. Mismatched types compare by type name so
// the ordering stays total.
func compareValues(a, b any) int {
	af, aNum := toFloat(a)
	bf, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, aStr := a.(string)
	bs, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(as, bs)
	}
	ab, aBool := a.(bool)
	bb, bBool := b.(bool)
	if aBool && bBool {
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	}
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// collection adds the mutation surface to a query rooted at one collection.
type collection struct {
	store *Store
	query
}

func (c *collection) Name() string { return c.name }

func (c *collection) Add(ctx context.Context, fields map[string]any) (string, error) {
	return c.store.addDoc(ctx, c.name, fields)
}

func (c *collection) Doc(id string) backend.DocumentRef {
	return &docRef{store: c.store, coll: c.name, id: id}
}

type docRef struct {
	store *Store
	coll  string
	id    string
}

func (r *docRef) ID() string { return r.id }

func (r *docRef) Get(ctx context.Context) (backend.Document, error) {
	return r.store.readDoc(ctx, r.coll, r.id)
}

func (r *docRef) Set(ctx context.Context, fields map[string]any) error {
	return r.store.writeDoc(ctx, r.coll, r.id, fields)
}

func (r *docRef) Update(ctx context.Context, fields map[string]any) error {
	return r.store.mergeDoc(ctx, r.coll, r.id, fields)
}

func (r *docRef) Delete(ctx context.Context) error {
	return r.store.deleteDoc(ctx, r.coll, r.id)
}
