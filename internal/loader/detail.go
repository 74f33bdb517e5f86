package loader

import (
	"context"
	"fmt"

	"shopadmin/internal/backend"
	"shopadmin/internal/logging"
)

// Detail is the view controller behind an entity's modal. It owns the
// "current entity" notion: exactly one id is open at a time, tracked in the
// shared ViewState so a stray status update can never hit the wrong record.
type Detail[T any] struct {
	store      backend.DocumentStore
	state      *ViewState
	collection string
	decode     func(backend.Document) T
}

func NewDetail[T any](store backend.DocumentStore, state *ViewState, collection string, decode func(backend.Document) T) *Detail[T] {
	return &Detail[T]{store: store, state: state, collection: collection, decode: decode}
}

// Open marks id as the current entity and fetches it. A not-found error is
// returned to the caller, which renders it inside the still-open modal.
func (d *Detail[T]) Open(ctx context.Context, id string) (T, error) {
	d.state.OpenDetail(id)
	doc, err := d.store.Collection(d.collection).Doc(id).Get(ctx)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("open %s/%s: %w", d.collection, id, err)
	}
	return d.decode(doc), nil
}

// Close clears the current entity.
func (d *Detail[T]) Close() {
	d.state.CloseDetail()
}

// CurrentID returns the open entity's id, or "".
func (d *Detail[T]) CurrentID() string {
	return d.state.DetailID()
}

// Save writes fields. With an empty id it creates a new document stamped
// with createdAt and updatedAt; otherwise it partially updates the existing
// one and refreshes updatedAt. Returns the document id.
func (d *Detail[T]) Save(ctx context.Context, id string, fields map[string]any) (string, error) {
	stamped := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		stamped[k] = v
	}
	stamped["updatedAt"] = backend.ServerTimestamp

	col := d.store.Collection(d.collection)
	if id == "" {
		stamped["createdAt"] = backend.ServerTimestamp
		newID, err := col.Add(ctx, stamped)
		if err != nil {
			return "", fmt.Errorf("create %s: %w", d.collection, err)
		}
		logging.Loader("created %s/%s", d.collection, newID)
		return newID, nil
	}
	if err := col.Doc(id).Update(ctx, stamped); err != nil {
		return "", fmt.Errorf("save %s/%s: %w", d.collection, id, err)
	}
	logging.Loader("saved %s/%s", d.collection, id)
	return id, nil
}

// UpdateStatus sets the given field on the current entity. With no entity
// open it logs the condition and does nothing; no write occurs and no error
// escapes.
func (d *Detail[T]) UpdateStatus(ctx context.Context, field, status string) error {
	id := d.state.DetailID()
	if id == "" {
		logging.Get(logging.CategoryLoader).Error("status update to %q with no %s open", status, d.collection)
		return nil
	}
	err := d.store.Collection(d.collection).Doc(id).Update(ctx, map[string]any{
		field:       status,
		"updatedAt": backend.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("update status %s/%s: %w", d.collection, id, err)
	}
	logging.Loader("status of %s/%s set to %s", d.collection, id, status)
	return nil
}
