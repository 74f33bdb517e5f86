// Package admission decides whether a signed-in user may operate the
// dashboard. Admission is granted by the existence of a document keyed by the
// user's id in the admin collection; the check fails closed, so any lookup
// error reads as "not admitted".
package admission

import (
	"context"
	"errors"
	"fmt"

	"shopadmin/internal/backend"
	"shopadmin/internal/logging"
)

// Checker answers admission questions against the document store.
type Checker struct {
	store backend.DocumentStore
}

func New(store backend.DocumentStore) *Checker {
	return &Checker{store: store}
}

// IsAdmin reports whether the user is currently admitted. The check is
// evaluated against the store on every call so a revocation takes effect on
// the next privileged action, not at next sign-in. Errors fail closed.
func (c *Checker) IsAdmin(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	_, err := c.store.Collection(backend.CollectionAdmin).Doc(userID).Get(ctx)
	if err == nil {
		return true
	}
	if !errors.Is(err, backend.ErrNotFound) {
		logging.Sess("admission check for %s failed closed: %v", userID, err)
	}
	return false
}

// Grant admits the user. The actor's own admission is re-checked first;
// a non-admin actor gets ErrPermission.
func (c *Checker) Grant(ctx context.Context, actorID, userID, email string) error {
	if !c.IsAdmin(ctx, actorID) {
		return fmt.Errorf("grant admin to %s: %w", userID, backend.ErrPermission)
	}
	if userID == "" {
		return fmt.Errorf("user id is required: %w", backend.ErrValidation)
	}
	err := c.store.Collection(backend.CollectionAdmin).Doc(userID).Set(ctx, map[string]any{
		"role":      "admin",
		"email":     email,
		"createdAt": backend.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("grant admin to %s: %w", userID, err)
	}
	logging.Sess("admin granted to %s by %s", userID, actorID)
	return nil
}

// Revoke removes the user's admission. Revoking yourself is allowed; the
// caller is expected to treat its own revocation as a forced sign-out.
func (c *Checker) Revoke(ctx context.Context, actorID, userID string) error {
	if !c.IsAdmin(ctx, actorID) {
		return fmt.Errorf("revoke admin from %s: %w", userID, backend.ErrPermission)
	}
	err := c.store.Collection(backend.CollectionAdmin).Doc(userID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("revoke admin from %s: %w", userID, err)
	}
	logging.Sess("admin revoked from %s by %s", userID, actorID)
	return nil
}

// Toggle grants admission if the user lacks it and revokes it otherwise,
// returning the new state.
func (c *Checker) Toggle(ctx context.Context, actorID, userID, email string) (bool, error) {
	if !c.IsAdmin(ctx, actorID) {
		return false, fmt.Errorf("toggle admin for %s: %w", userID, backend.ErrPermission)
	}
	if c.IsAdmin(ctx, userID) {
		if err := c.Revoke(ctx, actorID, userID); err != nil {
			return true, err
		}
		return false, nil
	}
	if err := c.Grant(ctx, actorID, userID, email); err != nil {
		return false, err
	}
	return true, nil
}

// Bootstrap writes the admin flag unconditionally. Only the bootstrap CLI
// uses it; the interactive dashboard goes through Grant.
func (c *Checker) Bootstrap(ctx context.Context, userID, email string) error {
	if userID == "" {
		return fmt.Errorf("user id is required: %w", backend.ErrValidation)
	}
	err := c.store.Collection(backend.CollectionAdmin).Doc(userID).Set(ctx, map[string]any{
		"role":      "admin",
		"email":     email,
		"createdAt": backend.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin %s: %w", userID, err)
	}
	return nil
}

// EnsureUserRecord mirrors the session's account into the users collection
// if it is missing there. Guarded by a fresh admission check so a revoked
// session cannot write through it.
func (c *Checker) EnsureUserRecord(ctx context.Context, sess *backend.Session) error {
	if sess == nil {
		return nil
	}
	if !c.IsAdmin(ctx, sess.UserID) {
		return fmt.Errorf("ensure user record: %w", backend.ErrPermission)
	}
	users := c.store.Collection(backend.CollectionUsers)
	_, err := users.Doc(sess.UserID).Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, backend.ErrNotFound) {
		return fmt.Errorf("ensure user record: %w", err)
	}
	err = users.Doc(sess.UserID).Set(ctx, map[string]any{
		"email":     sess.Email,
		"createdAt": backend.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("ensure user record: %w", err)
	}
	logging.Sess("backfilled users record for %s", sess.UserID)
	return nil
}
