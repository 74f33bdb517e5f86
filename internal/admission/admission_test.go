package admission

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopadmin/internal/backend"
	"shopadmin/internal/backend/localstore"
)

func newTestChecker(t *testing.T) (*Checker, *localstore.Store) {
	t.Helper()
	s, err := localstore.Open(filepath.Join(t.TempDir(), "admission.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s), s
}

func TestIsAdminFailsClosed(t *testing.T) {
	c, s := newTestChecker(t)
	ctx := context.Background()

	assert.False(t, c.IsAdmin(ctx, ""), "empty user id is never admitted")
	assert.False(t, c.IsAdmin(ctx, "u1"), "missing flag means not admitted")

	require.NoError(t, s.Collection(backend.CollectionAdmin).Doc("u1").Set(ctx, map[string]any{"role": "admin"}))
	assert.True(t, c.IsAdmin(ctx, "u1"))
}

func TestGrantRequiresAdminActor(t *testing.T) {
	c, s := newTestChecker(t)
	ctx := context.Background()

	err := c.Grant(ctx, "stranger", "u2", "u2@shop.com")
	assert.True(t, errors.Is(err, backend.ErrPermission))
	assert.False(t, c.IsAdmin(ctx, "u2"))

	require.NoError(t, s.Collection(backend.CollectionAdmin).Doc("root").Set(ctx, map[string]any{"role": "admin"}))
	require.NoError(t, c.Grant(ctx, "root", "u2", "u2@shop.com"))
	assert.True(t, c.IsAdmin(ctx, "u2"))

	doc, err := s.Collection(backend.CollectionAdmin).Doc("u2").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", doc.Fields["role"])
	assert.NotEmpty(t, doc.Fields["createdAt"])
}

func TestRevocationEffectiveOnNextAction(t *testing.T) {
	c, s := newTestChecker(t)
	ctx := context.Background()

	require.NoError(t, s.Collection(backend.CollectionAdmin).Doc("root").Set(ctx, map[string]any{"role": "admin"}))
	require.NoError(t, c.Grant(ctx, "root", "u2", "u2@shop.com"))
	require.True(t, c.IsAdmin(ctx, "u2"))

	// Revocation happens out of band; u2's next privileged action fails.
	require.NoError(t, c.Revoke(ctx, "root", "u2"))
	assert.False(t, c.IsAdmin(ctx, "u2"))
	err := c.Grant(ctx, "u2", "u3", "u3@shop.com")
	assert.True(t, errors.Is(err, backend.ErrPermission))
}

func TestToggle(t *testing.T) {
	c, s := newTestChecker(t)
	ctx := context.Background()

	require.NoError(t, s.Collection(backend.CollectionAdmin).Doc("root").Set(ctx, map[string]any{"role": "admin"}))

	on, err := c.Toggle(ctx, "root", "u2", "u2@shop.com")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, c.IsAdmin(ctx, "u2"))

	on, err = c.Toggle(ctx, "root", "u2", "u2@shop.com")
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, c.IsAdmin(ctx, "u2"))
}

func TestEnsureUserRecord(t *testing.T) {
	c, s := newTestChecker(t)
	ctx := context.Background()
	sess := &backend.Session{UserID: "root", Email: "root@shop.com"}

	// Not admitted yet: the backfill must refuse to write.
	err := c.EnsureUserRecord(ctx, sess)
	assert.True(t, errors.Is(err, backend.ErrPermission))
	_, err = s.Collection(backend.CollectionUsers).Doc("root").Get(ctx)
	assert.True(t, errors.Is(err, backend.ErrNotFound))

	require.NoError(t, s.Collection(backend.CollectionAdmin).Doc("root").Set(ctx, map[string]any{"role": "admin"}))
	require.NoError(t, c.EnsureUserRecord(ctx, sess))

	doc, err := s.Collection(backend.CollectionUsers).Doc("root").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "root@shop.com", doc.Fields["email"])

	// Idempotent: a second call leaves the record alone.
	require.NoError(t, c.EnsureUserRecord(ctx, sess))
}
