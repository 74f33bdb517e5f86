package localauth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopadmin/internal/backend"
	"shopadmin/internal/backend/localstore"
)

func newTestAuthority(t *testing.T) *Authority {
	t.Helper()
	s, err := localstore.Open(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return New(s, []byte("test-secret"), time.Hour)
}

func TestSignUpThenSignIn(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()

	sess, err := a.SignUp(ctx, "admin@shop.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "admin@shop.com", sess.Email)
	assert.NotEmpty(t, sess.UserID)
	assert.NotEmpty(t, sess.Token)

	require.NoError(t, a.SignOut(ctx))
	require.Nil(t, a.Current())

	again, err := a.SignIn(ctx, "admin@shop.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, again.UserID)
	assert.Equal(t, again, a.Current())
}

func TestSignInNormalizesEmail(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "Admin@Shop.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, a.SignOut(ctx))

	sess, err := a.SignIn(ctx, "  admin@shop.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "admin@shop.com", sess.Email)
}

func TestSignInWrongPassword(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "admin@shop.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, a.SignOut(ctx))

	_, err = a.SignIn(ctx, "admin@shop.com", "wrong-password")
	assert.True(t, errors.Is(err, backend.ErrAuth))
	assert.Nil(t, a.Current())
}

func TestSignInUnknownAccount(t *testing.T) {
	a := newTestAuthority(t)
	_, err := a.SignIn(context.Background(), "nobody@shop.com", "hunter22")
	assert.True(t, errors.Is(err, backend.ErrAuth))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "admin@shop.com", "hunter22")
	require.NoError(t, err)

	_, err = a.SignUp(ctx, "admin@shop.com", "other-password")
	assert.True(t, errors.Is(err, backend.ErrAuth))
}

func TestValidation(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()

	_, err := a.SignUp(ctx, "", "hunter22")
	assert.True(t, errors.Is(err, backend.ErrValidation))

	_, err = a.SignUp(ctx, "not-an-email", "hunter22")
	assert.True(t, errors.Is(err, backend.ErrValidation))

	_, err = a.SignUp(ctx, "admin@shop.com", "abc")
	assert.True(t, errors.Is(err, backend.ErrValidation))
}

func TestOnSessionChange(t *testing.T) {
	a := newTestAuthority(t)
	ctx := context.Background()

	var seen []*backend.Session
	unsubscribe := a.OnSessionChange(func(s *backend.Session) {
		seen = append(seen, s)
	})

	sess, err := a.SignUp(ctx, "admin@shop.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, a.SignOut(ctx))

	require.Len(t, seen, 2)
	assert.Equal(t, sess, seen[0])
	assert.Nil(t, seen[1])

	unsubscribe()
	_, err = a.SignIn(ctx, "admin@shop.com", "hunter22")
	require.NoError(t, err)
	assert.Len(t, seen, 2, "unsubscribed listener must not fire")
}

func TestVerifyToken(t *testing.T) {
	a := newTestAuthority(t)
	sess, err := a.SignUp(context.Background(), "admin@shop.com", "hunter22")
	require.NoError(t, err)

	uid, err := a.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, uid)

	_, err = a.Verify("garbage.token.value")
	assert.True(t, errors.Is(err, backend.ErrAuth))

	other := New(nil, []byte("different-secret"), time.Hour)
	_, err = other.Verify(sess.Token)
	assert.True(t, errors.Is(err, backend.ErrAuth))
}
