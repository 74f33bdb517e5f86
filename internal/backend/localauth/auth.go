// Package localauth implements backend.SessionAuthority on top of the
// document store: account records with bcrypt password hashes, HS256 session
// tokens, and session-change callbacks.
package localauth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shopadmin/internal/backend"
	"shopadmin/internal/logging"
)

// collectionAccounts holds the authority's own records. It is private to
// the authority; the dashboard's "users" collection is a separate concern.
const collectionAccounts = "accounts"

const minPasswordLen = 6

// Authority is a local session authority.
type Authority struct {
	store  backend.DocumentStore
	secret []byte
	ttl    time.Duration

	mu        sync.Mutex
	current   *backend.Session
	listeners map[int]func(*backend.Session)
	nextID    int
}

// New creates an Authority backed by the given store.
func New(store backend.DocumentStore, secret []byte, ttl time.Duration) *Authority {
	return &Authority{
		store:     store,
		secret:    secret,
		ttl:       ttl,
		listeners: make(map[int]func(*backend.Session)),
	}
}

// SignUp registers a new account and signs it in.
func (a *Authority) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	col := a.store.Collection(collectionAccounts)
	existing, err := col.Where("email", backend.OpEqual, email).Limit(1).Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("account already exists for %s: %w", email, backend.ErrAuth)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	userID, err := col.Add(ctx, map[string]any{
		"email":        email,
		"passwordHash": string(hash),
		"createdAt":    backend.ServerTimestamp,
	})
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	logging.Sess("account created for %s", email)
	return a.establish(userID, email)
}

// SignIn verifies credentials and establishes a session.
func (a *Authority) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	col := a.store.Collection(collectionAccounts)
	docs, err := col.Where("email", backend.OpEqual, email).Limit(1).Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no account for %s: %w", email, backend.ErrAuth)
	}
	hash, _ := docs[0].Fields["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, fmt.Errorf("wrong password: %w", backend.ErrAuth)
	}

	logging.Sess("sign-in for %s", email)
	return a.establish(docs[0].ID, email)
}

// SignOut destroys the current session. Signing out while signed out is a
// no-op.
func (a *Authority) SignOut(ctx context.Context) error {
	a.mu.Lock()
	was := a.current
	a.current = nil
	fns := a.snapshotListeners()
	a.mu.Unlock()

	if was != nil {
		logging.Sess("sign-out for %s", was.Email)
	}
	for _, fn := range fns {
		fn(nil)
	}
	return nil
}

// Current returns the active session, or nil.
func (a *Authority) Current() *backend.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// OnSessionChange registers a callback for session transitions.
func (a *Authority) OnSessionChange(fn func(*backend.Session)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// Verify parses a session token and returns the user id it carries.
func (a *Authority) Verify(token string) (string, error) {
	userID, err := parseToken(token, a.secret)
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", errors.Join(err, backend.ErrAuth))
	}
	return userID, nil
}

func (a *Authority) establish(userID, email string) (*backend.Session, error) {
	token, err := generateToken(userID, a.secret, a.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	sess := &backend.Session{UserID: userID, Email: email, Token: token}

	a.mu.Lock()
	a.current = sess
	fns := a.snapshotListeners()
	a.mu.Unlock()

	for _, fn := range fns {
		fn(sess)
	}
	return sess, nil
}

// snapshotListeners must be called with the mutex held.
func (a *Authority) snapshotListeners() []func(*backend.Session) {
	fns := make([]func(*backend.Session), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	return fns
}

func validateCredentials(email, password string) error {
	if email == "" {
		return fmt.Errorf("email is required: %w", backend.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email address: %w", backend.ErrValidation)
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, backend.ErrValidation)
	}
	return nil
}
