// Package localstore implements backend.DocumentStore on SQLite. It is the
// reference store used for development and tests: documents are JSON bodies
// in a single table, server timestamps are resolved at write time, and
// snapshot listeners fire after every observed change, including changes
// made by other processes sharing the database file.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"shopadmin/internal/backend"
	"shopadmin/internal/logging"
)

// Store is a SQLite-backed document store.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string

	// now is the store clock used to resolve server timestamps.
	now func() time.Time

	subsMu  sync.Mutex
	subs    map[int]*subscription
	nextSub int

	watcher  *fsnotify.Watcher
	watchDeb *time.Timer
	closed   chan struct{}
}

// Open initializes the SQLite database at the given path.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "localstore.Open")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{
		db:     db,
		dbPath: path,
		now:    func() time.Time { return time.Now().UTC() },
		subs:   make(map[int]*subscription),
		closed: make(chan struct{}),
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.startWatcher(); err != nil {
		// Cross-process wakeups are best effort; in-process notifications
		// still work without the watcher.
		logging.Get(logging.CategoryStore).Warn("file watcher unavailable: %v", err)
	}

	logging.Store("localstore ready at %s", path)
	return s, nil
}

// initialize creates the documents table. The seq column preserves
// insertion order, which is the store's stable fetch order.
func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		doc_id     TEXT NOT NULL,
		body       TEXT NOT NULL,
		UNIQUE (collection, doc_id)
	);
	CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Collection returns a handle on the named collection.
func (s *Store) Collection(name string) backend.Collection {
	return &collection{store: s, query: query{store: s, name: name}}
}

// Ping measures a round trip to the database.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return 0, backend.Timeoutf(err, "ping")
	}
	var one int
	if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return 0, backend.Timeoutf(err, "ping")
	}
	return time.Since(start), nil
}

// Close stops the watcher, cancels subscriptions and closes the database.
func (s *Store) Close() error {
	close(s.closed)
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	s.subsMu.Lock()
	if s.watchDeb != nil {
		s.watchDeb.Stop()
	}
	for id, sub := range s.subs {
		sub.stop()
		delete(s.subs, id)
	}
	s.subsMu.Unlock()
	return s.db.Close()
}

// resolveTimestamps returns a copy of fields with every ServerTimestamp
// sentinel replaced by the store clock, recursing into nested maps.
func (s *Store) resolveTimestamps(fields map[string]any) map[string]any {
	stamp := s.now().Format(time.RFC3339Nano)
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case map[string]any:
			out[k] = s.resolveTimestamps(t)
		default:
			if v == backend.ServerTimestamp {
				out[k] = stamp
			} else {
				out[k] = v
			}
		}
	}
	return out
}

func (s *Store) readDoc(ctx context.Context, coll, id string) (backend.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND doc_id = ?", coll, id).Scan(&body)
	if err == sql.ErrNoRows {
		return backend.Document{}, fmt.Errorf("%s/%s: %w", coll, id, backend.ErrNotFound)
	}
	if err != nil {
		return backend.Document{}, backend.Timeoutf(err, "get %s/%s", coll, id)
	}
	return decodeDoc(id, body)
}

func decodeDoc(id, body string) (backend.Document, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return backend.Document{}, fmt.Errorf("corrupt document %s: %w", id, err)
	}
	return backend.Document{ID: id, Fields: fields}, nil
}

func (s *Store) writeDoc(ctx context.Context, coll, id string, fields map[string]any) error {
	body, err := json.Marshal(s.resolveTimestamps(fields))
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", coll, id, err)
	}

	s.mu.Lock()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, doc_id, body) VALUES (?, ?, ?)
		ON CONFLICT (collection, doc_id) DO UPDATE SET body = excluded.body`,
		coll, id, string(body))
	s.mu.Unlock()
	if err != nil {
		return backend.Timeoutf(err, "set %s/%s", coll, id)
	}
	s.broadcast()
	return nil
}

func (s *Store) mergeDoc(ctx context.Context, coll, id string, fields map[string]any) error {
	s.mu.Lock()
	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM documents WHERE collection = ? AND doc_id = ?", coll, id).Scan(&body)
	if err == sql.ErrNoRows {
		s.mu.Unlock()
		return fmt.Errorf("%s/%s: %w", coll, id, backend.ErrNotFound)
	}
	if err != nil {
		s.mu.Unlock()
		return backend.Timeoutf(err, "update %s/%s", coll, id)
	}

	merged := map[string]any{}
	if err := json.Unmarshal([]byte(body), &merged); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("corrupt document %s: %w", id, err)
	}
	for k, v := range s.resolveTimestamps(fields) {
		merged[k] = v
	}
	out, err := json.Marshal(merged)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encode %s/%s: %w", coll, id, err)
	}
	_, err = s.db.ExecContext(ctx,
		"UPDATE documents SET body = ? WHERE collection = ? AND doc_id = ?",
		string(out), coll, id)
	s.mu.Unlock()
	if err != nil {
		return backend.Timeoutf(err, "update %s/%s", coll, id)
	}
	s.broadcast()
	return nil
}

func (s *Store) deleteDoc(ctx context.Context, coll, id string) error {
	s.mu.Lock()
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND doc_id = ?", coll, id)
	s.mu.Unlock()
	if err != nil {
		return backend.Timeoutf(err, "delete %s/%s", coll, id)
	}
	s.broadcast()
	return nil
}

func (s *Store) addDoc(ctx context.Context, coll string, fields map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.writeDoc(ctx, coll, id, fields); err != nil {
		return "", err
	}
	return id, nil
}
