package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopadmin/internal/backend"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	col := s.Collection("product")

	id, err := col.Add(ctx, map[string]any{"name": "Shirt", "price": 150000})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := col.Doc(id).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", doc.Fields["name"])
	// JSON round trip normalizes numbers to float64.
	assert.Equal(t, float64(150000), doc.Fields["price"])
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Collection("order").Doc("nope").Get(context.Background())
	assert.True(t, errors.Is(err, backend.ErrNotFound))
}

func TestUpdateMergesAndMissingFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	col := s.Collection("order")

	require.NoError(t, col.Doc("o1").Set(ctx, map[string]any{
		"orderStatus": "Pending",
		"userId":      "u1",
	}))
	require.NoError(t, col.Doc("o1").Update(ctx, map[string]any{"orderStatus": "Shipped"}))

	doc, err := col.Doc("o1").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Shipped", doc.Fields["orderStatus"])
	assert.Equal(t, "u1", doc.Fields["userId"], "update must not clobber unrelated fields")

	err = col.Doc("ghost").Update(ctx, map[string]any{"orderStatus": "Shipped"})
	assert.True(t, errors.Is(err, backend.ErrNotFound))
}

func TestServerTimestampResolved(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	ctx := context.Background()
	col := s.Collection("product")
	id, err := col.Add(ctx, map[string]any{
		"name":      "Hat",
		"createdAt": backend.ServerTimestamp,
		"updatedAt": backend.ServerTimestamp,
		"nested":    map[string]any{"stamp": backend.ServerTimestamp},
	})
	require.NoError(t, err)

	doc, err := col.Doc(id).Get(ctx)
	require.NoError(t, err)
	want := fixed.Format(time.RFC3339Nano)
	assert.Equal(t, want, doc.Fields["createdAt"])
	assert.Equal(t, want, doc.Fields["updatedAt"])
	nested, ok := doc.Fields["nested"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, want, nested["stamp"])
}

func TestDeleteRemovesDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	col := s.Collection("admin")

	require.NoError(t, col.Doc("u1").Set(ctx, map[string]any{"role": "admin"}))
	require.NoError(t, col.Doc("u1").Delete(ctx))

	_, err := col.Doc("u1").Get(ctx)
	assert.True(t, errors.Is(err, backend.ErrNotFound))
}

func TestQueryWhereOrderLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	col := s.Collection("order")

	for _, o := range []struct {
		id     string
		num    int
		status string
	}{
		{"a", 100, "Pending"},
		{"b", 102, "Shipped"},
		{"c", 101, "Pending"},
	} {
		require.NoError(t, col.Doc(o.id).Set(ctx, map[string]any{
			"orderId":     o.num,
			"orderStatus": o.status,
		}))
	}

	docs, err := col.Where("orderStatus", backend.OpEqual, "Pending").Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "c", docs[1].ID)

	docs, err = col.OrderBy("orderId", backend.Descending).Limit(2).Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[0].ID)
	assert.Equal(t, "c", docs[1].ID)
}

func TestFetchOrderIsStable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	col := s.Collection("users")

	ids := []string{"u3", "u1", "u2"}
	for _, id := range ids {
		require.NoError(t, col.Doc(id).Set(ctx, map[string]any{"email": id + "@x.com"}))
	}

	for range 3 {
		docs, err := col.Documents(ctx)
		require.NoError(t, err)
		require.Len(t, docs, 3)
		for i, id := range ids {
			assert.Equal(t, id, docs[i].ID)
		}
	}
}

func TestOnSnapshotDeliversInitialAndChanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	col := s.Collection("product")

	require.NoError(t, col.Doc("p1").Set(ctx, map[string]any{"name": "Shirt"}))

	results := make(chan int, 8)
	cancel, err := col.OnSnapshot(ctx, func(docs []backend.Document) {
		results <- len(docs)
	})
	require.NoError(t, err)
	defer cancel()

	// Initial delivery is synchronous.
	select {
	case n := <-results:
		assert.Equal(t, 1, n)
	default:
		t.Fatal("no initial snapshot delivery")
	}

	require.NoError(t, col.Doc("p2").Set(ctx, map[string]any{"name": "Hat"}))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case n := <-results:
			if n == 2 {
				return
			}
		case <-deadline:
			t.Fatal("snapshot listener never observed the second document")
		}
	}
}

func TestUnsubscribeRacesWithWrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	col := s.Collection("product")

	// Listeners come and go while writes broadcast: cancel must never
	// observe a delivery added behind its wait.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range 50 {
			_ = col.Doc("p").Set(ctx, map[string]any{"n": i})
		}
	}()
	go func() {
		defer wg.Done()
		for range 50 {
			cancel, err := col.OnSnapshot(ctx, func([]backend.Document) {})
			if err != nil {
				t.Error(err)
				return
			}
			cancel()
		}
	}()
	wg.Wait()
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	d, err := s.Ping(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d, time.Duration(0))
}
