package localstore

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"shopadmin/internal/backend"
)

// watchSettle absorbs bursts of file events from a single SQLite commit
// (main db, WAL and shm files all change) into one broadcast.
const watchSettle = 100 * time.Millisecond

// subscription is one live OnSnapshot registration. Deliveries are
// serialized per subscription so listeners observe result sets in order.
type subscription struct {
	q      query
	fn     func([]backend.Document)
	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	wg sync.WaitGroup
}

func (sub *subscription) stop() {
	sub.cancel()
	sub.wg.Wait()
}

// deliver executes the subscription's query and invokes the callback with
// the current result set. Errors drop the delivery; the next change will
// try again.
func (sub *subscription) deliver() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.ctx.Err() != nil {
		return
	}
	docs, err := sub.q.Documents(sub.ctx)
	if err != nil {
		return
	}
	sub.fn(docs)
}

// OnSnapshot registers a live subscription on the query. The callback runs
// once with the current result set, then after every observed change until
// cancel is called or ctx is done.
func (q query) OnSnapshot(ctx context.Context, fn func([]backend.Document)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{q: q, fn: fn, ctx: subCtx, cancel: cancel}

	s := q.store
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	s.subsMu.Unlock()

	// Initial delivery, synchronous, so callers render current state
	// before the first change arrives.
	sub.deliver()

	remove := func() {
		s.subsMu.Lock()
		if existing, ok := s.subs[id]; ok && existing == sub {
			delete(s.subs, id)
		}
		s.subsMu.Unlock()
		sub.stop()
	}
	return remove, nil
}

// broadcast re-delivers every subscription after a mutation. In-flight
// deliveries are counted under subsMu: once remove has taken a sub out of
// the map, no new delivery can be added behind its Wait.
func (s *Store) broadcast() {
	s.subsMu.Lock()
	subs := make([]*subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		sub.wg.Add(1)
		subs = append(subs, sub)
	}
	s.subsMu.Unlock()

	for _, sub := range subs {
		go func(sub *subscription) {
			defer sub.wg.Done()
			sub.deliver()
		}(sub)
	}
}

// startWatcher wires fsnotify to the database file so writes from another
// process sharing the file also wake subscriptions. Our own writes fire
// file events too; the extra delivery is harmless because listeners always
// receive the full current result set.
func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.dbPath)); err != nil {
		watcher.Close()
		return err
	}
	s.watcher = watcher

	base := filepath.Base(s.dbPath)
	go func() {
		for {
			select {
			case <-s.closed:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(ev.Name), base) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				s.subsMu.Lock()
				if s.watchDeb != nil {
					s.watchDeb.Stop()
				}
				s.watchDeb = time.AfterFunc(watchSettle, s.broadcast)
				s.subsMu.Unlock()
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}
