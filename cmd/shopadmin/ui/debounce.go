package ui

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid events like search keystrokes
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

// NewDebouncer creates a new debouncer with the specified duration
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
	}
}

// Debounce executes the function after the debounce duration has elapsed
// without any new calls. Rapid successive calls reset the timer.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel cancels any pending debounced function call
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// SearchDebouncer holds the latest search text while keystrokes settle, so
// only the final query triggers a reload.
type SearchDebouncer struct {
	debouncer *Debouncer
	mu        sync.Mutex
	pending   string
	last      string
}

// NewSearchDebouncer creates a debouncer tuned for search-as-you-type
func NewSearchDebouncer(duration time.Duration) *SearchDebouncer {
	return &SearchDebouncer{
		debouncer: NewDebouncer(duration),
	}
}

// Search debounces a query change, calling the handler with the newest text
// once typing pauses.
func (sd *SearchDebouncer) Search(text string, handler func(string)) {
	sd.mu.Lock()
	sd.pending = text
	sd.mu.Unlock()

	sd.debouncer.Debounce(func() {
		sd.mu.Lock()
		q := sd.pending
		sd.last = q
		sd.mu.Unlock()

		handler(q)
	})
}

// LastQuery returns the last query that was handed to a handler
func (sd *SearchDebouncer) LastQuery() string {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	return sd.last
}

// Cancel cancels any pending search
func (sd *SearchDebouncer) Cancel() {
	sd.debouncer.Cancel()
}

// DefaultSearchDuration is the recommended debounce duration for search input
const DefaultSearchDuration = 250 * time.Millisecond
