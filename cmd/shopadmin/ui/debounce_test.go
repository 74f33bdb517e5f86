package ui

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerSingleCall(t *testing.T) {
	var called int32
	debouncer := NewDebouncer(50 * time.Millisecond)

	debouncer.Debounce(func() {
		atomic.AddInt32(&called, 1)
	})

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&called) != 1 {
		t.Errorf("Expected 1 call, got %d", called)
	}
}

func TestDebouncerRapidCalls(t *testing.T) {
	var called int32
	debouncer := NewDebouncer(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		debouncer.Debounce(func() {
			atomic.AddInt32(&called, 1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&called) != 1 {
		t.Errorf("Rapid calls should coalesce into 1, got %d", called)
	}
}

func TestDebouncerCancel(t *testing.T) {
	var called int32
	debouncer := NewDebouncer(50 * time.Millisecond)

	debouncer.Debounce(func() {
		atomic.AddInt32(&called, 1)
	})
	debouncer.Cancel()

	time.Sleep(100 * time.Millisecond)

	if atomic.LoadInt32(&called) != 0 {
		t.Errorf("Cancelled call should not fire, got %d", called)
	}
}

func TestSearchDebouncerDeliversNewestQuery(t *testing.T) {
	var mu chan string = make(chan string, 1)
	sd := NewSearchDebouncer(50 * time.Millisecond)

	// Simulated keystrokes: only the final text should reach the handler.
	for _, q := range []string{"s", "sh", "shi", "shirt"} {
		sd.Search(q, func(got string) {
			mu <- got
		})
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case got := <-mu:
		if got != "shirt" {
			t.Errorf("Expected final query %q, got %q", "shirt", got)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("Handler never fired")
	}

	if sd.LastQuery() != "shirt" {
		t.Errorf("LastQuery = %q, want %q", sd.LastQuery(), "shirt")
	}
}
