package watcher

import (
	"sync"
	"time"
)

// BatchDebouncer collects events and emits them as a batch once delay has
// passed since the last Add, coalescing a burst of filesystem events for
// the same file into one flush (spec §4.E, 500ms default).
type BatchDebouncer struct {
	delay  time.Duration
	timer  *time.Timer
	mu     sync.Mutex
	events []Event
	emit   func([]Event)
}

// NewBatchDebouncer creates a new batch debouncer.
func NewBatchDebouncer(delay time.Duration, emit func([]Event)) *BatchDebouncer {
	return &BatchDebouncer{
		delay:  delay,
		events: make([]Event, 0),
		emit:   emit,
	}
}

// Add adds an event to the batch, resetting the flush timer.
func (b *BatchDebouncer) Add(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = append(b.events, event)

	if b.timer != nil {
		b.timer.Stop()
	}

	b.timer = time.AfterFunc(b.delay, func() {
		b.flush()
	})
}

// flush emits collected events.
func (b *BatchDebouncer) flush() {
	b.mu.Lock()
	events := b.events
	b.events = make([]Event, 0)
	b.timer = nil
	b.mu.Unlock()

	if len(events) > 0 && b.emit != nil {
		b.emit(events)
	}
}

// Cancel drops any pending emission without flushing it.
func (b *BatchDebouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.events = make([]Event, 0)
}

// Flush immediately emits any pending events.
func (b *BatchDebouncer) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()

	b.flush()
}

// EventCount returns the number of pending events.
func (b *BatchDebouncer) EventCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
