package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last capacity events in memory. When it was created by
// New, Close writes the kept events to the configured output.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	head   int  // next write position
	full   bool // has wrapped around
	level  Level

	out    io.Writer
	format Format
}

// NewRingTracer creates a RingTracer; a non-positive capacity means 4096.
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

func (t *RingTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events[t.head] = *ev
	t.head = (t.head + 1) % len(t.events)
	if t.head == 0 {
		t.full = true
	}
}

// Snapshot returns the kept events in emission order.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]Event(nil), t.events[:t.head]...)
	}
	out := make([]Event, 0, len(t.events))
	out = append(out, t.events[t.head:]...)
	return append(out, t.events[:t.head]...)
}

// Dump writes the kept events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	events := t.Snapshot()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Level() Level { return t.level }

// Close dumps the kept events to the configured output, if any, and closes it.
func (t *RingTracer) Close() error {
	t.mu.Lock()
	out := t.out
	t.out = nil
	t.mu.Unlock()
	if out == nil {
		return nil
	}
	if err := t.Dump(out, t.format); err != nil {
		_ = closeOutput(out)
		return err
	}
	return closeOutput(out)
}
