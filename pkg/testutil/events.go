package testutil

import (
	"sync"

	"github.com/arthur-debert/busy/pkg/wait"
)

// EventRecorder collects every event a registry delivers
type EventRecorder struct {
	mu     sync.Mutex
	events []wait.Event
	cancel func()
}

// RecordEvents subscribes a new recorder to reg. Call Stop to unsubscribe.
func RecordEvents(reg *wait.Registry) *EventRecorder {
	rec := &EventRecorder{}
	rec.cancel = reg.Subscribe(func(e wait.Event) {
		rec.mu.Lock()
		rec.events = append(rec.events, e)
		rec.mu.Unlock()
	})
	return rec
}

// Events returns a copy of what was recorded so far
func (r *EventRecorder) Events() []wait.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]wait.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Starts returns the loader names of recorded starts, in order
func (r *EventRecorder) Starts() []string {
	var names []string
	for _, e := range r.Events() {
		if e.Delta > 0 {
			names = append(names, e.Name)
		}
	}
	return names
}

// MaxCount is the highest count observed for name
func (r *EventRecorder) MaxCount(name string) int {
	max := 0
	for _, e := range r.Events() {
		if e.Name == name && e.Count > max {
			max = e.Count
		}
	}
	return max
}

// Stop unsubscribes the recorder
func (r *EventRecorder) Stop() {
	r.cancel()
}
