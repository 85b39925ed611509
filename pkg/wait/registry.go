package wait

import (
	"sort"
	"sync"

	"github.com/arthur-debert/busy/pkg/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Event describes a change to one loader's active-count
type Event struct {
	// Name is the loader whose count changed
	Name string
	// Delta is +1 for a start and -1 for a stop
	Delta int
	// Count is the active-count for Name after the change (0 means removed)
	Count int
	// AnyLoading is the aggregate flag after the change
	AnyLoading bool
	// AnyChanged reports whether this change flipped AnyLoading
	AnyChanged bool
}

// Listener receives every effective Start/Stop as an Event
type Listener func(Event)

// AnyLoadingListener receives the aggregate flag each time it flips
type AnyLoadingListener func(bool)

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the logger used for transition logs
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

type subscriber struct {
	id int
	fn Listener
}

// Registry is a thread-safe counter of named loading operations
type Registry struct {
	mu     sync.Mutex
	counts map[string]int

	subs    []subscriber
	nextSub int

	// pending events are delivered by whichever caller set draining
	queue    []Event
	draining bool

	logger zerolog.Logger
}

// New creates an empty Registry
func New(opts ...Option) *Registry {
	r := &Registry{
		counts: make(map[string]int),
		logger: logging.GetLogger("wait"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start marks one more in-progress operation for name and returns the handle
// that undoes exactly that increment
func (r *Registry) Start(name string) *Handle {
	h := newHandle(r, name)

	r.mu.Lock()
	wasEmpty := len(r.counts) == 0
	r.counts[name]++
	count := r.counts[name]
	r.enqueue(Event{
		Name:       name,
		Delta:      1,
		Count:      count,
		AnyLoading: true,
		AnyChanged: wasEmpty,
	})
	r.drain()

	r.logger.Debug().
		Str("loader", name).
		Str("handle", h.id.String()).
		Int("count", count).
		Msg("Loader started")
	return h
}

// Stop removes one in-progress operation for name. Stopping a name that is
// not loading does nothing.
func (r *Registry) Stop(name string) {
	r.stop(name, uuid.Nil)
}

func (r *Registry) stop(name string, handleID uuid.UUID) {
	r.mu.Lock()
	count, ok := r.counts[name]
	if !ok {
		r.mu.Unlock()
		r.logger.Trace().
			Str("loader", name).
			Msg("Stop on idle loader ignored")
		return
	}

	count--
	if count == 0 {
		delete(r.counts, name)
	} else {
		r.counts[name] = count
	}
	busy := len(r.counts) > 0
	r.enqueue(Event{
		Name:       name,
		Delta:      -1,
		Count:      count,
		AnyLoading: busy,
		AnyChanged: !busy,
	})
	r.drain()

	ev := r.logger.Debug().
		Str("loader", name).
		Int("count", count)
	if handleID != uuid.Nil {
		ev = ev.Str("handle", handleID.String())
	}
	ev.Msg("Loader stopped")
}

// IsLoading reports whether name has at least one active operation
func (r *Registry) IsLoading(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.counts[name]
	return ok
}

// AnyLoading reports whether any loader is active
func (r *Registry) AnyLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.counts) > 0
}

// Count returns the active-count for name
func (r *Registry) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.counts[name]
}

// Names returns the active loader names in sorted order
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.counts))
	for name := range r.counts {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the active counts
func (r *Registry) Snapshot() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int, len(r.counts))
	for name, count := range r.counts {
		out[name] = count
	}
	return out
}

// Subscribe registers fn for every change. The returned func unsubscribes
// and is safe to call more than once.
func (r *Registry) Subscribe(fn Listener) (cancel func()) {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs = append(r.subs, subscriber{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, s := range r.subs {
				if s.id == id {
					r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
					break
				}
			}
		})
	}
}

// OnAnyLoading registers fn for changes of the aggregate flag only
func (r *Registry) OnAnyLoading(fn AnyLoadingListener) (cancel func()) {
	return r.Subscribe(func(e Event) {
		if e.AnyChanged {
			fn(e.AnyLoading)
		}
	})
}

// enqueue must be called with r.mu held
func (r *Registry) enqueue(e Event) {
	if len(r.subs) == 0 {
		return
	}
	r.queue = append(r.queue, e)
}

// drain must be called with r.mu held and releases it. Nothing is logged
// while r.mu is held. If another call is
// already delivering (a listener calling back into the registry, or another
// goroutine), the queued event is left for that caller.
func (r *Registry) drain() {
	if r.draining {
		r.mu.Unlock()
		return
	}
	r.draining = true

	done := false
	defer func() {
		if !done {
			// a listener panicked while r.mu was released
			r.mu.Lock()
			r.draining = false
			r.queue = nil
			r.mu.Unlock()
		}
	}()

	for len(r.queue) > 0 {
		e := r.queue[0]
		r.queue = r.queue[1:]
		subs := make([]subscriber, len(r.subs))
		copy(subs, r.subs)
		r.mu.Unlock()

		for _, s := range subs {
			s.fn(e)
		}

		r.mu.Lock()
	}

	r.queue = nil
	r.draining = false
	done = true
	r.mu.Unlock()
}
