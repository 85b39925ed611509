package wait

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle is the one-shot release capability returned by Registry.Start.
// It is owned by the caller that received it; the registry keeps no
// reference to it.
type Handle struct {
	id       uuid.UUID
	name     string
	reg      *Registry
	released atomic.Bool
}

func newHandle(r *Registry, name string) *Handle {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Handle{id: id, name: name, reg: r}
}

// Name returns the loader name the handle was started for
func (h *Handle) Name() string {
	return h.name
}

// ID returns the unique id of this handle, used to correlate log lines
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Released reports whether Release has already been called
func (h *Handle) Released() bool {
	return h.released.Load()
}

// Release undoes the increment made by Start. Only the first call has an
// effect and returns true; later calls return false. If the name was already
// stopped directly through Registry.Stop, the decrement is clamped at zero.
func (h *Handle) Release() bool {
	if h == nil || !h.released.CompareAndSwap(false, true) {
		return false
	}
	h.reg.stop(h.name, h.id)
	return true
}

// Track marks name as loading for the duration of fn
func (r *Registry) Track(name string, fn func() error) error {
	h := r.Start(name)
	defer h.Release()

	return fn()
}

// TrackContext is Track with early release: the loader is released as soon
// as ctx is done, even if fn has not returned yet.
func (r *Registry) TrackContext(ctx context.Context, name string, fn func(context.Context) error) error {
	h := r.Start(name)
	defer h.Release()

	stop := context.AfterFunc(ctx, func() { h.Release() })
	defer stop()

	return fn(ctx)
}
