package callback

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Registry is an ordered, de-duplicated, mutex-guarded list of Fn[T].
// Dispatch takes a snapshot before invoking listeners so Add/Remove may run
// concurrently with an in-progress dispatch, and isolates each listener so
// one failing callback cannot abort the pump.
type Registry[T any] struct {
	mu        sync.Mutex
	listeners []Fn[T]
	log       *logrus.Entry
}

// NewRegistry constructs an empty registry. name tags log lines emitted
// when a listener panics.
func NewRegistry[T any](name string) *Registry[T] {
	return &Registry[T]{log: logrus.WithField("registry", name)}
}

// Add appends l unless an equal handle is already registered.
func (r *Registry[T]) Add(l Fn[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.listeners {
		if existing.Equal(l) {
			return
		}
	}
	r.listeners = append(r.listeners, l)
}

// Remove removes the first handle equal to l, if any. Reports whether a
// handle was removed.
func (r *Registry[T]) Remove(l Fn[T]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.listeners {
		if existing.Equal(l) {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll clears every registered listener.
func (r *Registry[T]) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = nil
}

// Len reports the number of registered listeners.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// snapshot copies the listener slice under lock, releasing it before
// Dispatch invokes any callback (the deadlock-avoidance "snapshot pattern").
func (r *Registry[T]) snapshot() []Fn[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Fn[T], len(r.listeners))
	copy(out, r.listeners)
	return out
}

// Dispatch invokes every registered listener with v, in registration order.
// A listener panic is recovered and logged; it never aborts the dispatch or
// propagates to the caller.
func (r *Registry[T]) Dispatch(v T) {
	for _, l := range r.snapshot() {
		r.invokeIsolated(l, v)
	}
}

func (r *Registry[T]) invokeIsolated(l Fn[T], v T) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithField("listener", l.String()).Errorf("listener panicked: %v", rec)
		}
	}()
	l.Invoke(v)
}
