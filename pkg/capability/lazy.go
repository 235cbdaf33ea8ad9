package capability

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Lazy is a process-wide handle for a capability adapter that is expensive to
// initialise (model load, API handshake) and therefore constructed on first
// use rather than at startup.
//
// Initialisation is single-flight: when several sessions hit an uninitialised
// handle concurrently, exactly one invocation of the init function runs and
// every caller receives its result. A failed initialisation is not cached —
// the next Get attempts it again, so a transient startup failure does not
// permanently poison the handle.
//
// Lazy is safe for concurrent use.
type Lazy[T any] struct {
	name string
	init func(ctx context.Context) (T, error)

	group singleflight.Group

	mu    sync.RWMutex
	value T
	ready bool
}

// NewLazy returns a Lazy handle that will build its value with init on first
// Get. name is used in error messages and as the single-flight key.
func NewLazy[T any](name string, init func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{name: name, init: init}
}

// Get returns the initialised value, running the init function if no value
// exists yet. Concurrent first-use callers share a single in-flight
// initialisation.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	l.mu.RLock()
	if l.ready {
		v := l.value
		l.mu.RUnlock()
		return v, nil
	}
	l.mu.RUnlock()

	v, err, _ := l.group.Do(l.name, func() (any, error) {
		// Re-check under the write path: another flight may have completed
		// between the RUnlock above and this closure running.
		l.mu.RLock()
		if l.ready {
			v := l.value
			l.mu.RUnlock()
			return v, nil
		}
		l.mu.RUnlock()

		value, err := l.init(ctx)
		if err != nil {
			return nil, fmt.Errorf("capability %s: init: %w", l.name, err)
		}

		l.mu.Lock()
		l.value = value
		l.ready = true
		l.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Ready reports whether the handle has been successfully initialised.
func (l *Lazy[T]) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ready
}

// Resolved wraps an already-constructed value in a Lazy handle. Useful in
// tests and for adapters that are cheap to build eagerly.
func Resolved[T any](name string, value T) *Lazy[T] {
	return &Lazy[T]{
		name:  name,
		value: value,
		ready: true,
	}
}
