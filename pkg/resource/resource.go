// Package resource binds external sources (subscriptions, files) to
// observables whose lifetime follows whether anything observes them.
package resource

import (
	"github.com/delaneyj/mobx-go/mobx"
)

// Resource is an observable fed by an external subscription. The
// subscription is opened when the first derivation starts observing it and
// closed when the last one stops.
type Resource[T any] struct {
	value *mobx.ObservableValue[T]

	subscribe   func(sink func(T))
	unsubscribe func()

	active   bool
	disposed bool
	// generation tells a sink from an earlier subscription apart from the
	// current one.
	generation int
}

// FromResource creates a resource. subscribe receives a sink to push new
// values through; it is called on the goroutine driving rs, and the sink
// must be called there too or inside rs.Do. unsubscribe is called when the
// resource stops being observed or is disposed.
func FromResource[T any](
	rs *mobx.ReactiveSystem,
	subscribe func(sink func(T)),
	unsubscribe func(),
	initial T,
	opts ...mobx.Option,
) *Resource[T] {
	r := &Resource[T]{
		subscribe:   subscribe,
		unsubscribe: unsubscribe,
	}
	opts = append(opts,
		mobx.OnBecomeObserved(r.start),
		mobx.OnBecomeUnobserved(r.stop),
	)
	r.value = mobx.Observable(rs, initial, opts...)
	return r
}

func (r *Resource[T]) start() {
	if r.active || r.disposed {
		return
	}
	r.active = true
	r.generation++
	gen := r.generation
	r.subscribe(func(v T) {
		if !r.active || r.generation != gen {
			return
		}
		r.value.SetValue(v)
	})
}

func (r *Resource[T]) stop() {
	if !r.active {
		return
	}
	r.active = false
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

// Current returns the latest value. Outside a derivation no subscription is
// opened, so the value is whatever was last pushed (or the initial one).
func (r *Resource[T]) Current() T {
	return r.value.Value()
}

// IsAlive reports whether the subscription is open.
func (r *Resource[T]) IsAlive() bool {
	return r.active
}

// Dispose closes the subscription for good; later observation does not
// reopen it.
func (r *Resource[T]) Dispose() {
	r.disposed = true
	r.stop()
}
