package mobx

import "fmt"

// Disposer stops a reaction and unsubscribes it from everything it tracked.
// Calling it more than once is harmless.
type Disposer func()

// reaction is a derivation run for its side effect. Autorun, Reaction and
// When differ only in kind and in what onInvalidate does.
type reaction struct {
	derivationBase

	rs   *ReactiveSystem
	nid  nodeID
	name string
	kind Kind

	scheduled bool
	disposed  bool

	onInvalidate func() error
}

func (rs *ReactiveSystem) newReaction(kind Kind, o *options) *reaction {
	id := rs.newID()
	name := o.name
	if name == "" {
		name = fmt.Sprintf("%s@%d", kind, id)
	}
	r := &reaction{
		derivationBase: derivationBase{active: true, state: notTracking},
		rs:             rs,
		nid:            id,
		name:           name,
		kind:           kind,
	}
	rs.derivations[id] = r
	return r
}

func (r *reaction) nodeID() nodeID { return r.nid }

func (r *reaction) onBecomeStale() {
	r.rs.schedule(r)
}

// start runs the reaction for the first time, synchronously, so its error
// can be returned to the caller of the entry point. A panic disposes the
// reaction before it propagates, since the caller never gets a Disposer.
func (r *reaction) start() error {
	r.rs.StartBatch()
	defer r.rs.EndBatch()
	r.report()

	defer func() {
		if p := recover(); p != nil {
			r.dispose()
			panic(p)
		}
	}()
	return r.onInvalidate()
}

func (r *reaction) runReaction() {
	r.scheduled = false
	if r.disposed {
		return
	}

	r.rs.StartBatch()
	defer r.rs.EndBatch()
	if !r.rs.shouldCompute(r) {
		return
	}
	r.report()
	if err := r.onInvalidate(); err != nil {
		r.rs.reportError(r.name, err)
	}
}

func (r *reaction) report() {
	if r.rs.spying() {
		r.rs.spyReport(SpyEvent{Type: SpyReaction, Kind: r.kind, Name: r.name})
	}
}

// track runs fn as the reaction's tracked body.
func (r *reaction) track(fn func() error) error {
	return r.rs.trackDerivedFunction(r, fn)
}

func (r *reaction) dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.active = false
	delete(r.rs.derivations, r.nid)
	r.rs.clearObserving(r)
}

// Autorun runs fn immediately and again whenever anything it read changes.
// An error from the first run disposes the reaction and is returned; errors
// from later runs go to the system's OnErrorFunc.
func Autorun(rs *ReactiveSystem, fn func() error, opts ...Option) (Disposer, error) {
	r := rs.newReaction(KindAutorun, applyOptions(opts))
	r.onInvalidate = func() error {
		return r.track(fn)
	}
	if err := r.start(); err != nil {
		r.dispose()
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}
	return r.dispose, nil
}

// Reaction tracks only dataFn and runs effectFn, untracked, when the value it
// produces differs from the previous one. Unless FireImmediately is given the
// first value only primes the comparison.
func Reaction[T any](
	rs *ReactiveSystem,
	dataFn func() T,
	effectFn func(value, previous T) error,
	opts ...Option,
) (Disposer, error) {
	o := applyOptions(opts)
	r := rs.newReaction(KindReaction, o)

	var (
		value T
		first = true
	)
	r.onInvalidate = func() error {
		var next T
		r.track(func() error {
			next = dataFn()
			return nil
		})
		if r.disposed {
			return nil
		}

		prev := value
		changed := first || !o.equal(prev, next)
		value = next
		if first {
			first = false
			if !o.fireImmediately {
				return nil
			}
		}
		if !changed {
			return nil
		}
		return rs.Untracked(func() error {
			return effectFn(next, prev)
		})
	}

	if err := r.start(); err != nil {
		r.dispose()
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}
	return r.dispose, nil
}

// tuple is implemented by the value sets of the generated multi-value
// reactions so they are compared element by element.
type tuple interface {
	elems() []any
}
