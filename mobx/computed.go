package mobx

import (
	"encoding/json"
	"fmt"
)

// ComputedValue caches the result of a derivation. While something observes
// it, it is kept in the push/pull propagation; otherwise it checks the
// versions of what it read last time before deciding to recompute.
type ComputedValue[T any] struct {
	atom
	derivationBase

	value  T
	getter func(oldValue T) T
	opts   *options

	computing bool
	// valid is false until a computation completes, and again after one
	// panics.
	valid bool
	// epoch at which an unobserved value was last validated.
	epoch uint64
}

func Computed[T any](rs *ReactiveSystem, getter func(oldValue T) T, opts ...Option) *ComputedValue[T] {
	o := applyOptions(opts)
	c := &ComputedValue[T]{
		atom:           newAtom(rs, KindComputed, o),
		derivationBase: derivationBase{retainDeps: true},
		getter:         getter,
		opts:           o,
	}
	if o.keepAlive {
		c.activate()
	}
	return c
}

func (c *ComputedValue[T]) Name() string { return c.name }

// Version counts the recomputations that produced a different value.
func (c *ComputedValue[T]) Version() uint64 { return c.ver }

func (c *ComputedValue[T]) IsObserved() bool {
	return c.rs.isObserved(c.nid)
}

// Value returns the cached value, recomputing it first if needed. A panic in
// the getter propagates, but the reader still depends on c afterwards.
func (c *ComputedValue[T]) Value() T {
	if c.computing {
		panic(fmt.Errorf("%w: %s", ErrCycle, c.name))
	}
	defer c.rs.reportObserved(c)
	c.refresh()
	return c.value
}

func (c *ComputedValue[T]) refresh() {
	if c.computing {
		panic(fmt.Errorf("%w: %s", ErrCycle, c.name))
	}

	rs := c.rs
	if c.active {
		if (!c.valid || rs.shouldCompute(c)) && c.trackAndCompute() {
			rs.propagateChangeConfirmed(c.nid)
		}
		return
	}

	if c.valid && c.epoch == rs.epoch {
		return
	}
	epoch := rs.epoch
	if !c.valid || rs.depsChanged(&c.derivationBase) {
		c.trackAndCompute()
	}
	c.epoch = epoch
}

// trackAndCompute runs the getter and reports whether the value changed.
func (c *ComputedValue[T]) trackAndCompute() bool {
	old := c.value
	wasValid := c.valid
	c.valid = false
	c.computing = true
	defer func() {
		c.computing = false
	}()

	var next T
	c.rs.trackDerivedFunction(c, func() error {
		next = c.getter(old)
		return nil
	})
	c.valid = true

	if c.rs.spying() {
		c.rs.spyReport(SpyEvent{Type: SpyCompute, Kind: KindComputed, Name: c.name})
	}

	if wasValid && c.opts.equal(old, next) {
		return false
	}
	c.value = next
	c.ver++
	return true
}

func (c *ComputedValue[T]) onBecomeStale() {
	c.rs.propagateMaybeChanged(c.nid)
}

func (c *ComputedValue[T]) becomeObserved() {
	c.activate()
	c.atom.becomeObserved()
}

func (c *ComputedValue[T]) becomeUnobserved() {
	c.deactivate()
	c.atom.becomeUnobserved()
}

func (c *ComputedValue[T]) activate() {
	if c.active {
		return
	}
	c.active = true
	c.rs.derivations[c.nid] = c

	c.rs.StartBatch()
	defer c.rs.EndBatch()
	for _, dep := range c.deps {
		c.rs.addObserver(dep.n, c)
	}
	if c.valid {
		c.state = stateFromVersions(&c.derivationBase)
	} else {
		// refresh recomputes an invalid value whatever the state
		c.state = upToDate
	}
}

func (c *ComputedValue[T]) deactivate() {
	if !c.active || c.opts.keepAlive {
		return
	}
	wasUpToDate := c.state == upToDate
	c.active = false
	c.state = notTracking
	delete(c.rs.derivations, c.nid)

	c.rs.StartBatch()
	defer c.rs.EndBatch()
	for _, dep := range c.deps {
		c.rs.removeObserver(dep.n, c)
	}
	if wasUpToDate && c.valid {
		c.epoch = c.rs.epoch
	} else {
		c.epoch = 0
	}
}

func (c *ComputedValue[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Value())
}
