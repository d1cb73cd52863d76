package mobx

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// reportObserved records n as a dependency of the running derivation, if
// any. Reading the same node twice in one run records it once.
func (rs *ReactiveSystem) reportObserved(n node) bool {
	f := rs.frame
	if f == nil {
		return false
	}
	if f.seen.Add(n.nodeID()) {
		f.deps = append(f.deps, dependency{n: n, version: n.nodeVersion()})
	}
	return true
}

// trackDerivedFunction runs fn as d's tracked body. The previous frame is
// restored and d's dependencies rebound even when fn panics, leaving d up to
// date with the reads of the partial run so the next change re-runs it.
func (rs *ReactiveSystem) trackDerivedFunction(d derivation, fn func() error) error {
	b := d.base()
	if b.active {
		b.state = upToDate
	}

	f := &frame{
		d:    d,
		seen: mapset.NewThreadUnsafeSet[nodeID](),
	}
	prev := rs.frame
	rs.frame = f

	defer func() {
		rs.frame = prev
		rs.bindDependencies(d, f)
	}()

	return fn()
}

// bindDependencies replaces d's dependencies with the reads collected in f.
// New dependencies are subscribed before stale ones are dropped so a node
// read in both runs never flaps through unobserved.
func (rs *ReactiveSystem) bindDependencies(d derivation, f *frame) {
	b := d.base()
	prevDeps, prevSet := b.deps, b.depSet

	if !b.active {
		if b.retainDeps {
			b.deps, b.depSet = f.deps, f.seen
		} else {
			b.deps, b.depSet = nil, nil
		}
		return
	}

	b.deps, b.depSet = f.deps, f.seen

	rs.StartBatch()
	defer rs.EndBatch()

	for _, dep := range f.deps {
		if prevSet == nil || !prevSet.Contains(dep.n.nodeID()) {
			rs.addObserver(dep.n, d)
		}
	}
	for _, dep := range prevDeps {
		if !f.seen.Contains(dep.n.nodeID()) {
			rs.removeObserver(dep.n, d)
		}
	}
}

// clearObserving unsubscribes d from everything it depends on.
func (rs *ReactiveSystem) clearObserving(d derivation) {
	b := d.base()
	deps := b.deps
	b.deps, b.depSet = nil, nil
	b.state = notTracking

	rs.StartBatch()
	defer rs.EndBatch()
	for _, dep := range deps {
		rs.removeObserver(dep.n, d)
	}
}

func (rs *ReactiveSystem) addObserver(n node, d derivation) {
	id := n.nodeID()
	subs, ok := rs.observers[id]
	if !ok {
		subs = mapset.NewThreadUnsafeSet[nodeID]()
		rs.observers[id] = subs
	}
	if subs.Add(d.nodeID()) && subs.Cardinality() == 1 {
		n.becomeObserved()
	}
}

func (rs *ReactiveSystem) removeObserver(n node, d derivation) {
	id := n.nodeID()
	subs, ok := rs.observers[id]
	if !ok || !subs.Contains(d.nodeID()) {
		return
	}
	subs.Remove(d.nodeID())
	if subs.Cardinality() == 0 {
		delete(rs.observers, id)
		n.becomeUnobserved()
	}
}

func (rs *ReactiveSystem) isObserved(id nodeID) bool {
	subs, ok := rs.observers[id]
	return ok && subs.Cardinality() > 0
}

// observersOf snapshots the derivations subscribed to id so propagation can
// safely change subscriptions.
func (rs *ReactiveSystem) observersOf(id nodeID) []derivation {
	subs, ok := rs.observers[id]
	if !ok {
		return nil
	}
	ds := make([]derivation, 0, subs.Cardinality())
	subs.Each(func(sub nodeID) bool {
		if d, ok := rs.derivations[sub]; ok {
			ds = append(ds, d)
		}
		return false
	})
	return ds
}

// propagateChanged marks the direct observers of a changed node stale.
func (rs *ReactiveSystem) propagateChanged(id nodeID) {
	for _, d := range rs.observersOf(id) {
		b := d.base()
		if b.state == upToDate {
			d.onBecomeStale()
		}
		b.state = stale
	}
}

// propagateMaybeChanged marks everything downstream of a computed whose
// inputs changed as possibly stale; whether it really changed is only known
// once it is recomputed.
func (rs *ReactiveSystem) propagateMaybeChanged(id nodeID) {
	for _, d := range rs.observersOf(id) {
		b := d.base()
		if b.state == upToDate {
			b.state = possiblyStale
			d.onBecomeStale()
		}
	}
}

// propagateChangeConfirmed upgrades possibly stale observers of a computed
// that did produce a new value.
func (rs *ReactiveSystem) propagateChangeConfirmed(id nodeID) {
	for _, d := range rs.observersOf(id) {
		b := d.base()
		if b.state == possiblyStale {
			b.state = stale
		}
	}
}

// shouldCompute reports whether d has to run again. A possibly stale
// derivation brings its computed dependencies up to date, in read order,
// until one of them turns out to have changed.
func (rs *ReactiveSystem) shouldCompute(d derivation) bool {
	b := d.base()
	switch b.state {
	case upToDate:
		return false
	case notTracking, stale:
		return true
	}

	rs.PauseTracking()
	defer rs.ResumeTracking()
	for _, dep := range b.deps {
		c, ok := dep.n.(refresher)
		if !ok {
			continue
		}
		if !refreshQuietly(c) {
			// the failure resurfaces when d reads c itself
			return true
		}
		if b.state == stale {
			return true
		}
	}
	b.state = upToDate
	return false
}

func refreshQuietly(c refresher) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	c.refresh()
	return true
}

// depsChanged validates the dependencies of an unobserved computed by
// version, refreshing computed dependencies first.
func (rs *ReactiveSystem) depsChanged(b *derivationBase) bool {
	rs.PauseTracking()
	defer rs.ResumeTracking()
	for _, dep := range b.deps {
		if c, ok := dep.n.(refresher); ok {
			if !refreshQuietly(c) {
				return true
			}
		}
		if dep.n.nodeVersion() != dep.version {
			return true
		}
	}
	return false
}

// stateFromVersions derives the state of a derivation that is about to be
// subscribed from the versions it last observed.
func stateFromVersions(b *derivationBase) derivationState {
	state := upToDate
	for _, dep := range b.deps {
		if dep.n.nodeVersion() != dep.version {
			return stale
		}
		if d, ok := dep.n.(derivation); ok && d.base().state != upToDate {
			state = possiblyStale
		}
	}
	return state
}
