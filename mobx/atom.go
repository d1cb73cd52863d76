package mobx

import "fmt"

type atom struct {
	rs   *ReactiveSystem
	nid  nodeID
	name string
	ver  uint64

	onObserved, onUnobserved func()
}

func newAtom(rs *ReactiveSystem, kind Kind, o *options) atom {
	id := rs.newID()
	name := o.name
	if name == "" {
		name = fmt.Sprintf("%s@%d", kind, id)
	}
	return atom{
		rs:           rs,
		nid:          id,
		name:         name,
		onObserved:   o.onObserved,
		onUnobserved: o.onUnobserved,
	}
}

func (a *atom) nodeID() nodeID      { return a.nid }
func (a *atom) nodeVersion() uint64 { return a.ver }

func (a *atom) becomeObserved() {
	if a.onObserved != nil {
		a.onObserved()
	}
}

func (a *atom) becomeUnobserved() {
	if a.onUnobserved != nil {
		a.onUnobserved()
	}
}

// reportChanged bumps the version and notifies observers inside a batch.
func (a *atom) reportChanged() {
	a.rs.StartBatch()
	defer a.rs.EndBatch()
	a.ver++
	a.rs.epoch++
	a.rs.propagateChanged(a.nid)
}

// Atom is a bare observable node for building custom observable sources.
type Atom struct {
	atom
}

// CreateAtom creates an atom. Use OnBecomeObserved and OnBecomeUnobserved
// to acquire and release whatever the atom represents.
func CreateAtom(rs *ReactiveSystem, name string, opts ...Option) *Atom {
	o := applyOptions(append([]Option{Named(name)}, opts...))
	return &Atom{atom: newAtom(rs, KindAtom, o)}
}

func (a *Atom) Name() string { return a.name }

// ReportObserved records the atom as a dependency of the running derivation.
// It returns false when nothing is tracking.
func (a *Atom) ReportObserved() bool {
	return a.rs.reportObserved(&a.atom)
}

// ReportChanged signals that whatever the atom represents has changed.
func (a *Atom) ReportChanged() {
	if a.rs.spying() {
		a.rs.spyReport(SpyEvent{Type: SpyUpdate, Kind: KindAtom, Name: a.name})
	}
	a.reportChanged()
}

func (a *Atom) IsObserved() bool {
	return a.rs.isObserved(a.nid)
}
