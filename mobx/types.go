package mobx

import mapset "github.com/deckarep/golang-set/v2"

type nodeID uint64

type derivationState uint8

const (
	notTracking derivationState = iota
	upToDate
	possiblyStale
	stale
)

// node is anything a derivation can read and subscribe to.
type node interface {
	nodeID() nodeID
	nodeVersion() uint64
	becomeObserved()
	becomeUnobserved()
}

// derivation is anything that tracks the nodes it reads.
type derivation interface {
	nodeID() nodeID
	base() *derivationBase
	onBecomeStale()
}

// refresher is a derivation that can be brought up to date on demand,
// i.e. a computed value.
type refresher interface {
	node
	refresh()
}

type dependency struct {
	n       node
	version uint64
}

type derivationBase struct {
	state derivationState
	// deps in the order they were first read during the last run, with the
	// version observed at that read.
	deps   []dependency
	depSet mapset.Set[nodeID]
	// active derivations are subscribed to their deps.
	active bool
	// retainDeps keeps the dependency list while inactive so the cached
	// value can be validated by versions.
	retainDeps bool
}

func (b *derivationBase) base() *derivationBase { return b }

// frame collects the reads of one tracked run.
type frame struct {
	d    derivation
	seen mapset.Set[nodeID]
	deps []dependency
}
