package mobx

import (
	"cmp"
	"fmt"
	"log"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// MaxReactionIterations bounds how many passes a single flush may take before
// it is considered a reaction loop.
const MaxReactionIterations = 100

// OnErrorFunc receives errors returned by reactions that were re-run because
// of a write, where there is no caller to return them to.
type OnErrorFunc func(reaction string, err error)

// ReactiveSystem owns a graph of observables and derivations. It is not safe
// for concurrent use; see Do.
type ReactiveSystem struct {
	mu sync.Mutex

	nextID nodeID
	// epoch advances on every change reported by any atom.
	epoch uint64

	// observers maps a node to the active derivations subscribed to it.
	observers   map[nodeID]mapset.Set[nodeID]
	derivations map[nodeID]derivation

	frame      *frame
	pauseStack []*frame

	batchDepth int
	pending    []*reaction
	flushing   bool

	onError OnErrorFunc
	spies   []spyListener
	spyID   int
}

func CreateReactiveSystem(onError OnErrorFunc) *ReactiveSystem {
	return &ReactiveSystem{
		epoch:       1,
		observers:   map[nodeID]mapset.Set[nodeID]{},
		derivations: map[nodeID]derivation{},
		onError:     onError,
	}
}

func (rs *ReactiveSystem) newID() nodeID {
	rs.nextID++
	return rs.nextID
}

func (rs *ReactiveSystem) StartBatch() {
	rs.batchDepth++
}

func (rs *ReactiveSystem) EndBatch() {
	rs.batchDepth--
	if rs.batchDepth == 0 {
		rs.runReactions()
	}
}

// Batch runs cb with reactions deferred until it returns, so a derivation
// depending on several written observables runs once.
func (rs *ReactiveSystem) Batch(cb func()) {
	rs.StartBatch()
	defer rs.EndBatch()
	cb()
}

func (rs *ReactiveSystem) PauseTracking() {
	rs.pauseStack = append(rs.pauseStack, rs.frame)
	rs.frame = nil
}

func (rs *ReactiveSystem) ResumeTracking() {
	lastIdx := len(rs.pauseStack) - 1
	rs.frame = rs.pauseStack[lastIdx]
	rs.pauseStack = rs.pauseStack[:lastIdx]
}

// Untracked runs fn without recording any reads as dependencies of the
// running derivation.
func (rs *ReactiveSystem) Untracked(fn func() error) error {
	rs.PauseTracking()
	defer rs.ResumeTracking()
	return fn()
}

// UntrackedValue is Untracked for functions producing a value.
func UntrackedValue[T any](rs *ReactiveSystem, fn func() T) T {
	rs.PauseTracking()
	defer rs.ResumeTracking()
	return fn()
}

// RunInAction runs fn batched and untracked.
func (rs *ReactiveSystem) RunInAction(fn func() error) error {
	rs.StartBatch()
	defer rs.EndBatch()
	rs.PauseTracking()
	defer rs.ResumeTracking()

	if rs.spying() {
		rs.spyReport(SpyEvent{Type: SpyAction, Kind: KindAction})
	}
	return fn()
}

// Do serializes fn against every other caller of Do and runs it as an
// action. Goroutines other than the one driving the system must reach it
// through Do, and once any does the driving goroutine must as well.
func (rs *ReactiveSystem) Do(fn func() error) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.RunInAction(fn)
}

func (rs *ReactiveSystem) reportError(name string, err error) {
	if rs.spying() {
		rs.spyReport(SpyEvent{Type: SpyError, Name: name, Err: err})
	}
	if rs.onError != nil {
		rs.onError(name, err)
		return
	}
	log.Printf("[mobx] uncaught error in %s: %v", name, err)
}

func (rs *ReactiveSystem) schedule(r *reaction) {
	if r.scheduled || r.disposed {
		return
	}
	r.scheduled = true
	rs.pending = append(rs.pending, r)
	rs.runReactions()
}

// runReactions flushes pending reactions in creation order. Reactions that
// become pending while a pass runs are picked up by the next pass.
func (rs *ReactiveSystem) runReactions() {
	if rs.batchDepth > 0 || rs.flushing {
		return
	}
	rs.flushing = true
	// the first panic of the flush is rethrown once every pending reaction
	// has had its run
	var failure any
	defer func() {
		rs.flushing = false
		if failure != nil {
			panic(failure)
		}
	}()

	for i := 0; len(rs.pending) > 0; i++ {
		if i >= MaxReactionIterations {
			stuck := rs.pending
			rs.pending = nil
			for _, r := range stuck {
				r.scheduled = false
			}
			rs.reportError(stuck[0].name, fmt.Errorf(
				"%w: %d passes without settling, last scheduled %s",
				ErrReactionLoop, MaxReactionIterations, stuck[0].name,
			))
			return
		}

		pass := rs.pending
		rs.pending = nil
		slices.SortFunc(pass, func(a, b *reaction) int {
			return cmp.Compare(a.nid, b.nid)
		})
		if p := rs.runPass(pass); failure == nil {
			failure = p
		}
	}
}

// runPass runs every reaction of the pass and returns the first panic.
func (rs *ReactiveSystem) runPass(pass []*reaction) (failure any) {
	for _, r := range pass {
		if p := runRecovered(r); failure == nil {
			failure = p
		}
	}
	return failure
}

func runRecovered(r *reaction) (p any) {
	defer func() {
		p = recover()
	}()
	r.runReaction()
	return nil
}
