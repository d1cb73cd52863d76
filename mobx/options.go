package mobx

import (
	"math"
	"reflect"
)

// Kind names the sort of node an event or default name refers to.
type Kind string

const (
	KindAtom       Kind = "Atom"
	KindObservable Kind = "Observable"
	KindComputed   Kind = "Computed"
	KindAutorun    Kind = "Autorun"
	KindReaction   Kind = "Reaction"
	KindWhen       Kind = "When"
	KindAction     Kind = "Action"
)

// Comparer decides whether two values are equal, in which case a write or
// recomputation is not a change.
type Comparer func(a, b any) bool

// DefaultComparer uses == for values that are comparable at runtime and
// falls back to deep equality for the rest (slices, maps, funcs inside
// structs). Two NaN floats are equal, so rewriting NaN is not a change.
func DefaultComparer(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if bothNaN(va, vb) {
		return true
	}
	if va.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// StructuralComparer compares by deep equality, so a freshly built value
// with the same contents is not a change. Like DefaultComparer it treats two
// NaN floats as equal.
func StructuralComparer(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.IsValid() && vb.IsValid() && va.Type() == vb.Type() && bothNaN(va, vb) {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// bothNaN expects values of the same type.
func bothNaN(va, vb reflect.Value) bool {
	switch va.Kind() {
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(va.Float()) && math.IsNaN(vb.Float())
	}
	return false
}

type options struct {
	name            string
	comparer        Comparer
	fireImmediately bool
	keepAlive       bool
	onObserved      func()
	onUnobserved    func()
}

type Option func(*options)

func applyOptions(opts []Option) *options {
	o := &options{comparer: DefaultComparer}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// equal compares with the configured comparer, element-wise for the tuples
// built by the multi-value reactions.
func (o *options) equal(a, b any) bool {
	if ta, ok := a.(tuple); ok {
		if tb, ok := b.(tuple); ok {
			ea, eb := ta.elems(), tb.elems()
			for i := range ea {
				if !o.comparer(ea[i], eb[i]) {
					return false
				}
			}
			return true
		}
	}
	return o.comparer(a, b)
}

// Named sets the name used in spy events and errors.
func Named(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func WithComparer(c Comparer) Option {
	return func(o *options) {
		if c != nil {
			o.comparer = c
		}
	}
}

// FireImmediately makes a Reaction run its effect on the first evaluation.
func FireImmediately() Option {
	return func(o *options) {
		o.fireImmediately = true
	}
}

// KeepAlive keeps a computed subscribed to its dependencies even while
// nothing observes it.
func KeepAlive() Option {
	return func(o *options) {
		o.keepAlive = true
	}
}

func OnBecomeObserved(fn func()) Option {
	return func(o *options) {
		o.onObserved = fn
	}
}

func OnBecomeUnobserved(fn func()) Option {
	return func(o *options) {
		o.onUnobserved = fn
	}
}
