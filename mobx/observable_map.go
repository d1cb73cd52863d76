package mobx

import (
	"encoding/json"
	"fmt"
	"slices"
)

// ObservableMap tracks each key separately: a derivation that reads one key
// is only re-run when that key changes or is deleted. Reads of the key set
// (Keys, Len, Has, misses of Get) are re-run on insertions and deletions.
type ObservableMap[K comparable, V any] struct {
	rs      *ReactiveSystem
	name    string
	opts    *options
	keys    *Atom
	entries map[K]*ObservableValue[V]
	order   []K
}

type MapEntry[K comparable, V any] struct {
	Key   K
	Value V
}

func NewObservableMap[K comparable, V any](rs *ReactiveSystem, opts ...Option) *ObservableMap[K, V] {
	o := applyOptions(opts)
	name := o.name
	if name == "" {
		name = fmt.Sprintf("ObservableMap@%d", rs.nextID+1)
	}
	return &ObservableMap[K, V]{
		rs:      rs,
		name:    name,
		opts:    o,
		keys:    CreateAtom(rs, name+".keys"),
		entries: map[K]*ObservableValue[V]{},
	}
}

func (m *ObservableMap[K, V]) Get(key K) (V, bool) {
	if e, ok := m.entries[key]; ok {
		return e.Value(), true
	}
	m.keys.ReportObserved()
	var zero V
	return zero, false
}

func (m *ObservableMap[K, V]) Has(key K) bool {
	m.keys.ReportObserved()
	_, ok := m.entries[key]
	return ok
}

func (m *ObservableMap[K, V]) Set(key K, value V) {
	if e, ok := m.entries[key]; ok {
		e.SetValue(value)
		return
	}

	m.rs.StartBatch()
	defer m.rs.EndBatch()
	m.entries[key] = Observable(m.rs, value,
		Named(fmt.Sprintf("%s[%v]", m.name, key)),
		WithComparer(m.opts.comparer),
	)
	m.order = append(m.order, key)
	m.keys.ReportChanged()
}

// Delete removes key and reports whether it was present.
func (m *ObservableMap[K, V]) Delete(key K) bool {
	e, ok := m.entries[key]
	if !ok {
		return false
	}

	m.rs.StartBatch()
	defer m.rs.EndBatch()
	delete(m.entries, key)
	if i := slices.Index(m.order, key); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	e.reportChanged()
	m.keys.ReportChanged()
	return true
}

func (m *ObservableMap[K, V]) Clear() {
	if len(m.entries) == 0 {
		return
	}
	m.rs.Batch(func() {
		for _, k := range slices.Clone(m.order) {
			m.Delete(k)
		}
	})
}

// Keys returns the keys in insertion order.
func (m *ObservableMap[K, V]) Keys() []K {
	m.keys.ReportObserved()
	return slices.Clone(m.order)
}

func (m *ObservableMap[K, V]) Len() int {
	m.keys.ReportObserved()
	return len(m.entries)
}

// Entries returns the entries in insertion order, tracking every value.
func (m *ObservableMap[K, V]) Entries() []MapEntry[K, V] {
	m.keys.ReportObserved()
	entries := make([]MapEntry[K, V], 0, len(m.order))
	for _, k := range m.order {
		entries = append(entries, MapEntry[K, V]{Key: k, Value: m.entries[k].Value()})
	}
	return entries
}

// ToMap copies the contents into a plain map, tracking every value.
func (m *ObservableMap[K, V]) ToMap() map[K]V {
	m.keys.ReportObserved()
	out := make(map[K]V, len(m.entries))
	for k, e := range m.entries {
		out[k] = e.Value()
	}
	return out
}

func (m *ObservableMap[K, V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}
