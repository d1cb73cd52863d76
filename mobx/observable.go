package mobx

import "encoding/json"

// ObservableValue is a mutable cell whose reads are tracked and whose writes
// notify the derivations that read it.
type ObservableValue[T any] struct {
	atom
	value T
	opts  *options
}

func Observable[T any](rs *ReactiveSystem, initialValue T, opts ...Option) *ObservableValue[T] {
	o := applyOptions(opts)
	return &ObservableValue[T]{
		atom:  newAtom(rs, KindObservable, o),
		value: initialValue,
		opts:  o,
	}
}

func (o *ObservableValue[T]) Name() string { return o.name }

// Version counts the changes made to the value.
func (o *ObservableValue[T]) Version() uint64 { return o.ver }

func (o *ObservableValue[T]) IsObserved() bool {
	return o.rs.isObserved(o.nid)
}

func (o *ObservableValue[T]) Value() T {
	o.rs.reportObserved(&o.atom)
	return o.value
}

// SetValue stores v if it differs from the current value and schedules every
// derivation that read this observable.
func (o *ObservableValue[T]) SetValue(v T) {
	if o.opts.equal(o.value, v) {
		return
	}
	old := o.value
	o.value = v
	if o.rs.spying() {
		o.rs.spyReport(SpyEvent{
			Type:     SpyUpdate,
			Kind:     KindObservable,
			Name:     o.name,
			NewValue: v,
			OldValue: old,
		})
	}
	o.reportChanged()
}

// Update sets the value to fn applied to the current one. The current value
// is read untracked.
func (o *ObservableValue[T]) Update(fn func(oldValue T) T) {
	o.SetValue(fn(o.value))
}

func (o *ObservableValue[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Value())
}

// UnmarshalJSON sets the value through SetValue, so an observable embedded in
// a model must be constructed before the model is decoded into.
func (o *ObservableValue[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.SetValue(v)
	return nil
}
