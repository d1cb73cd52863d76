package mobx

type SpyEventType string

const (
	SpyUpdate   SpyEventType = "update"
	SpyCompute  SpyEventType = "compute"
	SpyReaction SpyEventType = "reaction"
	SpyError    SpyEventType = "error"
	SpyAction   SpyEventType = "action"
)

// SpyEvent describes one thing the system did. NewValue and OldValue are only
// set for updates of observable values.
type SpyEvent struct {
	Type     SpyEventType
	Kind     Kind
	Name     string
	NewValue any
	OldValue any
	Err      error
}

type spyListener struct {
	id int
	fn func(SpyEvent)
}

// Spy registers a listener for every event in the system until stop is
// called. Listeners run synchronously and must not write to observables.
func (rs *ReactiveSystem) Spy(listener func(SpyEvent)) (stop func()) {
	rs.spyID++
	id := rs.spyID
	rs.spies = append(rs.spies, spyListener{id: id, fn: listener})
	return func() {
		for i, l := range rs.spies {
			if l.id == id {
				rs.spies = append(rs.spies[:i:i], rs.spies[i+1:]...)
				return
			}
		}
	}
}

func (rs *ReactiveSystem) spying() bool {
	return len(rs.spies) > 0
}

func (rs *ReactiveSystem) spyReport(ev SpyEvent) {
	for _, l := range rs.spies {
		l.fn(ev)
	}
}
