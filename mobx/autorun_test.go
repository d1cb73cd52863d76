package mobx_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/mobx-go/mobx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestAutorunRunsOncePerWriteForRepeatedReads(t *testing.T) {
	rs := newSystem(t)
	a := mobx.Observable(rs, 1)

	runs := 0
	stop, err := mobx.Autorun(rs, func() error {
		_ = a.Value() + a.Value() + a.Value()
		runs++
		return nil
	})
	require.NoError(t, err)
	defer stop()

	a.SetValue(2)
	assert.Equal(t, 2, runs)

	// equal write
	a.SetValue(2)
	assert.Equal(t, 2, runs)
}

func TestAutorunPrunesDependencies(t *testing.T) {
	rs := newSystem(t)
	useA := mobx.Observable(rs, true)
	a := mobx.Observable(rs, "a")
	b := mobx.Observable(rs, "b")

	var seen []string
	stop, err := mobx.Autorun(rs, func() error {
		if useA.Value() {
			seen = append(seen, a.Value())
		} else {
			seen = append(seen, b.Value())
		}
		return nil
	})
	require.NoError(t, err)
	defer stop()
	assert.True(t, a.IsObserved())
	assert.False(t, b.IsObserved())

	b.SetValue("b1")
	assert.Equal(t, []string{"a"}, seen)

	useA.SetValue(false)
	assert.False(t, a.IsObserved())
	assert.True(t, b.IsObserved())

	a.SetValue("a1")
	b.SetValue("b2")
	assert.Equal(t, []string{"a", "b1", "b2"}, seen)
}

func TestBatchCoalescesWrites(t *testing.T) {
	rs := newSystem(t)
	first := mobx.Observable(rs, "Jane")
	last := mobx.Observable(rs, "Doe")

	var names []string
	stop, err := mobx.Autorun(rs, func() error {
		names = append(names, first.Value()+" "+last.Value())
		return nil
	})
	require.NoError(t, err)
	defer stop()

	rs.Batch(func() {
		first.SetValue("John")
		last.SetValue("Smith")
	})

	require.NoError(t, rs.RunInAction(func() error {
		first.SetValue("Anna")
		last.SetValue("Jones")
		return nil
	}))

	assert.Equal(t, []string{"Jane Doe", "John Smith", "Anna Jones"}, names)
}

func TestReactionsRunInCreationOrder(t *testing.T) {
	rs := newSystem(t)
	a := mobx.Observable(rs, 0)
	b := mobx.Observable(rs, 0)

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		stop, err := mobx.Autorun(rs, func() error {
			a.Value()
			b.Value()
			order = append(order, name)
			return nil
		})
		require.NoError(t, err)
		defer stop()
	}
	order = order[:0]

	rs.Batch(func() {
		b.SetValue(1)
		a.SetValue(1)
	})
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestDisposeBeforeChangeSuppressesEffects(t *testing.T) {
	rs := newSystem(t)
	a := mobx.Observable(rs, 0)

	runs := 0
	dispose, err := mobx.Autorun(rs, func() error {
		a.Value()
		runs++
		return nil
	})
	require.NoError(t, err)

	dispose()
	dispose()
	for i := 1; i <= 3; i++ {
		a.SetValue(i)
	}
	assert.Equal(t, 1, runs)
	assert.False(t, a.IsObserved())
}

func TestAutorunDisposesItself(t *testing.T) {
	rs := newSystem(t)
	a := mobx.Observable(rs, 0)

	var (
		seen    []int
		dispose mobx.Disposer
		err     error
	)
	dispose, err = mobx.Autorun(rs, func() error {
		v := a.Value()
		seen = append(seen, v)
		if v >= 2 {
			dispose()
		}
		return nil
	})
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		a.SetValue(i)
	}
	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.False(t, a.IsObserved())
}

func TestAutorunFirstRunErrorIsReturned(t *testing.T) {
	rs := newSystem(t)
	a := mobx.Observable(rs, 0)

	runs := 0
	dispose, err := mobx.Autorun(rs, func() error {
		a.Value()
		runs++
		return errBoom
	}, mobx.Named("failing"))
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "failing")
	assert.Nil(t, dispose)

	a.SetValue(1)
	assert.Equal(t, 1, runs)
	assert.False(t, a.IsObserved())
}

func TestAutorunLaterErrorsGoToHandler(t *testing.T) {
	type reported struct {
		name string
		err  error
	}
	var errs []reported
	rs := mobx.CreateReactiveSystem(func(reaction string, err error) {
		errs = append(errs, reported{reaction, err})
	})
	a := mobx.Observable(rs, 0)

	runs := 0
	stop, err := mobx.Autorun(rs, func() error {
		runs++
		if a.Value()%2 == 1 {
			return errBoom
		}
		return nil
	}, mobx.Named("odd-hater"))
	require.NoError(t, err)
	defer stop()

	a.SetValue(1)
	require.Len(t, errs, 1)
	assert.Equal(t, "odd-hater", errs[0].name)
	assert.ErrorIs(t, errs[0].err, errBoom)

	// still subscribed after the error
	a.SetValue(2)
	assert.Equal(t, 3, runs)
	assert.Len(t, errs, 1)
}

func TestAutorunPanicKeepsDependencies(t *testing.T) {
	rs := newSystem(t)
	a := mobx.Observable(rs, 0)

	var seen []int
	stop, err := mobx.Autorun(rs, func() error {
		v := a.Value()
		if v == 1 {
			panic("one")
		}
		seen = append(seen, v)
		return nil
	})
	require.NoError(t, err)
	defer stop()

	assert.Panics(t, func() {
		a.SetValue(1)
	})
	assert.True(t, a.IsObserved())

	a.SetValue(2)
	assert.Equal(t, []int{0, 2}, seen)
}

func TestAutorunFirstRunPanicDisposes(t *testing.T) {
	rs := newSystem(t)
	src := mobx.Observable(rs, 0)

	runs := 0
	assert.Panics(t, func() {
		mobx.Autorun(rs, func() error {
			runs++
			if src.Value() == 0 {
				panic("zero")
			}
			return nil
		})
	})
	assert.False(t, src.IsObserved())

	src.SetValue(1)
	src.SetValue(2)
	assert.Equal(t, 1, runs)
}

func TestPanicDoesNotSkipOtherReactions(t *testing.T) {
	rs := newSystem(t)

	//    src
	//    / \
	//  *A   *B
	//  panics on 1
	src := mobx.Observable(rs, 0)
	stopA, err := mobx.Autorun(rs, func() error {
		if src.Value() == 1 {
			panic("one")
		}
		return nil
	})
	require.NoError(t, err)
	defer stopA()

	var seen []int
	stopB, err := mobx.Autorun(rs, func() error {
		seen = append(seen, src.Value())
		return nil
	})
	require.NoError(t, err)
	defer stopB()

	assert.PanicsWithValue(t, "one", func() {
		src.SetValue(1)
	})
	assert.Equal(t, []int{0, 1}, seen)

	src.SetValue(2)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestReactionLoopIsAborted(t *testing.T) {
	var loopErr error
	rs := mobx.CreateReactiveSystem(func(reaction string, err error) {
		loopErr = err
	})
	a := mobx.Observable(rs, 0)

	runs := 0
	stop, err := mobx.Autorun(rs, func() error {
		runs++
		a.SetValue(a.Value() + 1)
		return nil
	})
	require.NoError(t, err)
	defer stop()
	assert.Equal(t, 1, runs)

	a.SetValue(100)
	require.ErrorIs(t, loopErr, mobx.ErrReactionLoop)
	assert.Equal(t, 1+mobx.MaxReactionIterations, runs)
}

func TestAutorunDoesNotTrackActions(t *testing.T) {
	rs := newSystem(t)
	a := mobx.Observable(rs, 0)
	b := mobx.Observable(rs, 0)

	runs := 0
	stop, err := mobx.Autorun(rs, func() error {
		runs++
		a.Value()
		return rs.RunInAction(func() error {
			b.Value()
			return nil
		})
	})
	require.NoError(t, err)
	defer stop()

	b.SetValue(1)
	assert.Equal(t, 1, runs)
	a.SetValue(1)
	assert.Equal(t, 2, runs)
}

func TestPauseTracking(t *testing.T) {
	rs := newSystem(t)

	src := mobx.Observable(rs, 0)
	c := mobx.Computed(rs, func(oldValue int) int {
		rs.PauseTracking()
		value := src.Value()
		rs.ResumeTracking()
		return value
	})
	assert.Equal(t, 0, c.Value())

	src.SetValue(1)
	assert.Equal(t, 0, c.Value())

	d := mobx.Computed(rs, func(oldValue int) int {
		return mobx.UntrackedValue(rs, src.Value)
	})
	assert.Equal(t, 1, d.Value())
	src.SetValue(2)
	assert.Equal(t, 1, d.Value())
}
