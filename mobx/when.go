package mobx

import (
	"context"
	"fmt"
	"sync"
)

// When runs effect once, the first time predicate evaluates true, and
// disposes itself before doing so. If the predicate is already true the
// effect runs before When returns.
func When(rs *ReactiveSystem, predicate func() bool, effect func() error, opts ...Option) (Disposer, error) {
	r := rs.newReaction(KindWhen, applyOptions(opts))
	r.onInvalidate = func() error {
		var ok bool
		r.track(func() error {
			ok = predicate()
			return nil
		})
		if !ok || r.disposed {
			return nil
		}
		r.dispose()
		return rs.Untracked(effect)
	}

	if err := r.start(); err != nil {
		r.dispose()
		return nil, fmt.Errorf("%s: %w", r.name, err)
	}
	return r.dispose, nil
}

// WhenFuture settles exactly once: with nil when the predicate first holds,
// or with the context's error if that is cancelled first.
type WhenFuture struct {
	done chan struct{}
	err  error
	once sync.Once

	mu   sync.Mutex
	stop func() bool
}

func (f *WhenFuture) settle(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)

		f.mu.Lock()
		stop := f.stop
		f.mu.Unlock()
		if stop != nil {
			stop()
		}
	})
}

func (f *WhenFuture) Done() <-chan struct{} {
	return f.done
}

// Err is nil until the future settles.
func (f *WhenFuture) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the future settles or ctx is done. The system has to be
// driven by another goroutine (through Do) for the predicate to change while
// waiting.
func (f *WhenFuture) Wait(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AsyncWhen is When exposed as a future instead of a callback. There is no
// disposer: the reaction goes away when the predicate holds or, through Do,
// when ctx is cancelled.
func AsyncWhen(ctx context.Context, rs *ReactiveSystem, predicate func() bool, opts ...Option) *WhenFuture {
	f := &WhenFuture{done: make(chan struct{})}
	if err := context.Cause(ctx); err != nil {
		f.settle(err)
		return f
	}

	dispose, err := When(rs, predicate, func() error {
		f.settle(nil)
		return nil
	}, opts...)
	if err != nil {
		f.settle(err)
		return f
	}

	stop := context.AfterFunc(ctx, func() {
		rs.Do(func() error {
			dispose()
			f.settle(context.Cause(ctx))
			return nil
		})
	})
	f.mu.Lock()
	f.stop = stop
	f.mu.Unlock()

	select {
	case <-f.done:
		stop()
	default:
	}
	return f
}
