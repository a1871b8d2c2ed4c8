// Package event provides Event, a goroutine synchronization object holding a
// single boolean flag that any number of goroutines can wait on, and the
// coordination primitives built on it (Gate, Latch, Pulse and Group).
package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/llxisdsh/event/internal/ilist"
	"github.com/llxisdsh/event/internal/opt"
)

// Infinite is the WaitTimeout duration that never expires.
const Infinite time.Duration = -1

// State word values. Transitions into or out of stateWaiting happen only with
// Event.mu held; the other two states are exchanged lock-free.
const (
	stateUnsignalled uint32 = iota
	stateSignalled          // signalled, no waiters
	stateWaiting            // unsignalled, waiters queued
)

// Event is a synchronization object that contains a single boolean flag.
// Goroutines can wait for the flag to become set.
//
// If autoreset is on, a successful wait clears the flag, and a Signal that
// finds goroutines blocked wakes exactly one of them (the one that has waited
// longest) and clears the flag in the same step. Signals are not counted: any
// number of Signal calls with nobody waiting leave the flag set only once.
//
// With autoreset off, the flag stays set until Reset, and a Signal releases
// every goroutine blocked at that moment.
//
// Implementation:
// The flag lives in a tri-state word. While nobody is blocked, Signal, Reset
// and a Wait that finds the flag set only CAS the word and never touch the
// mutex. Blocked waiters are kept in a FIFO list guarded by the mutex, each
// with its own Cond and an awoken flag that is set by the waker under the
// mutex. A waiter whose timeout races a Signal checks awoken with the mutex
// held before giving up, so a wakeup is never lost.
//
// The zero value is a manual-reset Event in the unsignalled state.
type Event struct {
	_     noCopy
	state atomic.Uint32
	_     opt.Pad_

	autoReset bool
	newCond   CondFactory

	mu      sync.Mutex
	waiters ilist.List[waitEntry]
}

type waitEntry struct {
	node   ilist.Node[waitEntry]
	cond   Cond
	awoken bool
}

// Config holds the options applied by New and Init.
type Config struct {
	newCond CondFactory
}

// WithCondFactory sets the function that creates the Cond each blocked Wait
// parks on. A nil factory selects the built-in pooled implementation.
func WithCondFactory(f CondFactory) func(*Config) {
	return func(c *Config) {
		c.newCond = f
	}
}

// New creates an Event. It can be used to initialize package-level events:
//
//	var ready = event.New(false, false)
func New(autoReset, signalled bool, options ...func(*Config)) *Event {
	e := &Event{}
	e.Init(autoReset, signalled, options...)
	return e
}

// Init initializes e in place. It must be called before e is shared.
func (e *Event) Init(autoReset, signalled bool, options ...func(*Config)) {
	var cfg Config
	for _, o := range options {
		o(&cfg)
	}
	e.autoReset = autoReset
	e.newCond = cfg.newCond
	if signalled {
		e.state.Store(stateSignalled)
	} else {
		e.state.Store(stateUnsignalled)
	}
}

// AutoReset reports whether a successful wait clears the flag.
func (e *Event) AutoReset() bool {
	return e.autoReset
}

// IsSignalled reports whether the flag is set at the instant of the call.
// The result is advisory; it must not be used in place of Wait.
func (e *Event) IsSignalled() bool {
	return e.state.Load() == stateSignalled
}

// Waiters returns the number of goroutines currently blocked in a Wait call.
func (e *Event) Waiters() int {
	e.mu.Lock()
	n := e.waiters.Len()
	e.mu.Unlock()
	return n
}

// Signal sets the flag and wakes waiters according to the reset mode. It is
// a no-op when the flag is already set. An error is returned only when a
// waiter's Cond fails to notify, in which case no waiter has been released.
func (e *Event) Signal() error {
	for {
		switch s := e.state.Load(); s {
		case stateUnsignalled:
			if e.state.CompareAndSwap(stateUnsignalled, stateSignalled) {
				return nil
			}
		case stateSignalled:
			return nil
		case stateWaiting:
			return e.signalSlow(stateSignalled)
		default:
			badState(s)
		}
	}
}

// Pulse releases the goroutines blocked at this moment (one if autoreset is
// on, all of them otherwise) and leaves the flag cleared. With nobody
// blocked it only clears the flag.
func (e *Event) Pulse() error {
	for {
		switch s := e.state.Load(); s {
		case stateUnsignalled:
			return nil
		case stateSignalled:
			if e.state.CompareAndSwap(stateSignalled, stateUnsignalled) {
				return nil
			}
		case stateWaiting:
			return e.signalSlow(stateUnsignalled)
		default:
			badState(s)
		}
	}
}

// signalSlow wakes waiters under the mutex. after is the state a manual-reset
// event is left in once every waiter has been released.
func (e *Event) signalSlow(after uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		switch s := e.state.Load(); s {
		case stateUnsignalled:
			if after == stateUnsignalled {
				return nil
			}
			if e.state.CompareAndSwap(stateUnsignalled, stateSignalled) {
				return nil
			}
		case stateSignalled:
			if after == stateSignalled {
				return nil
			}
			if e.state.CompareAndSwap(stateSignalled, stateUnsignalled) {
				return nil
			}
		case stateWaiting:
			if e.autoReset {
				return e.wakeOne()
			}
			return e.wakeAll(after)
		default:
			badState(s)
		}
	}
}

// wakeOne releases the oldest waiter. Requires e.mu and stateWaiting.
func (e *Event) wakeOne() error {
	n := e.waiters.Front()
	if n == nil {
		panic("event: waiters present with an empty queue")
	}
	w := n.Owner()
	if err := w.cond.Notify(); err != nil {
		return errors.Wrap(err, "event: notify waiter")
	}
	w.awoken = true
	e.waiters.Remove(&w.node)
	if e.waiters.Empty() {
		e.state.Store(stateUnsignalled)
	}
	return nil
}

// wakeAll releases every waiter. All Conds are notified before anything is
// marked, so a failed Notify leaves no waiter believing it was released.
// Requires e.mu and stateWaiting.
func (e *Event) wakeAll(after uint32) error {
	var err error
	e.waiters.Range(func(w *waitEntry) bool {
		err = w.cond.Notify()
		return err == nil
	})
	if err != nil {
		return errors.Wrap(err, "event: notify waiters")
	}
	e.waiters.Range(func(w *waitEntry) bool {
		w.awoken = true
		return true
	})
	e.waiters.Clear()
	e.state.Store(after)
	return nil
}

// Reset clears the flag. It has no effect when the flag is not set,
// including while goroutines are blocked.
func (e *Event) Reset() {
	for {
		if e.state.Load() != stateSignalled {
			return
		}
		if e.state.CompareAndSwap(stateSignalled, stateUnsignalled) {
			return
		}
	}
}

// Wait blocks until the event is signalled. It returns false only if a Cond
// could not be created for the call.
func (e *Event) Wait() bool {
	return e.WaitTimeout(Infinite)
}

// TryWait reports whether the event is signalled, consuming the signal if
// autoreset is on. It never blocks.
func (e *Event) TryWait() bool {
	return e.WaitTimeout(0)
}

// WaitTimeout blocks until the event is signalled or d elapses, and reports
// whether the signal was observed. A negative d (see Infinite) waits forever;
// zero polls without blocking.
func (e *Event) WaitTimeout(d time.Duration) bool {
	if e.tryWait() {
		return true
	}
	switch {
	case d < 0:
		ok, _ := e.waitSlow(true, time.Time{}, nil)
		return ok
	case d == 0:
		ok, _ := e.waitSlow(false, time.Time{}, nil)
		return ok
	default:
		ok, _ := e.waitSlow(true, time.Now().Add(d), nil)
		return ok
	}
}

// WaitContext blocks until the event is signalled or ctx is done. It returns
// nil when the signal was observed and ctx.Err() otherwise.
func (e *Event) WaitContext(ctx context.Context) error {
	if e.tryWait() {
		return nil
	}
	ok, err := e.waitSlow(true, time.Time{}, ctx.Done())
	if err != nil {
		return err
	}
	if !ok {
		return ctx.Err()
	}
	return nil
}

// tryWait is the lock-free half of Wait.
func (e *Event) tryWait() bool {
	for {
		switch s := e.state.Load(); s {
		case stateSignalled:
			if !e.autoReset {
				return true
			}
			if e.state.CompareAndSwap(stateSignalled, stateUnsignalled) {
				return true
			}
		case stateUnsignalled, stateWaiting:
			return false
		default:
			badState(s)
		}
	}
}

func (e *Event) waitSlow(block bool, deadline time.Time, cancel <-chan struct{}) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// The lock-free read that sent us here may already be stale.
	for joined := false; !joined; {
		switch s := e.state.Load(); s {
		case stateSignalled:
			if !e.autoReset {
				return true, nil
			}
			if e.state.CompareAndSwap(stateSignalled, stateUnsignalled) {
				return true, nil
			}
		case stateUnsignalled:
			if !block {
				return false, nil
			}
			joined = e.state.CompareAndSwap(stateUnsignalled, stateWaiting)
		case stateWaiting:
			if !block {
				return false, nil
			}
			joined = true
		default:
			badState(s)
		}
	}

	w, err := e.startWaiting()
	if err != nil {
		e.demote()
		return false, err
	}
	w.cond.WaitFor(&e.mu, deadline, cancel, func() bool { return w.awoken })

	ok := w.awoken
	if !ok {
		e.waiters.Remove(&w.node)
		e.demote()
	}
	w.cond.Close()
	w.cond = nil
	return ok, nil
}

// startWaiting queues an entry for the calling goroutine. Requires e.mu and
// stateWaiting.
func (e *Event) startWaiting() (*waitEntry, error) {
	newCond := e.newCond
	if newCond == nil {
		newCond = newParker
	}
	c, err := newCond()
	if err != nil {
		return nil, errors.Wrap(err, "event: create cond")
	}
	w := &waitEntry{cond: c}
	w.node.Init(w)
	e.waiters.PushBack(&w.node)
	return w, nil
}

// demote leaves stateWaiting once the queue has drained. No lock-free path
// writes stateWaiting, so a plain store is safe with e.mu held.
func (e *Event) demote() {
	if e.waiters.Empty() && e.state.Load() == stateWaiting {
		e.state.Store(stateUnsignalled)
	}
}

// Close checks that e can be discarded. Closing an event that still has
// goroutines blocked on it is a programming error and panics.
func (e *Event) Close() {
	e.mu.Lock()
	busy := !e.waiters.Empty() || e.state.Load() == stateWaiting
	e.mu.Unlock()
	if busy {
		panic("event: Close called with goroutines waiting")
	}
}
