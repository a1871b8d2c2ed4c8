package event

import (
	"context"
	"time"
)

// Gate is a synchronization primitive that can be manually opened and closed.
//
// State:
//   - Open: Wait returns immediately.
//   - Close: Wait blocks.
//
// Open releases every goroutine blocked at that moment, even if Close
// follows right after. It is a manual-reset Event with door vocabulary.
//
// It is zero-value usable (starts Close).
type Gate struct {
	_  noCopy
	ev Event
}

// Open signals the gate (sets state to Open).
// All current waiters are woken up.
// Future calls to Wait() return immediately until Close() is called.
func (g *Gate) Open() {
	g.ev.mustSignal()
}

// Close signals the gate (sets state to Close).
// Future calls to Wait() will block.
func (g *Gate) Close() {
	g.ev.Reset()
}

// Wait blocks until the gate is opened (Open).
// If the gate is already opened, it returns immediately.
func (g *Gate) Wait() {
	g.ev.Wait()
}

// WaitTimeout is Wait bounded by d. It reports whether the gate was opened.
func (g *Gate) WaitTimeout(d time.Duration) bool {
	return g.ev.WaitTimeout(d)
}

// WaitContext is Wait bounded by ctx.
func (g *Gate) WaitContext(ctx context.Context) error {
	return g.ev.WaitContext(ctx)
}

// IsOpen returns true if the gate is currently opened.
func (g *Gate) IsOpen() bool {
	return g.ev.IsSignalled()
}

// mustSignal is Signal for events on the built-in Cond, whose Notify cannot
// fail.
func (e *Event) mustSignal() {
	if err := e.Signal(); err != nil {
		panic(err)
	}
}
