package event

import (
	"context"
	"time"
)

// Latch is a synchronization primitive for "wait for completion" (One-Way Door).
// It supports multiple waiters.
// Once Open() is called, all current and future Wait() calls return immediately.
type Latch struct {
	_  noCopy
	ev Event
}

// Open opens the door.
// It wakes up all currently blocked waiters.
// Any future calls to Wait() will return immediately.
// Open() is idempotent (can be called multiple times).
func (l *Latch) Open() {
	l.ev.mustSignal()
}

// Wait blocks until Open is called.
// If Open has already been called, it returns immediately.
func (l *Latch) Wait() {
	l.ev.Wait()
}

// WaitTimeout is Wait bounded by d. It reports whether the latch is open.
func (l *Latch) WaitTimeout(d time.Duration) bool {
	return l.ev.WaitTimeout(d)
}

// WaitContext is Wait bounded by ctx.
func (l *Latch) WaitContext(ctx context.Context) error {
	return l.ev.WaitContext(ctx)
}

// IsOpen reports whether Open has been called.
func (l *Latch) IsOpen() bool {
	return l.ev.IsSignalled()
}
