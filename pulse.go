package event

import "time"

// Pulse is a reusable synchronization primitive (Pulse / Auto-Closing Door).
//
// Behavior:
//   - Wait(): Blocks until the NEXT Beat() call.
//   - Beat(): Wakes up all currently waiting goroutines.
//     IMMEDIATELY closes the door for any new Wait() calls (they will wait for the NEXT Beat).
//
// It is zero-value usable.
type Pulse struct {
	_  noCopy
	ev Event
}

// Beat wakes up all goroutines currently waiting.
// Any subsequent calls to Wait() will block until the *next* Beat().
func (b *Pulse) Beat() {
	if err := b.ev.Pulse(); err != nil {
		panic(err)
	}
}

// Wait blocks until Beat() is called.
func (b *Pulse) Wait() {
	b.ev.Wait()
}

// WaitTimeout is Wait bounded by d. It reports whether a Beat arrived.
func (b *Pulse) WaitTimeout(d time.Duration) bool {
	return b.ev.WaitTimeout(d)
}

// Waiters returns the number of goroutines waiting for the next Beat.
func (b *Pulse) Waiters() int {
	return b.ev.Waiters()
}
