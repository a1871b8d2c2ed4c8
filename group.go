package event

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/llxisdsh/pb"
)

// Group is a set of events addressed by key. An event is created on first
// use of its key with the group's reset mode, in the unsignalled state.
//
// Signal and the Wait methods pin their key for the duration of the call, so
// Forget cannot drop an event between its lookup and its use.
//
// The zero value is a group of manual-reset events.
type Group[K comparable] struct {
	_         noCopy
	m         pb.MapOf[K, *groupEntry]
	n         atomic.Int64
	autoReset bool
}

type groupEntry struct {
	ev *Event
	// users counts in-flight Signal/Wait calls. Only read or written inside
	// ProcessEntry, under the bucket lock.
	users int
}

// NewGroup creates a group whose events use the given reset mode.
func NewGroup[K comparable](autoReset bool) *Group[K] {
	return &Group[K]{autoReset: autoReset}
}

// lookup returns the entry for key. With create it inserts a missing entry;
// with pin it counts the caller as a user.
func (g *Group[K]) lookup(key K, create, pin bool) *groupEntry {
	ent, _ := g.m.ProcessEntry(
		key,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l != nil {
				if pin {
					l.Value.users++
				}
				return l, l.Value, true
			}
			if !create {
				return nil, nil, false
			}
			ent := &groupEntry{ev: New(g.autoReset, false)}
			if pin {
				ent.users = 1
			}
			g.n.Add(1)
			return &pb.EntryOf[K, *groupEntry]{Value: ent}, ent, false
		},
	)
	return ent
}

// release drops a pin taken by lookup.
func (g *Group[K]) release(key K, ent *groupEntry) {
	_, _ = g.m.ProcessEntry(
		key,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l != nil && l.Value == ent {
				ent.users--
			}
			return l, nil, false
		},
	)
}

// Event returns the event for key, creating it if needed. The returned
// event is not pinned: after Forget the key maps to a fresh event.
func (g *Group[K]) Event(key K) *Event {
	return g.lookup(key, true, false).ev
}

// Signal signals the event for key.
func (g *Group[K]) Signal(key K) error {
	ent := g.lookup(key, true, true)
	defer g.release(key, ent)
	return ent.ev.Signal()
}

// Reset clears the event for key. Keys never used are left absent.
func (g *Group[K]) Reset(key K) {
	if ent := g.lookup(key, false, false); ent != nil {
		ent.ev.Reset()
	}
}

// IsSignalled reports whether the event for key is signalled.
func (g *Group[K]) IsSignalled(key K) bool {
	ent := g.lookup(key, false, false)
	return ent != nil && ent.ev.IsSignalled()
}

// Wait blocks until the event for key is signalled.
func (g *Group[K]) Wait(key K) bool {
	ent := g.lookup(key, true, true)
	defer g.release(key, ent)
	return ent.ev.Wait()
}

// WaitTimeout waits on the event for key for at most d.
func (g *Group[K]) WaitTimeout(key K, d time.Duration) bool {
	ent := g.lookup(key, true, true)
	defer g.release(key, ent)
	return ent.ev.WaitTimeout(d)
}

// WaitContext waits on the event for key until ctx is done.
func (g *Group[K]) WaitContext(ctx context.Context, key K) error {
	ent := g.lookup(key, true, true)
	defer g.release(key, ent)
	return ent.ev.WaitContext(ctx)
}

// Forget removes key from the group unless a Signal or Wait call is using
// it. It reports whether the key was removed.
func (g *Group[K]) Forget(key K) bool {
	_, ok := g.m.ProcessEntry(
		key,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l != nil && l.Value.users == 0 {
				g.n.Add(-1)
				return nil, nil, true
			}
			return l, nil, false
		},
	)
	return ok
}

// Len returns the number of keys in the group.
func (g *Group[K]) Len() int {
	return int(g.n.Load())
}
