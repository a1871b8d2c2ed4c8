package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestGroup_KeysAreIndependent(t *testing.T) {
	g := NewGroup[string](false)

	if err := g.Signal("a"); err != nil {
		t.Fatal(err)
	}
	if !g.IsSignalled("a") {
		t.Fatal("a not signalled")
	}
	if g.IsSignalled("b") {
		t.Fatal("b signalled by a")
	}
	if g.WaitTimeout("b", 10*time.Millisecond) {
		t.Fatal("wait on b returned true")
	}
	if !g.Wait("a") {
		t.Fatal("wait on a returned false")
	}
	g.Reset("a")
	if g.IsSignalled("a") {
		t.Fatal("a still signalled after Reset")
	}
	if n := g.Len(); n != 2 {
		t.Fatalf("Len = %d, want 2", n)
	}
}

func TestGroup_SameEventPerKey(t *testing.T) {
	var g Group[int]
	const n = 32
	events := make([]*Event, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			events[i] = g.Event(7)
		}()
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if events[i] != events[0] {
			t.Fatal("concurrent Event calls created distinct events")
		}
	}
	if events[0].AutoReset() {
		t.Fatal("zero Group should create manual-reset events")
	}
}

func TestGroup_AutoReset(t *testing.T) {
	g := NewGroup[string](true)
	done := make(chan bool, 1)
	go func() { done <- g.Wait("job") }()
	waitForWaiters(t, g.Event("job"), 1)

	if err := g.Signal("job"); err != nil {
		t.Fatal(err)
	}
	select {
	case ok := <-done:
		if !ok {
			t.Fatal("waiter returned false")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("waiter not woken")
	}
	if g.IsSignalled("job") {
		t.Fatal("auto-reset event still signalled")
	}
}

func TestGroup_Forget(t *testing.T) {
	g := NewGroup[string](false)

	// Reset of an unknown key does not create it.
	g.Reset("ghost")
	if n := g.Len(); n != 0 {
		t.Fatalf("Len = %d, want 0", n)
	}

	done := make(chan error, 1)
	go func() { done <- g.WaitContext(context.Background(), "busy") }()
	waitForWaiters(t, g.Event("busy"), 1)

	if g.Forget("busy") {
		t.Fatal("Forget removed a key with a blocked waiter")
	}
	_ = g.Signal("busy")
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	old := g.Event("busy")
	if !g.Forget("busy") {
		t.Fatal("Forget refused an idle key")
	}
	if g.Forget("busy") {
		t.Fatal("Forget reported removing an absent key")
	}
	if g.Event("busy") == old {
		t.Fatal("key still maps to the forgotten event")
	}
}

func TestGroup_ForgetBetweenLookupAndWait(t *testing.T) {
	g := NewGroup[int](false)

	// Replay Wait's two steps with Forget in between them.
	ent := g.lookup(1, true, true)
	if g.Forget(1) {
		t.Fatal("Forget removed a key pinned by a pending Wait")
	}
	done := make(chan bool, 1)
	go func() {
		defer g.release(1, ent)
		done <- ent.ev.WaitTimeout(5 * time.Second)
	}()
	waitForWaiters(t, ent.ev, 1)

	if err := g.Signal(1); err != nil {
		t.Fatal(err)
	}
	if !<-done {
		t.Fatal("waiter missed the signal sent to its key")
	}
	if !g.Forget(1) {
		t.Fatal("Forget refused a key after the wait finished")
	}
	if n := g.Len(); n != 0 {
		t.Fatalf("Len = %d, want 0", n)
	}
}

func TestGroup_ConcurrentUse(t *testing.T) {
	g := NewGroup[int](true)
	const keys = 4
	var stop atomic.Bool

	var eg errgroup.Group
	for k := range keys {
		eg.Go(func() error {
			for !stop.Load() {
				g.WaitTimeout(k, time.Millisecond)
			}
			return nil
		})
		eg.Go(func() error {
			for !stop.Load() {
				if err := g.Signal(k); err != nil {
					return err
				}
				g.IsSignalled(k)
				g.Reset(k)
				g.Forget(k)
				g.Event(k)
			}
			return nil
		})
	}
	time.Sleep(50 * time.Millisecond)
	stop.Store(true)
	if err := eg.Wait(); err != nil {
		t.Fatal(err)
	}

	for k := range keys {
		if err := g.Signal(k); err != nil {
			t.Fatal(err)
		}
		if !g.WaitTimeout(k, time.Second) {
			t.Fatalf("key %d: signal after the run was not observed", k)
		}
		g.Forget(k)
	}
	if n := g.Len(); n != 0 {
		t.Fatalf("Len = %d, want 0", n)
	}
}
