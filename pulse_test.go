package event

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitForBeatWaiters(t *testing.T, b *Pulse, n int) {
	t.Helper()
	waitForWaiters(t, &b.ev, n)
}

func TestPulseCyclic(t *testing.T) {
	var b Pulse
	var count int32
	var wg sync.WaitGroup

	// Round 1
	n := 5
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			b.Wait()
			atomic.AddInt32(&count, 1)
		}()
	}

	waitForBeatWaiters(t, &b, n)
	if c := atomic.LoadInt32(&count); c != 0 {
		t.Errorf("Round 1: Waiters passed early: %d", c)
	}

	b.Beat() // Pulse 1
	wg.Wait()

	if c := atomic.LoadInt32(&count); c != int32(n) {
		t.Errorf("Round 1: Waiters didn't wake: %d", c)
	}

	// Round 2 (Recycle)
	atomic.StoreInt32(&count, 0)
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			b.Wait() // Should block for Beat 2
			atomic.AddInt32(&count, 1)
		}()
	}

	waitForBeatWaiters(t, &b, n)
	if c := atomic.LoadInt32(&count); c != 0 {
		t.Errorf("Round 2: Waiters passed early (door didn't close): %d", c)
	}

	b.Beat() // Pulse 2
	wg.Wait()

	if c := atomic.LoadInt32(&count); c != int32(n) {
		t.Errorf("Round 2: Waiters didn't wake: %d", c)
	}
}

func TestPulseLateArrival(t *testing.T) {
	var b Pulse

	// 1. Beat with nobody waiting is lost.
	b.Beat()

	// 2. Waiter arrives late and waits for the next beat.
	done := make(chan struct{})
	go func() {
		b.Wait()
		close(done)
	}()

	waitForBeatWaiters(t, &b, 1)
	select {
	case <-done:
		t.Errorf("Late waiter didn't block!")
	case <-time.After(20 * time.Millisecond):
		// Correct, blocked.
	}

	// 3. Second beat releases it.
	b.Beat()

	select {
	case <-done:
		// Success
	case <-time.After(5 * time.Second):
		t.Errorf("Late waiter didn't wake on second beat!")
	}
}

func TestPulseWaitTimeout(t *testing.T) {
	var b Pulse
	if b.WaitTimeout(10 * time.Millisecond) {
		t.Fatal("WaitTimeout returned true without a beat")
	}
	if n := b.Waiters(); n != 0 {
		t.Fatalf("waiters = %d after timeout", n)
	}
}
