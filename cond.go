package event

import (
	"sync"
	"time"

	"github.com/llxisdsh/event/internal/opt"
)

// Cond parks a single blocked Wait call. Each Cond is owned by exactly one
// waiter and notified by at most one waker at a time, always while the
// Event's mutex is held.
type Cond interface {
	// WaitFor is called with l held and returns with l held. It returns once
	// pred reports true, the deadline passes (if non-zero) or cancel is
	// closed. pred is only evaluated with l held.
	WaitFor(l sync.Locker, deadline time.Time, cancel <-chan struct{}, pred func() bool)
	// Notify wakes the goroutine parked in WaitFor. A failed Notify must have
	// no effect on the waiter beyond a spurious wakeup.
	Notify() error
	// Close releases the Cond. It is called once, after the entry has been
	// unlinked, with the Event's mutex held.
	Close()
}

// CondFactory creates the Cond for one blocked Wait call.
type CondFactory func() (Cond, error)

// parker is the default Cond. Untimed waits park on the runtime semaphore;
// timed or cancellable waits park on a one-slot channel so they can select
// on the timer and the cancel channel as well.
type parker struct {
	sema  opt.Sema
	ch    chan struct{}
	timed bool
}

var parkerPool = sync.Pool{
	New: func() any {
		return &parker{ch: make(chan struct{}, 1)}
	},
}

func newParker() (Cond, error) {
	return parkerPool.Get().(*parker), nil
}

func (p *parker) WaitFor(
	l sync.Locker,
	deadline time.Time,
	cancel <-chan struct{},
	pred func() bool,
) {
	p.timed = !deadline.IsZero() || cancel != nil
	if !p.timed {
		for !pred() {
			l.Unlock()
			p.sema.Acquire()
			l.Lock()
		}
		return
	}

	var expired <-chan time.Time
	if !deadline.IsZero() {
		t := time.NewTimer(time.Until(deadline))
		defer t.Stop()
		expired = t.C
	}
	for !pred() {
		l.Unlock()
		select {
		case <-p.ch:
			l.Lock()
		case <-expired:
			l.Lock()
			return
		case <-cancel:
			l.Lock()
			return
		}
	}
}

func (p *parker) Notify() error {
	if p.timed {
		select {
		case p.ch <- struct{}{}:
		default:
		}
		return nil
	}
	p.sema.Release()
	return nil
}

func (p *parker) Close() {
	// A timed waiter that gave up may leave a token behind; the untimed
	// path always consumes its single permit before pred turns true.
	select {
	case <-p.ch:
	default:
	}
	p.timed = false
	parkerPool.Put(p)
}
