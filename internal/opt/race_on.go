//go:build race

package opt

import (
	"sync"
)

// Sema under the race detector is a counting semaphore on sync.Mutex and
// sync.Cond. The runtime semaphore carries no happens-before annotations,
// so a release/acquire pair through it would be reported as a race.
type Sema struct {
	mu sync.Mutex
	c  *sync.Cond
	n  uint32
}

func (s *Sema) Acquire() {
	s.mu.Lock()
	if s.c == nil {
		s.c = sync.NewCond(&s.mu)
	}
	for s.n == 0 {
		s.c.Wait()
	}
	s.n--
	s.mu.Unlock()
}

func (s *Sema) Release() {
	s.mu.Lock()
	if s.c == nil {
		s.c = sync.NewCond(&s.mu)
	}
	s.n++
	s.c.Signal()
	s.mu.Unlock()
}
