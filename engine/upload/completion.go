package upload

import (
	"sync"
	"time"

	"github.com/tectonic3d/tectonic/engine/core"
)

// CompletionSignal is the synchronization point the producer blocks on
// until the worker has drained the queue. Every notification starts a new
// drain generation and wakes all waiters by closing the generation's
// channel; waiters capture the channel before testing their predicate, so
// a notification firing between test and wait can never be missed.
type CompletionSignal struct {
	mu         sync.Mutex
	generation uint64
	notify     chan struct{}
}

func NewCompletionSignal() *CompletionSignal {
	return &CompletionSignal{
		notify: make(chan struct{}),
	}
}

// NotifyDrained records a completed drain pass and wakes all waiters.
// Called by the worker after each batch that leaves the queue empty.
func (s *CompletionSignal) NotifyDrained() {
	s.mu.Lock()
	s.generation++
	close(s.notify)
	s.notify = make(chan struct{})
	s.mu.Unlock()
}

// Generation returns the number of drain passes notified so far.
func (s *CompletionSignal) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// WaitForDrain blocks until pending reports no outstanding work, or until
// the timeout elapses. A timeout <= 0 waits indefinitely. The pending
// predicate is re-evaluated against current state after every wakeup, so
// submissions racing a drain keep the waiter blocked rather than waking it
// early.
func (s *CompletionSignal) WaitForDrain(timeout time.Duration, pending func() uint64) error {
	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	for {
		s.mu.Lock()
		wake := s.notify
		s.mu.Unlock()

		if pending() == 0 {
			return nil
		}

		select {
		case <-wake:
		case <-expired:
			return core.ErrDrainTimeout
		}
	}
}
