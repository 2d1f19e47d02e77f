// Package expiry hides ephemeral messages once their time-to-live elapses.
//
// A single scheduler tracks every active countdown in a min-heap keyed by
// expiry instant, instead of one timer per message, so teardown and memory
// stay bounded no matter how many ephemeral messages are on screen.
package expiry

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/akaliniv/tetatet/internal/logging"
)

// tickResolution is the countdown granularity. Elapsed items are detected on
// the next tick after their deadline.
const tickResolution = time.Second

type item struct {
	id string
	at time.Time
}

type itemHeap []item

func (h itemHeap) Len() int            { return len(h) }
func (h itemHeap) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h itemHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *itemHeap) Push(x any)         { *h = append(*h, x.(item)) }
func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// Scheduler tracks per-message expiry instants and reports elapsed ones.
// An elapsed message is only hidden from rendering; the cached data keeps it
// until a later refetch naturally drops it.
type Scheduler struct {
	mu      sync.Mutex
	heap    itemHeap
	tracked map[string]struct{}
	expired map[string]struct{}

	onExpire func(id string)
	now      func() time.Time

	log       logging.Logger
	done      chan struct{}
	closeOnce sync.Once
}

// NewScheduler creates a scheduler and starts its tick loop. onExpire may be
// nil; when set, it is called once per message, outside the scheduler lock.
func NewScheduler(onExpire func(id string), log logging.Logger) *Scheduler {
	s := &Scheduler{
		tracked:  make(map[string]struct{}),
		expired:  make(map[string]struct{}),
		onExpire: onExpire,
		now:      time.Now,
		log:      log,
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Scheduler) run() {
	ticker := time.NewTicker(tickResolution)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(s.now())
		case <-s.done:
			return
		}
	}
}

// Track registers a countdown for id ending at the given instant. Tracking an
// already-elapsed instant marks the id expired on the next sweep. Re-tracking
// an id that already expired is a no-op, so refetched collections containing
// a still-not-purged message do not resurrect it.
func (s *Scheduler) Track(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.expired[id]; done {
		return
	}
	if _, ok := s.tracked[id]; ok {
		return
	}
	s.tracked[id] = struct{}{}
	heap.Push(&s.heap, item{id: id, at: at})
}

// Forget tears down the countdown for id, e.g. when the message was deleted
// or the owning view went away. The heap entry is dropped lazily on sweep.
func (s *Scheduler) Forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tracked, id)
	delete(s.expired, id)
}

// Expired reports whether id's countdown has elapsed.
func (s *Scheduler) Expired(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.expired[id]
	return ok
}

// sweep pops every due item and fires callbacks for the still-tracked ones.
func (s *Scheduler) sweep(now time.Time) {
	s.mu.Lock()
	var due []string
	for s.heap.Len() > 0 && !s.heap[0].at.After(now) {
		it := heap.Pop(&s.heap).(item)
		if _, ok := s.tracked[it.id]; !ok {
			continue // torn down while queued
		}
		delete(s.tracked, it.id)
		s.expired[it.id] = struct{}{}
		due = append(due, it.id)
	}
	s.mu.Unlock()

	for _, id := range due {
		if s.log != nil {
			s.log.Debug(context.Background(), "message expired", "id", id)
		}
		if s.onExpire != nil {
			s.onExpire(id)
		}
	}
}

// Close stops the tick loop. Track/Forget/Expired stay safe to call after
// Close but no further expiries fire.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
