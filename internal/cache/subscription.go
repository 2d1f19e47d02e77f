package cache

import (
	"context"
	"time"
)

// Subscription keeps one key passively fresh: while it lives, the fetcher is
// re-invoked on a fixed interval regardless of staleness. Used for keys that
// lack a push channel (friends list, presence, unread counts, pending and
// outgoing friend requests).
type Subscription struct {
	updates chan any
	stop    context.CancelFunc
	done    chan struct{}
}

// Subscribe performs an initial read and then refetches every
// opts.RefetchEvery until Stop is called or ctx ends. Each landed value is
// offered on Updates; a slow consumer only ever misses intermediate values,
// never the latest one pending delivery.
func (c *Cache) Subscribe(ctx context.Context, key Key, fetch FetchFunc, opts Options) *Subscription {
	sctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		updates: make(chan any, 1),
		stop:    cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(s.updates)

		if v, err := c.Read(sctx, key, fetch, opts); err == nil {
			s.offer(v)
		}

		interval := opts.RefetchEvery
		if interval <= 0 {
			<-sctx.Done()
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				v, err := c.doFetch(key, fetch, opts)
				if err != nil {
					if c.log != nil {
						c.log.Warn(sctx, "passive refresh failed", "key", key.String(), "error", err)
					}
					continue
				}
				s.offer(v)
			case <-sctx.Done():
				return
			}
		}
	}()

	return s
}

// offer delivers coalescing: when the consumer lags, the stale undelivered
// value is replaced by the newer one.
func (s *Subscription) offer(v any) {
	select {
	case s.updates <- v:
	default:
		select {
		case <-s.updates:
		default:
		}
		select {
		case s.updates <- v:
		default:
		}
	}
}

// Updates yields freshly landed values. The channel closes when the
// subscription stops.
func (s *Subscription) Updates() <-chan any {
	return s.updates
}

// Stop ends the passive refresh loop and waits for it to wind down.
func (s *Subscription) Stop() {
	s.stop()
	<-s.done
}
