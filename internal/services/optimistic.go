package services

import "github.com/akaliniv/tetatet/internal/cache"

// snapshot is the pre-mutation state of one cache entry, captured before the
// provisional value is applied and discarded once the mutation resolves.
type snapshot struct {
	key     cache.Key
	value   any
	existed bool
}

// applyOptimistic runs the first half of the mutation protocol on one key:
// cancel any in-flight fetch (so a late stale response cannot race the
// provisional value), snapshot the current entry, and write the provisional
// value produced by synthesize from the current state.
//
// The returned restore puts the entry back exactly as it was, including
// "no entry at all". After restore, retrying the mutation is safe: no
// provisional state survives the failed attempt.
func applyOptimistic(c *cache.Cache, key cache.Key, synthesize func(current any, ok bool) any) (restore func()) {
	c.Cancel(key)

	current, ok := c.Get(key)
	snap := snapshot{key: key, value: current, existed: ok}

	c.Write(key, synthesize(current, ok))

	return func() {
		if snap.existed {
			c.Write(snap.key, snap.value)
		} else {
			c.Drop(snap.key)
		}
	}
}
