package idmap

import "sync"

// shardCount is fixed rather than GOMAXPROCS-derived (unlike the adjacency
// compressor's lock table, §5): id assignment happens once per original id
// for the lifetime of a build, so shard contention is far lower than the
// per-edge-batch contention pkg/adjacency is tuned for.
const shardCount = 64

// shardedDedupMap is the lazy-dedup construction strategy of spec §4.1: a
// concurrent map from original id to internal id, sharded so unrelated
// original ids never contend on the same lock, with an atomic add that
// distinguishes "freshly assigned" from "already present" in one call.
//
// Grounded on other_examples' dgraph bulk mapper (shardState, one mutex
// per shard guarding a plain Go map) and on this package's own
// growingBitSet for the "one mutex per independent unit of state" shape.
type shardedDedupMap struct {
	shards  [shardCount]dedupShard
	counter *int64counter
}

type dedupShard struct {
	mu sync.Mutex
	m  map[int64]int64
}

func newShardedDedupMap(counter *int64counter) *shardedDedupMap {
	d := &shardedDedupMap{counter: counter}
	for i := range d.shards {
		d.shards[i].m = make(map[int64]int64)
	}
	return d
}

// add returns a signed encoding of the result (spec §4.1, "Deduplication
// (lazy variant)"): a non-negative return v means original was unseen and
// was just assigned internal id v; a negative return v means original was
// already present, at internal id -(v+1). This lets the caller skip a
// second map lookup to learn which case occurred.
func (d *shardedDedupMap) add(original int64) int64 {
	shard := &d.shards[uint64(original)%shardCount]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if existing, ok := shard.m[original]; ok {
		return -(existing + 1)
	}
	id := d.counter.next()
	shard.m[original] = id
	return id
}

// int64counter is a tiny atomic monotonic counter. It is its own type
// (rather than a bare atomic.Int64 field) so Builder can share one
// counter instance between shardedDedupMap and any other consumer that
// needs the same dense id sequence.
type int64counter struct {
	mu  sync.Mutex
	cur int64
}

func (c *int64counter) next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.cur
	c.cur++
	return id
}

func (c *int64counter) load() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}
