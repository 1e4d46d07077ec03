package bus

import (
	"sync"
	"sync/atomic"

	"github.com/achilleasa/go-viewshed/adapters"
)

// defaultShardCount is used when NewBus is called with n <= 0. It mirrors a
// modest worker pool size; the exact value does not affect correctness,
// only contention under concurrent Add calls.
const defaultShardCount = 16

// shard is a mutex-guarded slice of messages, generalizing the teacher's
// "one sync.Mutex per opencl tracer" idiom (tracer/opencl/cl_tracer.go) into
// "one sync.Mutex per bus shard" so that concurrent tile tasks contend on
// disjoint locks instead of a single global one.
type shard struct {
	sync.Mutex
	messages []Message
}

// Bus is the concrete, in-process implementation of the accumulator
// contract spec §4.D describes abstractly as adapters.Accumulator[Message].
// It is safe for concurrent use by many tile tasks and tolerates duplicate
// Add calls from retried tasks — it never deduplicates, leaving that to the
// idempotent aggregation operator applied downstream in the kernel.
type Bus struct {
	shards []*shard
	next   uint64
}

// NewBus allocates a Bus with shardCount independent shards. shardCount <= 0
// falls back to defaultShardCount.
func NewBus(shardCount int) *Bus {
	if shardCount <= 0 {
		shardCount = defaultShardCount
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{}
	}
	return &Bus{shards: shards}
}

// Add appends m to the bus. Safe for concurrent use.
func (b *Bus) Add(m Message) {
	idx := atomic.AddUint64(&b.next, 1) % uint64(len(b.shards))
	sh := b.shards[idx]
	sh.Lock()
	sh.messages = append(sh.messages, m)
	sh.Unlock()
}

// Value returns every message added since the last Reset. The returned
// slice is a snapshot; mutating it does not affect the bus. Order is
// unspecified — spec §4.D: "need not preserve insertion order."
func (b *Bus) Value() []Message {
	total := 0
	for _, sh := range b.shards {
		sh.Lock()
		total += len(sh.messages)
		sh.Unlock()
	}
	out := make([]Message, 0, total)
	for _, sh := range b.shards {
		sh.Lock()
		out = append(out, sh.messages...)
		sh.Unlock()
	}
	return out
}

// Reset clears every shard. Called only by the driver between iterations.
func (b *Bus) Reset() {
	for _, sh := range b.shards {
		sh.Lock()
		sh.messages = sh.messages[:0]
		sh.Unlock()
	}
}

// Merge folds other's contents into b, required when the underlying
// substrate partitions accumulator state across independent workers (spec
// §4.D). other is left unchanged. Accepting the adapters.Accumulator
// interface rather than *Bus lets Bus satisfy adapters.Accumulator[Message]
// while still allowing any other conforming implementation to be merged in.
func (b *Bus) Merge(other adapters.Accumulator[Message]) {
	if other == nil {
		return
	}
	for _, msg := range other.Value() {
		b.Add(msg)
	}
}

var _ adapters.Accumulator[Message] = (*Bus)(nil)

// Len reports the total number of buffered messages across all shards.
// Convenience for tests and progress reporting; not part of the accumulator
// contract itself.
func (b *Bus) Len() int {
	total := 0
	for _, sh := range b.shards {
		sh.Lock()
		total += len(sh.messages)
		sh.Unlock()
	}
	return total
}
