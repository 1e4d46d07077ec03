package runtime

import (
	"context"

	"github.com/achilleasa/go-viewshed/adapters"
)

// LocalDataset is the local, single-process implementation of
// adapters.PartitionedDataset[K,V]: an in-memory map with no real
// partitioning, persistence, or laziness — every operation executes
// eagerly and synchronously. The engine does not use it; it is a local
// implementation of the adapters contract.
type LocalDataset[K comparable, V any] struct {
	ctx  context.Context
	data map[K]V
}

// NewLocalDataset builds a dataset from an existing map. The map is copied
// so mutating the source afterward has no effect on the dataset.
func NewLocalDataset[K comparable, V any](ctx context.Context, data map[K]V) *LocalDataset[K, V] {
	cp := make(map[K]V, len(data))
	for k, v := range data {
		cp[k] = v
	}
	return &LocalDataset[K, V]{ctx: ctx, data: cp}
}

func (d *LocalDataset[K, V]) Map(fn func(K, V) (K, V)) adapters.PartitionedDataset[K, V] {
	out := make(map[K]V, len(d.data))
	for k, v := range d.data {
		nk, nv := fn(k, v)
		out[nk] = nv
	}
	return &LocalDataset[K, V]{ctx: d.ctx, data: out}
}

// FlatMap keeps the source key for every value fn returns for that key. A
// map-backed dataset cannot mint new keys for the extra values a real
// flat-map would fan out, so when fn returns more than one value for a
// given key, only the last one survives under that key — callers whose fn
// returns at most one value per key (the common case) see ordinary map
// semantics.
func (d *LocalDataset[K, V]) FlatMap(fn func(K, V) []V) adapters.PartitionedDataset[K, V] {
	out := make(map[K]V, len(d.data))
	for k, v := range d.data {
		for _, nv := range fn(k, v) {
			out[k] = nv
		}
	}
	return &LocalDataset[K, V]{ctx: d.ctx, data: out}
}

func (d *LocalDataset[K, V]) First() (K, V, bool) {
	for k, v := range d.data {
		return k, v, true
	}
	var zk K
	var zv V
	return zk, zv, false
}

func (d *LocalDataset[K, V]) Persist(level string) adapters.PartitionedDataset[K, V] {
	// No-op: the whole dataset is already resident in process memory.
	return d
}

func (d *LocalDataset[K, V]) Unpersist() {}

func (d *LocalDataset[K, V]) Count() int {
	return len(d.data)
}

func (d *LocalDataset[K, V]) Context() context.Context {
	return d.ctx
}

func (d *LocalDataset[K, V]) Collect() []V {
	out := make([]V, 0, len(d.data))
	for _, v := range d.data {
		out = append(out, v)
	}
	return out
}

// Entries exposes the underlying key/value pairs directly, without
// building a Collect slice. Not part of adapters.PartitionedDataset.
func (d *LocalDataset[K, V]) Entries() map[K]V {
	return d.data
}

var _ adapters.PartitionedDataset[int, int] = (*LocalDataset[int, int])(nil)

// LocalBroadcast is the local implementation of adapters.Broadcast[T]: a
// value published once and read many times, with no actual network
// distribution.
type LocalBroadcast[T any] struct {
	value T
}

// NewLocalBroadcast publishes value for the lifetime of the broadcast.
func NewLocalBroadcast[T any](value T) *LocalBroadcast[T] {
	return &LocalBroadcast[T]{value: value}
}

func (b *LocalBroadcast[T]) Value() T {
	return b.value
}

var _ adapters.Broadcast[int] = (*LocalBroadcast[int])(nil)
