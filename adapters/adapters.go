// Package adapters declares the abstract collaborator interfaces spec §4.F
// leaves outside the engine's scope: the partitioned-dataset runtime,
// broadcast variables, the ray packet accumulator, and layer I/O. The
// engine's iteration driver depends directly on Accumulator (via package
// bus) and, at its boundaries, on LayerReader/LayerWriter; PartitionedDataset
// and Broadcast describe the substrate shape a distributed backend would
// need to slot in, and package runtime supplies local, in-process
// implementations of all four so the whole contract is exercised even
// though this engine keeps its working set resident in memory rather than
// routing tile iteration through PartitionedDataset itself.
package adapters

import (
	"context"

	"github.com/achilleasa/go-viewshed/layer"
)

// PartitionedDataset models a distributed, partitioned collection of
// key/value pairs — the substrate's stand-in for an RDD/Dataset. The
// engine in this repository does not use it; its tiles stay in plain maps.
type PartitionedDataset[K comparable, V any] interface {
	// Map applies fn to every element, returning a new dataset of the
	// same partitioning shape.
	Map(fn func(K, V) (K, V)) PartitionedDataset[K, V]

	// FlatMap applies fn to every element, flattening the results into
	// a new dataset.
	FlatMap(fn func(K, V) []V) PartitionedDataset[K, V]

	// First returns an arbitrary element, or ok=false if the dataset is
	// empty.
	First() (K, V, bool)

	// Persist hints that the dataset should be materialized and cached
	// at the given level (an opaque, substrate-defined identifier, e.g.
	// "memory" or "disk") until Unpersist is called.
	Persist(level string) PartitionedDataset[K, V]

	// Unpersist releases any resources reserved by a prior Persist.
	Unpersist()

	// Count returns the number of elements in the dataset. May trigger
	// evaluation on lazy substrates.
	Count() int

	// Context returns the substrate context the dataset was created
	// from, for substrates that thread cancellation or configuration
	// through it.
	Context() context.Context

	// Collect materializes every element client-side. It is a
	// collective operation, not meant for use inside a per-tile task.
	Collect() []V
}

// Broadcast is a one-writer, many-reader read-only snapshot of a value,
// consistent for the duration of one iteration — spec §4.F.
type Broadcast[T any] interface {
	// Value returns the broadcast payload. Safe for concurrent use by
	// many readers; never mutated after the broadcast is published.
	Value() T
}

// Accumulator is a concurrency-safe, commutative aggregator of elements
// contributed by many concurrent tasks — the abstract shape package bus
// implements concretely for Message. E is the aggregated payload type.
type Accumulator[E any] interface {
	// Add contributes one element. Safe for concurrent use; may be
	// called more than once for the same logical contribution under
	// task retries, and implementations must tolerate that.
	Add(e E)

	// Value returns every element added since the last Reset.
	Value() []E

	// Reset clears the accumulator. Called only by the driver between
	// iterations, never by a task.
	Reset()

	// Merge folds another accumulator's contents into this one, needed
	// when the substrate partitions accumulator state across workers.
	Merge(other Accumulator[E])
}

// LayerReader loads a partitioned raster layer and its metadata from
// whatever storage the substrate uses — spec §4.F: "used only at
// boundaries."
type LayerReader interface {
	ReadMetadata(ctx context.Context) (layer.Metadata, error)
	ReadTile(ctx context.Context, key layer.TileKey) (*layer.ElevationTile, error)
}

// LayerWriter persists a partitioned raster layer and its metadata.
type LayerWriter interface {
	WriteMetadata(ctx context.Context, meta layer.Metadata) error
	WriteTile(ctx context.Context, key layer.TileKey, tile *layer.VisibilityTile) error
}
