package runtime

import (
	"math"
	"sync"
	"time"

	"github.com/achilleasa/go-viewshed/layer"
)

// WorkerTiming reports how many tiles a worker processed and how long it
// took, feeding the next call to TileScheduler.Schedule.
type WorkerTiming struct {
	TileCount int
	Elapsed   time.Duration
}

// TileScheduler splits a dataset's tile keys across Pool workers, adapted
// from the teacher's tracer.BlockScheduler (tracer/scheduler.go): instead
// of splitting a frame's rows across tracers by a static speed estimate,
// it splits tile keys across workers by per-worker historical iteration
// throughput, rebalancing between iterations the same way the teacher's
// perfectScheduler rebalances between frames using the previous frame's
// render time.
type TileScheduler struct {
	mu         sync.Mutex
	lastWorker int // workerCount of the previous call; recorded, not read
}

// NewTileScheduler returns a scheduler. It keeps no timing history of its
// own: each Schedule call rebalances only from the timings passed to it.
func NewTileScheduler() *TileScheduler {
	return &TileScheduler{}
}

// Schedule partitions keys into workerCount buckets. timings reports the
// previous iteration's throughput per worker. Nil timings, timings whose
// length is not workerCount, or any entry with a zero tile count or zero
// elapsed time fall back to an even, round-robin split — mirroring
// perfectScheduler's "first call behaves like the naive scheduler" behavior.
func (s *TileScheduler) Schedule(workerCount int, keys []layer.TileKey, timings []WorkerTiming) [][]layer.TileKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	if workerCount <= 0 {
		return nil
	}

	buckets := make([][]layer.TileKey, workerCount)

	if !hasUsableTimings(timings, workerCount) {
		for i, key := range keys {
			w := i % workerCount
			buckets[w] = append(buckets[w], key)
		}
		s.lastWorker = workerCount
		return buckets
	}

	rate := make([]float64, workerCount)
	var total float64
	for i, t := range timings {
		r := float64(t.TileCount) / t.Elapsed.Seconds()
		rate[i] = r
		total += r
	}

	counts := make([]int, workerCount)
	assigned := 0
	for i, r := range rate {
		share := int(math.Max(0, math.Floor(r/total*float64(len(keys)))))
		counts[i] = share
		assigned += share
	}
	// Distribute any remainder (rounding loss) onto the fastest worker,
	// same as perfectScheduler appending leftover rows to tracer 0.
	if remainder := len(keys) - assigned; remainder > 0 {
		fastest := 0
		for i := 1; i < len(rate); i++ {
			if rate[i] > rate[fastest] {
				fastest = i
			}
		}
		counts[fastest] += remainder
	}

	idx := 0
	for w, c := range counts {
		buckets[w] = append(buckets[w], keys[idx:idx+c]...)
		idx += c
	}
	s.lastWorker = workerCount
	return buckets
}

func hasUsableTimings(timings []WorkerTiming, workerCount int) bool {
	if len(timings) != workerCount {
		return false
	}
	for _, t := range timings {
		if t.TileCount <= 0 || t.Elapsed <= 0 {
			return false
		}
	}
	return true
}
