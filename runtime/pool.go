package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/go-viewshed/layer"
)

// Task is one tile's unit of work for an iteration. Run must be safe to
// invoke more than once for the same Key: the engine relies on the kernel's
// determinism (spec §4.C) and the aggregation operator's idempotence (spec
// §5) to make retries safe.
type Task struct {
	Key layer.TileKey
	Run func(ctx context.Context) error
}

// WorkerStat is a worker's cumulative processing history, printed by the
// CLI's "workers" command the way the teacher's ListDevices prints each
// OpenCL device's name/type/speed estimate.
type WorkerStat struct {
	ID             int
	TilesProcessed int
	TotalTime      time.Duration
}

// Pool is a fixed-size goroutine worker pool that drives one iteration's
// tile tasks to completion, generalizing the teacher's
// tracer/opencl/cl_tracer.go worker-loop idiom (a goroutine reading off a
// request channel until a closeChan fires) from "one worker per OpenCL
// device" to "one worker per configured pool slot operating on CPU tiles".
type Pool struct {
	workerCount int
	// MaxRetries bounds how many times a task returning an
	// ErrSubstrateFailure-wrapped error is retried before the whole
	// iteration aborts — spec §7.
	MaxRetries int

	scheduler *TileScheduler

	mu      sync.Mutex
	stats   []WorkerStat
	timings []WorkerTiming
}

// NewPool allocates a pool of workerCount goroutines. maxRetries <= 0
// disables retries (a single attempt per task).
func NewPool(workerCount, maxRetries int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	stats := make([]WorkerStat, workerCount)
	for i := range stats {
		stats[i] = WorkerStat{ID: i}
	}
	return &Pool{
		workerCount: workerCount,
		MaxRetries:  maxRetries,
		scheduler:   NewTileScheduler(),
		stats:       stats,
	}
}

// WorkerCount returns the number of worker goroutines the pool runs.
func (p *Pool) WorkerCount() int {
	return p.workerCount
}

// Stats returns a snapshot of each worker's cumulative tile count and time.
func (p *Pool) Stats() []WorkerStat {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]WorkerStat, len(p.stats))
	copy(out, p.stats)
	return out
}

// RunIteration processes every task concurrently across the pool's workers
// and blocks until they have all returned — the iteration barrier spec §5
// requires ("workers may block only on the substrate's ... primitives";
// between iterations "these are the only synchronization barriers"),
// mirroring the teacher's sync.WaitGroup drain before a frame is considered
// complete. The tile keys are assigned to workers via TileScheduler, using
// the previous call's per-worker timings to rebalance load.
//
// RunIteration returns the first non-retryable error encountered, after
// which remaining in-flight tasks are allowed to finish but no further
// tasks are dispatched.
func (p *Pool) RunIteration(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	keys := make([]layer.TileKey, len(tasks))
	byKey := make(map[layer.TileKey]Task, len(tasks))
	for i, task := range tasks {
		keys[i] = task.Key
		byKey[task.Key] = task
	}

	p.mu.Lock()
	timings := p.timings
	p.mu.Unlock()

	buckets := p.scheduler.Schedule(p.workerCount, keys, timings)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	newTimings := make([]WorkerTiming, p.workerCount)
	for workerID, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		wg.Add(1)
		go func(workerID int, bucket []layer.TileKey) {
			defer wg.Done()
			start := time.Now()
			processed := 0
			for _, key := range bucket {
				select {
				case <-runCtx.Done():
					return
				default:
				}

				task := byKey[key]
				if err := p.runWithRetries(runCtx, task); err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("tile %s: %w", key, err)
						cancel()
					})
					return
				}
				processed++
			}
			elapsed := time.Since(start)

			p.mu.Lock()
			p.stats[workerID].TilesProcessed += processed
			p.stats[workerID].TotalTime += elapsed
			newTimings[workerID] = WorkerTiming{TileCount: processed, Elapsed: elapsed}
			p.mu.Unlock()
		}(workerID, bucket)
	}
	wg.Wait()

	p.mu.Lock()
	p.timings = newTimings
	p.mu.Unlock()

	return firstErr
}

// runWithRetries invokes task.Run, retrying while the returned error wraps
// ErrSubstrateFailure, up to p.MaxRetries additional attempts. Any other
// error aborts immediately without retrying — spec §7: "does not retry
// InvalidLayer/ObserverOutOfLayout".
func (p *Pool) runWithRetries(ctx context.Context, task Task) error {
	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		err = task.Run(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSubstrateFailure) {
			return err
		}
	}
	return err
}
