package engine

import (
	"time"

	"github.com/achilleasa/go-viewshed/runtime"
)

// IterationStats records one pass of the driver loop, the per-iteration
// analog of the teacher's per-frame TracerStat (renderer/stats.go).
type IterationStats struct {
	Index        int
	MessagesIn   int
	TilesTouched int
	Elapsed      time.Duration
}

// RunStats accumulates the full run's history for CLI reporting via
// tablewriter — the direct generalization of renderer.FrameStats from "one
// frame, N tracers" to "one run, N iterations, N pool workers".
type RunStats struct {
	Iterations  []IterationStats
	TotalTime   time.Duration
	WorkerStats []runtime.WorkerStat
}

func (s *RunStats) recordIteration(it IterationStats) {
	if s == nil {
		return
	}
	s.Iterations = append(s.Iterations, it)
}
