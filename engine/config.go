package engine

import (
	"math"

	"github.com/achilleasa/go-viewshed/adapters"
	"github.com/achilleasa/go-viewshed/bus"
	"github.com/achilleasa/go-viewshed/kernel"
	"github.com/achilleasa/go-viewshed/layer"
	"github.com/achilleasa/go-viewshed/observer"
	"github.com/achilleasa/go-viewshed/runtime"
)

// DefaultEpsilon is spec §6's default horizontal/vertical snapping
// tolerance.
const DefaultEpsilon = 1 / math.Pi

// Config bundles spec §6's viewshed(...) input API plus the substrate
// bindings this in-process engine needs to actually run: a worker pool, a
// ray packet bus, and an optional progress hook and stats sink. Elevation
// ingest and result persistence stay outside Config — they are the
// adapters.LayerReader/LayerWriter concern, wired at the CLI layer.
type Config struct {
	Elevation   *layer.ElevationLayer
	Points      []observer.Point6D
	MaxDistance float64

	// DisableCurvature turns off the Earth-curvature drop term. Curvature
	// is applied by default, matching spec §6's viewshed(..., curvature=true, ...).
	DisableCurvature bool

	// Operator is the aggregation operator; the zero value is kernel.Or,
	// spec §6's default.
	Operator kernel.Operator

	// Epsilon defaults to DefaultEpsilon when zero.
	Epsilon float64

	// TouchedKeys, if non-nil, accumulates every tile key addressed
	// during the run.
	TouchedKeys *TouchedKeys

	// Pool drives tile tasks concurrently. Defaults to a single-worker
	// pool with no retries when nil.
	Pool *runtime.Pool

	// Bus is the accumulator tile tasks emit outgoing ray packets into.
	// Defaults to a freshly allocated bus.Bus when nil.
	Bus adapters.Accumulator[bus.Message]

	// Stats, if non-nil, is populated with per-iteration timing as Run
	// executes.
	Stats *RunStats
}

func (c Config) withDefaults() Config {
	if c.Pool == nil {
		c.Pool = runtime.NewPool(1, 0)
	}
	if c.Bus == nil {
		c.Bus = bus.NewBus(0)
	}
	if c.Epsilon == 0 {
		c.Epsilon = DefaultEpsilon
	}
	return c
}
