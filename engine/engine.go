// Package engine implements the §4.E Iteration Driver: it bootstraps
// observers, repeatedly applies the R2 kernel across every touched tile via
// the ray packet bus, detects quiescence, and produces the final
// visibility layer.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	busp "github.com/achilleasa/go-viewshed/bus"
	"github.com/achilleasa/go-viewshed/geodesy"
	"github.com/achilleasa/go-viewshed/kernel"
	"github.com/achilleasa/go-viewshed/layer"
	"github.com/achilleasa/go-viewshed/observer"
	"github.com/achilleasa/go-viewshed/runtime"
)

// orderedDirections is the fixed N, E, S, W processing order spec §4.E's
// tie-breaking rule requires within a single tile task.
var orderedDirections = []kernel.Direction{kernel.FromNorth, kernel.FromEast, kernel.FromSouth, kernel.FromWest}

// Run implements spec §6's viewshed(...) entry point: it bootstraps
// observers into their host tiles, drains the ray packet bus one iteration
// at a time until quiescent, and returns the resulting visibility layer.
func Run(ctx context.Context, cfg Config) (*layer.VisibilityLayer, error) {
	cfg = cfg.withDefaults()
	runStart := time.Now()

	if cfg.Elevation == nil || !cfg.Elevation.Metadata.Bounds.Valid() {
		return nil, fmt.Errorf("%w: elevation layer has no well-formed bounds", ErrInvalidLayer)
	}

	resolution, err := geodesy.Resolution(cfg.Elevation.Metadata)
	if err != nil {
		return nil, err
	}

	tables, err := observer.Resolve(cfg.Elevation.Metadata, cfg.Elevation, cfg.Points)
	if err != nil {
		return nil, err
	}

	visTiles := make(map[layer.TileKey]*layer.VisibilityTile, len(cfg.Elevation.Tiles))
	for key, elevTile := range cfg.Elevation.Tiles {
		visTiles[key] = layer.NewVisibilityTile(elevTile.Cols, elevTile.Rows)
	}

	sweepParams := sweepParams{
		resolution:  resolution,
		maxDistance: cfg.MaxDistance,
		curvature:   !cfg.DisableCurvature,
		operator:    cfg.Operator,
		epsilon:     cfg.Epsilon,
	}

	if err := seedIteration(ctx, cfg, tables, visTiles, sweepParams); err != nil {
		return nil, err
	}

	for iteration := 1; ; iteration++ {
		iterStart := time.Now()

		msgs := cfg.Bus.Value()
		cfg.Bus.Reset()
		if len(msgs) == 0 {
			break
		}

		touched, err := loopIteration(ctx, cfg, tables, visTiles, sweepParams, msgs)
		if err != nil {
			return nil, err
		}

		cfg.Stats.recordIteration(IterationStats{
			Index:        iteration,
			MessagesIn:   len(msgs),
			TilesTouched: touched,
			Elapsed:      time.Since(iterStart),
		})
	}

	if cfg.Stats != nil {
		cfg.Stats.TotalTime = time.Since(runStart)
		cfg.Stats.WorkerStats = cfg.Pool.Stats()
	}

	return &layer.VisibilityLayer{
		Metadata: layer.Metadata{
			Layout:   cfg.Elevation.Metadata.Layout,
			CRS:      cfg.Elevation.Metadata.CRS,
			Extent:   cfg.Elevation.Metadata.Extent,
			Bounds:   cfg.Elevation.Metadata.Bounds,
			CellType: layer.Int16NoData,
		},
		Tiles: visTiles,
	}, nil
}

// sweepParams bundles the scalar kernel parameters that stay constant
// across every tile task in a run.
type sweepParams struct {
	resolution  float64
	maxDistance float64
	curvature   bool
	operator    kernel.Operator
	epsilon     float64
}

// seedIteration implements §4.E's "seed" phase: for every tile hosting at
// least one observer, run the kernel with direction = FromInside once per
// observer, in ascending index order.
func seedIteration(ctx context.Context, cfg Config, tables *observer.Tables, visTiles map[layer.TileKey]*layer.VisibilityTile, params sweepParams) error {
	tasks := make([]runtime.Task, 0, len(tables.ByKey))
	for key, infos := range tables.ByKey {
		key := key
		observers := sortByIndex(infos)
		tasks = append(tasks, runtime.Task{
			Key: key,
			Run: func(ctx context.Context) error {
				elevTile := cfg.Elevation.Tiles[key]
				visTile := visTiles[key]
				for _, info := range observers {
					height, ok := tables.EffectiveHeight(info.Index)
					if !ok {
						return fmt.Errorf("%w: observer %d", ErrObserverUnknownIndex, info.Index)
					}
					out := kernel.Run(kernel.Input{
						Elevation:       elevTile,
						Visibility:      visTile,
						StartCol:        info.Col,
						StartRow:        info.Row,
						ViewHeight:      height,
						Direction:       kernel.FromInside,
						Resolution:      params.resolution,
						MaxDistance:     params.maxDistance,
						Curvature:       params.curvature,
						Altitude:        info.Alt,
						Operator:        params.operator,
						CameraDirection: info.Angle,
						CameraFOV:       info.FOV,
						Epsilon:         params.epsilon,
					})
					emitBundle(cfg, key, info.Index, out)
				}
				cfg.TouchedKeys.add(key)
				return nil
			},
		})
	}
	return cfg.Pool.RunIteration(ctx, tasks)
}

// loopIteration implements §4.E's "loop" phase for one drained batch of
// messages: group by target tile and causal observer, translate each
// observer's origin into the target tile's local frame, and re-run the
// kernel with the incoming rays for each of the four directions in N,E,S,W
// order. Returns the number of distinct tiles processed.
func loopIteration(ctx context.Context, cfg Config, tables *observer.Tables, visTiles map[layer.TileKey]*layer.VisibilityTile, params sweepParams, msgs []busp.Message) (int, error) {
	changes := groupMessages(msgs)

	tasks := make([]runtime.Task, 0, len(changes))
	for key, byObserver := range changes {
		key := key
		byObserver := byObserver
		elevTile, ok := cfg.Elevation.Tiles[key]
		if !ok {
			// A message addressed a key outside the layer's bounds;
			// the seed/loop phases never emit one (targets are
			// filtered against Bounds before Add), so this can only
			// happen if a caller hands the engine a partial tile
			// set. Drop it rather than fail the whole run.
			continue
		}
		visTile := visTiles[key]

		tasks = append(tasks, runtime.Task{
			Key: key,
			Run: func(ctx context.Context) error {
				for _, obsIndex := range sortedIntKeys(byObserver) {
					info, ok := tables.ByIndex[obsIndex]
					if !ok {
						return fmt.Errorf("%w: observer %d", ErrObserverUnknownIndex, obsIndex)
					}
					height, ok := tables.EffectiveHeight(obsIndex)
					if !ok {
						return fmt.Errorf("%w: observer %d", ErrObserverUnknownIndex, obsIndex)
					}

					startCol := (info.Key.Col-key.Col)*elevTile.Cols + info.Col
					startRow := (info.Key.Row-key.Row)*elevTile.Rows + info.Row

					for _, dir := range orderedDirections {
						rays := byObserver[obsIndex][dir]
						if len(rays) == 0 {
							continue
						}
						sort.Slice(rays, func(i, j int) bool { return rays[i].Theta < rays[j].Theta })

						out := kernel.Run(kernel.Input{
							Elevation:       elevTile,
							Visibility:      visTile,
							StartCol:        startCol,
							StartRow:        startRow,
							ViewHeight:      height,
							Direction:       dir,
							Rays:            rays,
							Resolution:      params.resolution,
							MaxDistance:     params.maxDistance,
							Curvature:       params.curvature,
							Altitude:        info.Alt,
							Operator:        params.operator,
							CameraDirection: info.Angle,
							CameraFOV:       info.FOV,
							Epsilon:         params.epsilon,
						})
						emitBundle(cfg, key, obsIndex, out)
					}
				}
				cfg.TouchedKeys.add(key)
				return nil
			},
		})
	}

	if err := cfg.Pool.RunIteration(ctx, tasks); err != nil {
		return 0, err
	}
	return len(tasks), nil
}

// emitBundle addresses each ray bundle produced by a kernel invocation to
// its neighbor tile and adds it to the bus, dropping bundles that would
// target a key outside the layer's bounds — such a ray has left the
// dataset entirely and has nothing left to absorb it.
func emitBundle(cfg Config, from layer.TileKey, observerIndex int, out kernel.Output) {
	for dir, rays := range out.Bundle {
		target := neighborForEntryTag(from, dir)
		if !cfg.Elevation.Metadata.Bounds.Contains(target) {
			continue
		}
		cfg.Bus.Add(busp.Message{
			TargetKey:           target,
			CausalObserverIndex: observerIndex,
			Direction:           dir,
			Rays:                rays,
		})
	}
}

// neighborForEntryTag returns the tile key of the neighbor across the side
// a ray bundle tagged dir would enter from — the inverse of the exit side
// the kernel computed it from (kernel.entryDirectionFor's round trip: a ray
// exiting east is tagged FromWest, meaning its target lies directly east).
func neighborForEntryTag(from layer.TileKey, dir kernel.Direction) layer.TileKey {
	switch dir {
	case kernel.FromNorth:
		return layer.TileKey{Col: from.Col, Row: from.Row + 1}
	case kernel.FromSouth:
		return layer.TileKey{Col: from.Col, Row: from.Row - 1}
	case kernel.FromWest:
		return layer.TileKey{Col: from.Col + 1, Row: from.Row}
	case kernel.FromEast:
		return layer.TileKey{Col: from.Col - 1, Row: from.Row}
	default:
		return from
	}
}

// groupMessages folds a drained batch of bus messages into
// {targetKey -> {causalObserverIndex -> {direction -> rays}}}, concatenating
// rays from any duplicate messages a retried task may have re-emitted.
// Duplicates are kept, not removed: the kernel sweeps a repeated ray again
// and the idempotent operator absorbs the repeat.
func groupMessages(msgs []busp.Message) map[layer.TileKey]map[int]map[kernel.Direction][]kernel.Ray {
	changes := make(map[layer.TileKey]map[int]map[kernel.Direction][]kernel.Ray)
	for _, m := range msgs {
		byObserver, ok := changes[m.TargetKey]
		if !ok {
			byObserver = make(map[int]map[kernel.Direction][]kernel.Ray)
			changes[m.TargetKey] = byObserver
		}
		byDirection, ok := byObserver[m.CausalObserverIndex]
		if !ok {
			byDirection = make(map[kernel.Direction][]kernel.Ray)
			byObserver[m.CausalObserverIndex] = byDirection
		}
		byDirection[m.Direction] = append(byDirection[m.Direction], m.Rays...)
	}
	return changes
}

func sortByIndex(infos []observer.PointInfo) []observer.PointInfo {
	out := make([]observer.PointInfo, len(infos))
	copy(out, infos)
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func sortedIntKeys(m map[int]map[kernel.Direction][]kernel.Ray) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
