package engine

import (
	"context"
	"testing"

	"github.com/achilleasa/go-viewshed/adapters"
	"github.com/achilleasa/go-viewshed/bus"
	"github.com/achilleasa/go-viewshed/kernel"
	"github.com/achilleasa/go-viewshed/layer"
	"github.com/achilleasa/go-viewshed/observer"
	"github.com/achilleasa/go-viewshed/runtime"
)

// buildLayer constructs a gridCols x gridRows grid of tileCols x tileRows
// elevation tiles, each pixel wide/tall in CRS units, with elevation
// supplied by elevAt(globalCol, globalRow). The projected CRS keeps
// geodesy.Resolution's degrees-to-meters branch out of the picture, so 1
// CRS unit == 1 meter and pixels are exactly 1m wide.
func buildLayer(t *testing.T, tileCols, tileRows, gridCols, gridRows int, elevAt func(col, row int) float64) *layer.ElevationLayer {
	t.Helper()
	totalCols := tileCols * gridCols
	totalRows := tileRows * gridRows

	meta := layer.Metadata{
		Layout: layer.Layout{
			TileCols: tileCols, TileRows: tileRows,
			TotalCols: totalCols, TotalRows: totalRows,
		},
		CRS:      "EPSG:32633",
		Extent:   layer.Extent{XMin: 0, YMin: 0, XMax: float64(totalCols), YMax: float64(totalRows)},
		Bounds:   layer.KeyBounds{Min: layer.TileKey{Col: 0, Row: 0}, Max: layer.TileKey{Col: gridCols - 1, Row: gridRows - 1}},
		CellType: layer.Float64,
	}

	tiles := make(map[layer.TileKey]*layer.ElevationTile)
	for gr := 0; gr < gridRows; gr++ {
		for gc := 0; gc < gridCols; gc++ {
			key := layer.TileKey{Col: gc, Row: gr}
			tile := layer.NewElevationTile(tileCols, tileRows)
			for row := 0; row < tileRows; row++ {
				for col := 0; col < tileCols; col++ {
					tile.Set(col, row, elevAt(gc*tileCols+col, gr*tileRows+row))
				}
			}
			tiles[key] = tile
		}
	}

	return &layer.ElevationLayer{Metadata: meta, Tiles: tiles}
}

// centerXY returns CRS coordinates landing on the center pixel of the tile
// at (gridCol,gridRow), for a single-tile-row grid (gridRow is always 0 in
// this file's tests). Row 0 is the northernmost row and y decreases
// downward, but a single-row grid's vertical center is invariant under that
// flip, so the plain col/row arithmetic below lands correctly.
func centerXY(tileCols, tileRows, gridCol, gridRow int) (float64, float64) {
	x := float64(gridCol*tileCols) + float64(tileCols)/2
	y := float64(gridRow*tileRows) + float64(tileRows)/2
	return x, y
}

func countVisible(vl *layer.VisibilityLayer) int {
	count := 0
	for _, tile := range vl.Tiles {
		for _, v := range tile.Values {
			if v > 0 {
				count++
			}
		}
	}
	return count
}

func TestRunFlatPlaneSingleObserverFullyVisible(t *testing.T) {
	el := buildLayer(t, 5, 5, 1, 1, func(col, row int) float64 { return 0 })

	x, y := centerXY(5, 5, 0, 0)
	cfg := Config{
		Elevation:        el,
		Points:           []observer.Point6D{{X: x, Y: y, ViewHeight: 2, Angle: 0, FieldOfView: -1, Altitude: observer.NegativeInfinity}},
		MaxDistance:      1000,
		DisableCurvature: true,
		Operator:         kernel.Or,
	}

	vl, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := countVisible(vl), 25; got != want {
		t.Fatalf("expected all %d cells visible on a flat single-tile plane; got %d", want, got)
	}
}

func TestRunFlatPlanePropagatesAcrossTiles(t *testing.T) {
	el := buildLayer(t, 5, 5, 3, 1, func(col, row int) float64 { return 0 })

	x, y := centerXY(5, 5, 1, 0) // observer in the middle tile
	cfg := Config{
		Elevation:        el,
		Points:           []observer.Point6D{{X: x, Y: y, ViewHeight: 2, Angle: 0, FieldOfView: -1, Altitude: observer.NegativeInfinity}},
		MaxDistance:      1000,
		DisableCurvature: true,
		Operator:         kernel.Or,
		TouchedKeys:      NewTouchedKeys(),
	}

	vl, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The far edge of the leftmost tile is 1.5 tiles away from the
	// observer; on a flat plane with no curvature it must still be
	// visible, proving rays propagated across a tile boundary.
	leftTile, ok := vl.Tile(layer.TileKey{Col: 0, Row: 0})
	if !ok {
		t.Fatalf("expected a visibility tile for the leftmost tile")
	}
	v, _ := leftTile.At(0, 2)
	if v <= 0 {
		t.Fatalf("expected the far edge of the leftmost tile to be visible; got %d", v)
	}

	if len(cfg.TouchedKeys.Keys()) < 3 {
		t.Fatalf("expected touchedKeys to record all 3 tiles; got %v", cfg.TouchedKeys.Keys())
	}
}

func TestRunWallBlocksNeighboringTile(t *testing.T) {
	// Two tiles side by side; a tall wall runs down the shared boundary
	// column of the right tile.
	el := buildLayer(t, 5, 5, 2, 1, func(col, row int) float64 {
		if col == 5 { // first column of the right tile
			return 500
		}
		return 0
	})

	x, y := centerXY(5, 5, 0, 0)
	cfg := Config{
		Elevation:        el,
		Points:           []observer.Point6D{{X: x, Y: y, ViewHeight: 2, Angle: 0, FieldOfView: -1, Altitude: observer.NegativeInfinity}},
		MaxDistance:      1000,
		DisableCurvature: true,
		Operator:         kernel.Or,
	}

	vl, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	rightTile, ok := vl.Tile(layer.TileKey{Col: 1, Row: 0})
	if !ok {
		t.Fatalf("expected a visibility tile for the right tile")
	}
	beyondWall, _ := rightTile.At(4, 2)
	if beyondWall > 0 {
		t.Fatalf("expected the cell beyond the wall to be occluded; got %d", beyondWall)
	}
}

func TestRunTwoObserversUnionUnderOr(t *testing.T) {
	el := buildLayer(t, 5, 5, 1, 1, func(col, row int) float64 { return 0 })

	x1, y1 := 0.5, 0.5   // bottom-left corner pixel
	x2, y2 := 4.5, 4.5   // top-right corner pixel
	cfg := Config{
		Elevation: el,
		Points: []observer.Point6D{
			{X: x1, Y: y1, ViewHeight: 2, Angle: 0, FieldOfView: -1, Altitude: observer.NegativeInfinity},
			{X: x2, Y: y2, ViewHeight: 2, Angle: 0, FieldOfView: -1, Altitude: observer.NegativeInfinity},
		},
		MaxDistance:      1000,
		DisableCurvature: true,
		Operator:         kernel.Or,
	}

	vl, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := countVisible(vl), 25; got != want {
		t.Fatalf("expected every cell visible from the union of two flat-plane observers; got %d of %d", got, want)
	}
}

func TestRunNarrowFOVSeesFewerCellsThanOmnidirectional(t *testing.T) {
	el := buildLayer(t, 9, 9, 1, 1, func(col, row int) float64 { return 0 })
	x, y := centerXY(9, 9, 0, 0)

	base := Config{
		Elevation:        el,
		MaxDistance:      1000,
		DisableCurvature: true,
		Operator:         kernel.Or,
	}

	wide := base
	wide.Points = []observer.Point6D{{X: x, Y: y, ViewHeight: 2, FieldOfView: -1, Altitude: observer.NegativeInfinity}}
	wideResult, err := Run(context.Background(), wide)
	if err != nil {
		t.Fatalf("Run (wide): %v", err)
	}

	narrow := base
	narrow.Points = []observer.Point6D{{X: x, Y: y, ViewHeight: 2, Angle: 0, FieldOfView: 0.1, Altitude: observer.NegativeInfinity}}
	narrowResult, err := Run(context.Background(), narrow)
	if err != nil {
		t.Fatalf("Run (narrow): %v", err)
	}

	if countVisible(narrowResult) >= countVisible(wideResult) {
		t.Fatalf("expected a narrow FOV to see fewer cells than omnidirectional; narrow=%d wide=%d", countVisible(narrowResult), countVisible(wideResult))
	}
}

func TestRunLargerMaxDistanceNeverSeesFewerCells(t *testing.T) {
	el := buildLayer(t, 9, 9, 1, 1, func(col, row int) float64 { return 0 })
	x, y := centerXY(9, 9, 0, 0)

	base := Config{
		Elevation:        el,
		DisableCurvature: true,
		Operator:         kernel.Or,
		Points:           []observer.Point6D{{X: x, Y: y, ViewHeight: 2, FieldOfView: -1, Altitude: observer.NegativeInfinity}},
	}

	near := base
	near.MaxDistance = 3
	nearResult, err := Run(context.Background(), near)
	if err != nil {
		t.Fatalf("Run (near): %v", err)
	}

	far := base
	far.MaxDistance = 1000
	farResult, err := Run(context.Background(), far)
	if err != nil {
		t.Fatalf("Run (far): %v", err)
	}

	if countVisible(farResult) < countVisible(nearResult) {
		t.Fatalf("expected a larger maxDistance to never see fewer cells; near=%d far=%d", countVisible(nearResult), countVisible(farResult))
	}
}

// duplicatingBus wraps a bus.Bus and adds every message twice, simulating a
// substrate that redelivers a retried task's contributions — spec §5's
// duplicate-tolerance requirement.
type duplicatingBus struct {
	inner *bus.Bus
}

func (d *duplicatingBus) Add(m bus.Message) {
	d.inner.Add(m)
	d.inner.Add(m)
}
func (d *duplicatingBus) Value() []bus.Message               { return d.inner.Value() }
func (d *duplicatingBus) Reset()                              { d.inner.Reset() }
func (d *duplicatingBus) Merge(o adapters.Accumulator[bus.Message]) { d.inner.Merge(o) }

func TestRunToleratesDuplicateMessagesUnderOr(t *testing.T) {
	el := buildLayer(t, 5, 5, 2, 1, func(col, row int) float64 { return 0 })
	x, y := centerXY(5, 5, 0, 0)

	baseCfg := Config{
		Elevation:        el,
		Points:           []observer.Point6D{{X: x, Y: y, ViewHeight: 2, FieldOfView: -1, Altitude: observer.NegativeInfinity}},
		MaxDistance:      1000,
		DisableCurvature: true,
		Operator:         kernel.Or,
	}

	plain, err := Run(context.Background(), baseCfg)
	if err != nil {
		t.Fatalf("Run (plain): %v", err)
	}

	dupCfg := baseCfg
	dupCfg.Bus = &duplicatingBus{inner: bus.NewBus(0)}
	dup, err := Run(context.Background(), dupCfg)
	if err != nil {
		t.Fatalf("Run (duplicating bus): %v", err)
	}

	if countVisible(plain) != countVisible(dup) {
		t.Fatalf("expected Or's idempotence to absorb duplicate messages; plain=%d dup=%d", countVisible(plain), countVisible(dup))
	}
}

func TestRunRejectsInvalidBounds(t *testing.T) {
	el := buildLayer(t, 5, 5, 1, 1, func(col, row int) float64 { return 0 })
	el.Metadata.Bounds = layer.KeyBounds{Min: layer.TileKey{Col: 1, Row: 1}, Max: layer.TileKey{Col: 0, Row: 0}}

	_, err := Run(context.Background(), Config{Elevation: el, MaxDistance: 100})
	if err == nil {
		t.Fatalf("expected an error for a layer with invalid bounds")
	}
}

func TestRunRejectsObserverOutOfLayout(t *testing.T) {
	el := buildLayer(t, 5, 5, 1, 1, func(col, row int) float64 { return 0 })

	cfg := Config{
		Elevation:   el,
		Points:      []observer.Point6D{{X: 999, Y: 999, ViewHeight: 2, FieldOfView: -1, Altitude: observer.NegativeInfinity}},
		MaxDistance: 100,
	}
	_, err := Run(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected ErrObserverOutOfLayout for a coordinate outside the layer")
	}
}

func TestRunUsesConfiguredPool(t *testing.T) {
	el := buildLayer(t, 5, 5, 1, 1, func(col, row int) float64 { return 0 })
	x, y := centerXY(5, 5, 0, 0)

	pool := runtime.NewPool(2, 1)
	cfg := Config{
		Elevation:        el,
		Points:           []observer.Point6D{{X: x, Y: y, ViewHeight: 2, FieldOfView: -1, Altitude: observer.NegativeInfinity}},
		MaxDistance:      1000,
		DisableCurvature: true,
		Pool:             pool,
		Stats:            &RunStats{},
	}

	if _, err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(cfg.Stats.WorkerStats) != 2 {
		t.Fatalf("expected stats for 2 configured workers; got %d", len(cfg.Stats.WorkerStats))
	}
}
