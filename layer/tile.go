package layer

import "math"

// CellType records the declared pixel type of a layer. Elevation layers
// are always promoted to Float64 (§3: "dense 2D grid of f64 meters, or
// integer cell type promoted to float"); visibility layers produced by the
// engine declare Int16NoData per §6 ("Output ... declares
// integer-with-nodata cell type").
type CellType uint8

const (
	Float64 CellType = iota
	Int16NoData
)

// NoData is the visibility-tile sentinel for "no information", i.e. a
// pixel that no ray pass has touched.
const NoData = math.MinInt16

// ElevationTile is a dense (cols x rows) grid of elevation values, in
// meters, immutable once constructed — §3: "Tiles are immutable throughout
// computation."
type ElevationTile struct {
	Cols, Rows int
	Values     []float64
}

// NewElevationTile allocates a tile of the given shape, all values zeroed.
func NewElevationTile(cols, rows int) *ElevationTile {
	return &ElevationTile{Cols: cols, Rows: rows, Values: make([]float64, cols*rows)}
}

// At returns the elevation at (col,row). ok is false if out of bounds.
func (t *ElevationTile) At(col, row int) (float64, bool) {
	if col < 0 || col >= t.Cols || row < 0 || row >= t.Rows {
		return 0, false
	}
	return t.Values[row*t.Cols+col], true
}

// Set stores the elevation at (col,row). It panics on an out-of-bounds
// index, mirroring a dense array's usual contract — callers that need a
// safe accessor should use At first.
func (t *ElevationTile) Set(col, row int, v float64) {
	t.Values[row*t.Cols+col] = v
}

// VisibilityTile is a dense (cols x rows) grid of visibility aggregates,
// one per pixel, initialized to NoData and mutated in place by the kernel
// — §3: "created empty at iteration 0, mutated in place by kernel within a
// task".
type VisibilityTile struct {
	Cols, Rows int
	Values     []int16
}

// NewVisibilityTile allocates a tile of the given shape, all cells set to
// NoData.
func NewVisibilityTile(cols, rows int) *VisibilityTile {
	values := make([]int16, cols*rows)
	for i := range values {
		values[i] = NoData
	}
	return &VisibilityTile{Cols: cols, Rows: rows, Values: values}
}

// At returns the visibility aggregate at (col,row). ok is false if out of
// bounds.
func (t *VisibilityTile) At(col, row int) (int16, bool) {
	if col < 0 || col >= t.Cols || row < 0 || row >= t.Rows {
		return 0, false
	}
	return t.Values[row*t.Cols+col], true
}

// Set stores the visibility aggregate at (col,row).
func (t *VisibilityTile) Set(col, row int, v int16) {
	t.Values[row*t.Cols+col] = v
}
