package kernel

import (
	"math"
	"sort"

	"github.com/achilleasa/go-viewshed/geodesy"
	"github.com/achilleasa/go-viewshed/layer"
)

// negativeInfinity is the Input.Altitude sentinel meaning "use terrain
// height" — spec §3.
var negativeInfinity = math.Inf(-1)

// Input bundles everything the R2 kernel needs to sweep one tile — spec
// §4.C.
type Input struct {
	Elevation  *layer.ElevationTile
	Visibility *layer.VisibilityTile

	// StartCol/StartRow is the origin the kernel shoots (or continues)
	// rays from. It may lie outside [0,Cols)x[0,Rows) when the causal
	// observer lives in a neighboring tile — spec §9.
	StartCol, StartRow int
	ViewHeight         float64

	// Direction is the edge these Rays entered through, or FromInside
	// if this tile hosts the causal observer (Rays is nil in that
	// case).
	Direction Direction
	Rays      []Ray

	Resolution  float64
	MaxDistance float64
	Curvature   bool
	// Altitude is the target altitude in meters; negativeInfinity means
	// "use terrain height" at every traced cell.
	Altitude float64
	Operator Operator

	// CameraDirection/CameraFOV restrict which rays are cast when
	// Direction == FromInside. CameraFOV < 0 means omnidirectional.
	CameraDirection float64
	CameraFOV       float64

	Epsilon float64
}

// Output is the result of one kernel invocation: the outgoing ray bundle,
// keyed by the direction a neighboring tile would tag it with when it
// receives the bundle (spec §4.C "Emission").
type Output struct {
	Bundle map[Direction][]Ray
}

// Run sweeps Elevation from in.StartCol/StartRow, mutates in.Visibility in
// place, and returns the rays that exit the tile before MaxDistance is
// reached. Run is deterministic: identical Input values always produce
// identical Visibility mutations and Output bundles (spec §4.C
// "Determinism"), which is what lets the engine retry a tile task
// idempotently under the commutative/idempotent operators (spec §5).
func Run(in Input) Output {
	out := Output{Bundle: make(map[Direction][]Ray)}

	if in.Direction == FromInside {
		markSelfVisible(in)
		for _, target := range boundaryCells(in.Elevation.Cols, in.Elevation.Rows) {
			theta := azimuth(target.col-in.StartCol, target.row-in.StartRow)
			if !fovAllows(theta, in.CameraDirection, in.CameraFOV) {
				continue
			}
			sweep(in, theta, negativeInfinity, 1.0, 0, out)
		}
	} else {
		for _, ray := range in.Rays {
			sweep(in, ray.Theta, ray.Alpha, ray.V0, ray.Metric0, out)
		}
	}

	for dir := range out.Bundle {
		sort.Stable(byTheta(out.Bundle[dir]))
	}
	return out
}

// markSelfVisible marks the observer's own pixel visible, since the sweep
// below only ever steps outward from the origin and would otherwise never
// touch it.
func markSelfVisible(in Input) {
	if in.StartCol < 0 || in.StartCol >= in.Elevation.Cols || in.StartRow < 0 || in.StartRow >= in.Elevation.Rows {
		return
	}
	existing, _ := in.Visibility.At(in.StartCol, in.StartRow)
	in.Visibility.Set(in.StartCol, in.StartRow, in.Operator.Apply(existing, true))
}

type cell struct{ col, row int }

// boundaryCells enumerates the perimeter pixels of a cols x rows tile,
// exactly once each — spec §4.C step 1: "For each target pixel on the
// tile boundary ...".
func boundaryCells(cols, rows int) []cell {
	cells := make([]cell, 0, 2*cols+2*rows-4)
	for col := 0; col < cols; col++ {
		cells = append(cells, cell{col: col, row: 0})
		if rows > 1 {
			cells = append(cells, cell{col: col, row: rows - 1})
		}
	}
	for row := 1; row < rows-1; row++ {
		cells = append(cells, cell{col: 0, row: row})
		if cols > 1 {
			cells = append(cells, cell{col: cols - 1, row: row})
		}
	}
	return cells
}

// azimuth returns the clockwise-from-north angle, in radians, of the
// vector (dCol,dRow) in tile-pixel space.
func azimuth(dCol, dRow int) float64 {
	return math.Atan2(float64(dCol), float64(-dRow))
}

// fovAllows reports whether a ray launched at theta falls inside
// [cameraDirection-fov/2, cameraDirection+fov/2] — spec §4.C step 6.
// fov < 0 means omnidirectional.
func fovAllows(theta, cameraDirection, fov float64) bool {
	if fov < 0 {
		return true
	}
	delta := angleDelta(theta, cameraDirection)
	return math.Abs(delta) <= fov/2
}

// angleDelta returns the signed difference a-b, normalized to (-pi, pi].
func angleDelta(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d <= -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// sweep marches a single ray outward from in.StartCol/StartRow at azimuth
// theta, updating in.Visibility for every in-bounds cell it crosses, and
// appends an outgoing Ray to out.Bundle if the ray leaves the tile before
// exhausting maxDistance — spec §4.C steps 2-5.
func sweep(in Input, theta, alpha0, v0, metric0 float64, out Output) {
	dCol := math.Sin(theta)
	dRow := -math.Cos(theta)

	// Horizontal/vertical epsilon: snap near-cardinal directions to
	// avoid divide-by-near-zero slope instability — spec §4.C
	// "Horizontal/vertical epsilon".
	if math.Abs(dCol) < in.Epsilon {
		dCol = 0
	}
	if math.Abs(dRow) < in.Epsilon {
		dRow = 0
	}
	if dCol == 0 && dRow == 0 {
		return
	}

	alphaMax := alpha0
	entered := false

	maxSteps := maxTraceSteps(in)
	for step := 1; step <= maxSteps; step++ {
		colF, rowF := stepPosition(dCol, dRow, step)
		col := in.StartCol + int(math.Round(colF))
		row := in.StartRow + int(math.Round(rowF))

		inBounds := col >= 0 && col < in.Elevation.Cols && row >= 0 && row < in.Elevation.Rows
		if !inBounds {
			if entered {
				emit(theta, alphaMax, v0, exitSideFor(col, row, in.Elevation.Cols, in.Elevation.Rows), out)
				return
			}
			// Still marching in from a neighboring tile's translated
			// origin — keep stepping without recording until the ray
			// actually crosses into this tile.
			continue
		}
		entered = true

		distancePixels := math.Hypot(float64(col-in.StartCol), float64(row-in.StartRow))
		metric := metric0 + distancePixels*in.Resolution
		if metric >= in.MaxDistance {
			return
		}

		elev, _ := in.Elevation.At(col, row)
		targetHeight := elev
		if !math.IsInf(in.Altitude, -1) {
			targetHeight = in.Altitude
		}

		drop := 0.0
		if in.Curvature {
			drop = geodesy.CurvatureDrop(metric)
		}
		alphaCur := (targetHeight - in.ViewHeight - drop) / metric

		visible := alphaCur >= alphaMax-in.Epsilon
		existing, _ := in.Visibility.At(col, row)
		in.Visibility.Set(col, row, in.Operator.Apply(existing, visible))

		if alphaCur > alphaMax {
			alphaMax = alphaCur
		}
	}
}

// stepPosition returns the (col,row) offset from the origin after the
// given number of unit steps along direction (dCol,dRow), stepping one
// pixel at a time in whichever axis dominates — spec §4.C step 1:
// "stepping in the cell the line last touches per column (or row)
// increment."
func stepPosition(dCol, dRow float64, step int) (float64, float64) {
	if math.Abs(dCol) >= math.Abs(dRow) {
		sign := 1.0
		if dCol < 0 {
			sign = -1.0
		}
		colOffset := sign * float64(step)
		rowOffset := 0.0
		if dCol != 0 {
			rowOffset = colOffset * dRow / dCol
		}
		return colOffset, rowOffset
	}
	sign := 1.0
	if dRow < 0 {
		sign = -1.0
	}
	rowOffset := sign * float64(step)
	colOffset := rowOffset * dCol / dRow
	return colOffset, rowOffset
}

// maxTraceSteps bounds how many pixel steps a ray may take: enough to
// cross the tile diagonally several times over, or to exhaust
// MaxDistance, whichever is smaller.
func maxTraceSteps(in Input) int {
	byDistance := int(math.Ceil(in.MaxDistance/in.Resolution)) + 1
	byTile := 4 * (in.Elevation.Cols + in.Elevation.Rows + 2)
	if byDistance < byTile {
		return byDistance
	}
	return byTile
}

// exitSideFor classifies which tile edge a just-out-of-bounds (col,row)
// crossed.
func exitSideFor(col, row, cols, rows int) Direction {
	switch {
	case row < 0:
		return FromNorth
	case row >= rows:
		return FromSouth
	case col < 0:
		return FromWest
	default:
		return FromEast
	}
}

// emit appends an outgoing Ray to the bundle a neighbor across exitSide
// would receive it under. Metric0 is left at zero: because §4.A's
// resolution is a single scalar used uniformly across the whole layer,
// the receiving tile recomputes absolute distance directly from its own
// translated origin (see sweep's metric calculation) rather than
// accumulating it step by step, which also avoids compounding floating
// point drift across a long relayed ray.
func emit(theta, alpha, v0 float64, exitSide Direction, out Output) {
	tag := entryDirectionFor(exitSide)
	out.Bundle[tag] = append(out.Bundle[tag], Ray{
		Theta: theta,
		Alpha: alpha,
		V0:    v0,
	})
}
