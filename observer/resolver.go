package observer

import (
	"fmt"

	"github.com/achilleasa/go-viewshed/layer"
)

// Resolve implements spec §4.B in full: for each Point6D it computes the
// containing TileKey and intra-tile (col,row), derives the effective view
// height by reading the elevation at that pixel, and materializes the
// {key -> []PointInfo}, {index -> PointInfo} and {index -> height}
// broadcast tables.
//
// index i of points becomes PointInfo.Index i, matching the order points
// were supplied in — spec §3: "index is the observer's stable identity
// used across iterations."
func Resolve(meta layer.Metadata, elevation layer.ElevationSource, points []Point6D) (*Tables, error) {
	tables := &Tables{
		ByKey:   make(map[layer.TileKey][]PointInfo),
		ByIndex: make(map[int]PointInfo, len(points)),
		Height:  make(map[int]float64, len(points)),
	}

	for i, p := range points {
		key, ok := meta.Layout.TileKeyFor(meta.Extent, p.X, p.Y)
		if !ok || !meta.Bounds.Contains(key) {
			return nil, fmt.Errorf("%w: observer %d at (%g,%g)", ErrObserverOutOfLayout, i, p.X, p.Y)
		}

		re := meta.Layout.RasterExtentFor(meta.Extent, key)
		col, row, ok := re.ColRow(p.X, p.Y)
		if !ok {
			return nil, fmt.Errorf("%w: observer %d at (%g,%g)", ErrObserverOutOfLayout, i, p.X, p.Y)
		}

		info := PointInfo{
			Index:      i,
			Key:        key,
			Col:        col,
			Row:        row,
			ViewHeight: p.ViewHeight,
			Angle:      p.Angle,
			FOV:        p.FieldOfView,
			Alt:        p.Altitude,
		}

		ground, ok := elevation.At(key, col, row)
		if !ok {
			return nil, fmt.Errorf("%w: observer %d at (%g,%g) has no elevation data", ErrObserverOutOfLayout, i, p.X, p.Y)
		}

		var effective float64
		if p.ViewHeight >= 0 {
			effective = ground + p.ViewHeight
		} else {
			effective = -p.ViewHeight
		}

		tables.ByIndex[i] = info
		tables.Height[i] = effective
		tables.ByKey[key] = append(tables.ByKey[key], info)
	}

	return tables, nil
}
