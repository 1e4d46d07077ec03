package layer

import "math"

// Extent is a layer's spatial footprint in CRS units.
type Extent struct {
	XMin, YMin, XMax, YMax float64
}

// Width returns the extent's width in CRS units.
func (e Extent) Width() float64 { return e.XMax - e.XMin }

// Height returns the extent's height in CRS units.
func (e Extent) Height() float64 { return e.YMax - e.YMin }

// Layout describes the regular tile grid a layer is partitioned into: the
// per-tile pixel dimensions and the total pixel dimensions of the full
// layer. Grounded on the tile-matrix sizing arithmetic of
// PDOK-texel's TileMatrix (grid size = tiles * tileSize * cellSize),
// generalized here from a fixed square grid to an arbitrary KeyBounds.
type Layout struct {
	TileCols, TileRows   int
	TotalCols, TotalRows int
}

// CellWidth returns the CRS-unit width of a single pixel, given the
// layer's extent.
func (l Layout) CellWidth(extent Extent) float64 {
	return extent.Width() / float64(l.TotalCols)
}

// CellHeight returns the CRS-unit height of a single pixel, given the
// layer's extent.
func (l Layout) CellHeight(extent Extent) float64 {
	return extent.Height() / float64(l.TotalRows)
}

// TileKeyFor maps a point in CRS units to the TileKey of the tile that
// contains it, the concrete realization of §4.B's "layout.mapTransform".
// ok is false if (x,y) falls outside extent.
func (l Layout) TileKeyFor(extent Extent, x, y float64) (TileKey, bool) {
	if x < extent.XMin || x >= extent.XMax || y <= extent.YMin || y > extent.YMax {
		return TileKey{}, false
	}
	cw := l.CellWidth(extent)
	ch := l.CellHeight(extent)

	totalCol := int(math.Floor((x - extent.XMin) / cw))
	// Raster row 0 is the northernmost row: row grows downward as y decreases.
	totalRow := int(math.Floor((extent.YMax - y) / ch))

	if totalCol >= l.TotalCols {
		totalCol = l.TotalCols - 1
	}
	if totalRow >= l.TotalRows {
		totalRow = l.TotalRows - 1
	}

	return TileKey{Col: totalCol / l.TileCols, Row: totalRow / l.TileRows}, true
}

// RasterExtent returns the pixel-space extent of the tile identified by
// key: the CRS extent of that single tile, used to derive intra-tile
// (col,row) coordinates per §4.B step 2.
type RasterExtent struct {
	XMin, YMax float64
	CellWidth  float64
	CellHeight float64
	Cols, Rows int
}

// RasterExtentFor returns the RasterExtent of the tile at key.
func (l Layout) RasterExtentFor(extent Extent, key TileKey) RasterExtent {
	cw := l.CellWidth(extent)
	ch := l.CellHeight(extent)
	return RasterExtent{
		XMin:       extent.XMin + float64(key.Col*l.TileCols)*cw,
		YMax:       extent.YMax - float64(key.Row*l.TileRows)*ch,
		CellWidth:  cw,
		CellHeight: ch,
		Cols:       l.TileCols,
		Rows:       l.TileRows,
	}
}

// ColRow converts a CRS point into intra-tile pixel coordinates. ok is
// false if the point does not land on a single cell of this extent.
func (re RasterExtent) ColRow(x, y float64) (col, row int, ok bool) {
	col = int(math.Floor((x - re.XMin) / re.CellWidth))
	row = int(math.Floor((re.YMax - y) / re.CellHeight))
	if col < 0 || col >= re.Cols || row < 0 || row >= re.Rows {
		return 0, 0, false
	}
	return col, row, true
}
