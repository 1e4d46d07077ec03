package layer

// Metadata describes the shape and spatial reference of a layer, carried
// by both elevation and visibility layers — §3: "The layer carries
// Metadata: {layout, crs, extent, bounds}."
type Metadata struct {
	Layout   Layout
	CRS      string
	Extent   Extent
	Bounds   KeyBounds
	CellType CellType
}

// ElevationLayer is a mapping from TileKey to ElevationTile plus the
// Metadata describing the grid they form — §3's "Elevation Layer".
type ElevationLayer struct {
	Metadata Metadata
	Tiles    map[TileKey]*ElevationTile
}

// Tile returns the elevation tile at key, if present.
func (el *ElevationLayer) Tile(key TileKey) (*ElevationTile, bool) {
	t, ok := el.Tiles[key]
	return t, ok
}

// At implements ElevationSource: it looks up the elevation value at the
// given tile-relative (col,row).
func (el *ElevationLayer) At(key TileKey, col, row int) (float64, bool) {
	t, ok := el.Tiles[key]
	if !ok {
		return 0, false
	}
	return t.At(col, row)
}

// ElevationSource is the minimal read interface the observer package needs
// from an elevation layer; §4.B's effective-view-height lookup is
// "distributed (tiles live in many partitions)", so this interface lets
// observer stay agnostic of whether the tiles are held locally (as here)
// or fetched through a PartitionedDataset.
type ElevationSource interface {
	At(key TileKey, col, row int) (float64, bool)
}

// VisibilityLayer is a mapping from TileKey to VisibilityTile plus
// Metadata inherited from the elevation layer that produced it — §4.E's
// "finalize" step.
type VisibilityLayer struct {
	Metadata Metadata
	Tiles    map[TileKey]*VisibilityTile
}

// Tile returns the visibility tile at key, if present.
func (vl *VisibilityLayer) Tile(key TileKey) (*VisibilityTile, bool) {
	t, ok := vl.Tiles[key]
	return t, ok
}
