package layer

import "testing"

func TestLayoutTileKeyFor(t *testing.T) {
	layout := Layout{TileCols: 256, TileRows: 256, TotalCols: 768, TotalRows: 768}
	extent := Extent{XMin: 0, YMin: 0, XMax: 768, YMax: 768}

	type spec struct {
		x, y    float64
		wantKey TileKey
		wantOk  bool
	}
	specs := []spec{
		{x: 10, y: 760, wantKey: TileKey{Col: 0, Row: 0}, wantOk: true},
		{x: 300, y: 760, wantKey: TileKey{Col: 1, Row: 0}, wantOk: true},
		{x: 10, y: 10, wantKey: TileKey{Col: 0, Row: 2}, wantOk: true},
		{x: -1, y: 10, wantKey: TileKey{}, wantOk: false},
		{x: 10, y: 900, wantKey: TileKey{}, wantOk: false},
	}

	for idx, s := range specs {
		key, ok := layout.TileKeyFor(extent, s.x, s.y)
		if ok != s.wantOk {
			t.Fatalf("[spec %d] expected ok=%v; got %v", idx, s.wantOk, ok)
		}
		if ok && key != s.wantKey {
			t.Fatalf("[spec %d] expected key %s; got %s", idx, s.wantKey, key)
		}
	}
}

func TestRasterExtentColRow(t *testing.T) {
	layout := Layout{TileCols: 256, TileRows: 256, TotalCols: 768, TotalRows: 768}
	extent := Extent{XMin: 0, YMin: 0, XMax: 768, YMax: 768}

	re := layout.RasterExtentFor(extent, TileKey{Col: 1, Row: 0})
	col, row, ok := re.ColRow(300, 760)
	if !ok {
		t.Fatalf("expected point to resolve inside tile")
	}
	if col != 300-256 || row != 8 {
		t.Fatalf("expected col=44 row=8; got col=%d row=%d", col, row)
	}

	if _, _, ok := re.ColRow(10, 760); ok {
		t.Fatalf("expected point outside the tile's raster extent to fail")
	}
}

func TestKeyBoundsKeys(t *testing.T) {
	b := KeyBounds{Min: TileKey{Col: 0, Row: 0}, Max: TileKey{Col: 1, Row: 1}}
	keys := b.Keys()
	if len(keys) != 4 {
		t.Fatalf("expected 4 keys; got %d", len(keys))
	}
	if !b.Valid() {
		t.Fatalf("expected bounds to be valid")
	}

	empty := KeyBounds{Min: TileKey{Col: 2, Row: 0}, Max: TileKey{Col: 1, Row: 0}}
	if empty.Valid() {
		t.Fatalf("expected inverted bounds to be invalid")
	}
}
