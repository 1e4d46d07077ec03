package runtime

import (
	"context"
	"os"
	"testing"

	"github.com/achilleasa/go-viewshed/layer"
)

func TestLoadElevationLayerReadsEveryBoundsTile(t *testing.T) {
	meta := testMetadata()
	sr := &SyntheticReader{
		Meta: meta,
		ElevationAt: func(key layer.TileKey, col, row int) float64 {
			return float64(key.Col*100 + key.Row*10 + col + row)
		},
	}

	el, err := LoadElevationLayer(context.Background(), sr)
	if err != nil {
		t.Fatalf("LoadElevationLayer: %v", err)
	}
	if len(el.Tiles) != 4 {
		t.Fatalf("expected 4 tiles from a 2x2 bounds; got %d", len(el.Tiles))
	}
	tile, ok := el.Tile(layer.TileKey{Col: 1, Row: 1})
	if !ok {
		t.Fatalf("expected tile (1,1) to be present")
	}
	if v, _ := tile.At(0, 0); v != 110 {
		t.Fatalf("expected tile(1,1)(0,0) == 110; got %v", v)
	}
}

func TestLoadElevationLayerRejectsInvalidBounds(t *testing.T) {
	meta := testMetadata()
	meta.Bounds = layer.KeyBounds{Min: layer.TileKey{Col: 1, Row: 1}, Max: layer.TileKey{Col: 0, Row: 0}}
	sr := &SyntheticReader{Meta: meta, ElevationAt: func(layer.TileKey, int, int) float64 { return 0 }}

	if _, err := LoadElevationLayer(context.Background(), sr); err == nil {
		t.Fatalf("expected an error for a layer with invalid bounds")
	}
}

func TestSaveVisibilityLayerFlushesJSONWriter(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/out.json"

	vl := &layer.VisibilityLayer{
		Metadata: testMetadata(),
		Tiles: map[layer.TileKey]*layer.VisibilityTile{
			{Col: 0, Row: 0}: layer.NewVisibilityTile(2, 2),
		},
	}

	w := NewJSONLayerWriter(path)
	if err := SaveVisibilityLayer(context.Background(), w, vl); err != nil {
		t.Fatalf("SaveVisibilityLayer: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected output file to exist: %v", err)
	}
}
