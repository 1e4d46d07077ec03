package observer

import (
	"errors"
	"testing"

	"github.com/achilleasa/go-viewshed/layer"
)

type flatElevation struct {
	height float64
}

func (f flatElevation) At(key layer.TileKey, col, row int) (float64, bool) {
	return f.height, true
}

func testMetadata() layer.Metadata {
	return layer.Metadata{
		Layout: layer.Layout{TileCols: 4, TileRows: 4, TotalCols: 8, TotalRows: 8},
		Extent: layer.Extent{XMin: 0, YMin: 0, XMax: 8, YMax: 8},
		Bounds: layer.KeyBounds{Min: layer.TileKey{}, Max: layer.TileKey{Col: 1, Row: 1}},
	}
}

func TestResolveRelativeHeight(t *testing.T) {
	meta := testMetadata()
	tables, err := Resolve(meta, flatElevation{height: 10}, []Point6D{
		{X: 1, Y: 7, ViewHeight: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	height, ok := tables.EffectiveHeight(0)
	if !ok {
		t.Fatalf("expected height for index 0")
	}
	if height != 12 {
		t.Fatalf("expected effective height 12; got %v", height)
	}

	info, ok := tables.ByIndex[0]
	if !ok || info.Key != (layer.TileKey{}) {
		t.Fatalf("expected observer resolved to tile (0,0); got %+v ok=%v", info, ok)
	}
}

func TestResolveAbsoluteHeight(t *testing.T) {
	meta := testMetadata()
	tables, err := Resolve(meta, flatElevation{height: 10}, []Point6D{
		{X: 1, Y: 7, ViewHeight: -100},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	height, _ := tables.EffectiveHeight(0)
	if height != 100 {
		t.Fatalf("expected absolute height 100; got %v", height)
	}
}

func TestResolveOutOfLayout(t *testing.T) {
	meta := testMetadata()
	_, err := Resolve(meta, flatElevation{height: 0}, []Point6D{
		{X: 100, Y: 100},
	})
	if !errors.Is(err, ErrObserverOutOfLayout) {
		t.Fatalf("expected ErrObserverOutOfLayout; got %v", err)
	}
}

func TestResolveGroupsByHostTile(t *testing.T) {
	meta := testMetadata()
	tables, err := Resolve(meta, flatElevation{height: 0}, []Point6D{
		{X: 1, Y: 7},
		{X: 5, Y: 7},
		{X: 1, Y: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tables.ByKey[layer.TileKey{Col: 0, Row: 0}]) != 1 {
		t.Fatalf("expected 1 observer in tile (0,0)")
	}
	if len(tables.ByKey[layer.TileKey{Col: 1, Row: 0}]) != 1 {
		t.Fatalf("expected 1 observer in tile (1,0)")
	}
	if len(tables.ByKey[layer.TileKey{Col: 0, Row: 1}]) != 1 {
		t.Fatalf("expected 1 observer in tile (0,1)")
	}
}
