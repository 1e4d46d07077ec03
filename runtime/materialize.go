package runtime

import (
	"context"
	"fmt"

	"github.com/achilleasa/go-viewshed/adapters"
	"github.com/achilleasa/go-viewshed/layer"
)

// LoadElevationLayer materializes a full elevation layer from reader by
// reading its metadata and every tile inside its declared bounds. This is
// spec §4.F's "used only at boundaries" LayerReader crossing: everything
// past this call operates on the in-memory layer.ElevationLayer, never on
// the reader itself.
func LoadElevationLayer(ctx context.Context, reader adapters.LayerReader) (*layer.ElevationLayer, error) {
	meta, err := reader.ReadMetadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("runtime: could not read layer metadata: %w", err)
	}
	if !meta.Bounds.Valid() {
		return nil, fmt.Errorf("runtime: layer metadata has no well-formed bounds")
	}

	tiles := make(map[layer.TileKey]*layer.ElevationTile)
	for _, key := range meta.Bounds.Keys() {
		tile, err := reader.ReadTile(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("runtime: could not read tile %s: %w", key, err)
		}
		tiles[key] = tile
	}

	return &layer.ElevationLayer{Metadata: meta, Tiles: tiles}, nil
}

// SaveVisibilityLayer writes a completed visibility layer's metadata and
// every tile to writer, then flushes it if writer supports flushing (the
// JSONLayerWriter batches everything into one document written on Flush;
// other LayerWriter implementations may persist eagerly and have nothing to
// flush).
func SaveVisibilityLayer(ctx context.Context, writer adapters.LayerWriter, vl *layer.VisibilityLayer) error {
	if err := writer.WriteMetadata(ctx, vl.Metadata); err != nil {
		return fmt.Errorf("runtime: could not write layer metadata: %w", err)
	}
	for key, tile := range vl.Tiles {
		if err := writer.WriteTile(ctx, key, tile); err != nil {
			return fmt.Errorf("runtime: could not write tile %s: %w", key, err)
		}
	}
	if f, ok := writer.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("runtime: could not flush layer: %w", err)
		}
	}
	return nil
}
