package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/achilleasa/go-viewshed/adapters"
	"github.com/achilleasa/go-viewshed/layer"
)

// openResource opens pathOrURL for reading, dispatching to the filesystem
// or to net/http depending on the presence of a URL scheme — the same
// local-vs-remote branch the teacher's asset.Resource uses, generalized
// from a 3D-scene resource to a JSON layer document.
func openResource(ctx context.Context, pathOrURL string) (io.ReadCloser, error) {
	u, err := url.Parse(pathOrURL)
	if err != nil {
		return nil, fmt.Errorf("runtime: could not parse resource path %q: %w", pathOrURL, err)
	}

	switch u.Scheme {
	case "", "file":
		f, err := os.Open(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("runtime: could not open %q: %w", pathOrURL, err)
		}
		return f, nil
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pathOrURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("runtime: could not fetch %q: %w", pathOrURL, err)
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("runtime: could not fetch %q: status %d", pathOrURL, resp.StatusCode)
		}
		return resp.Body, nil
	default:
		return nil, fmt.Errorf("runtime: unsupported resource scheme %q", u.Scheme)
	}
}

// jsonElevationDoc is the on-disk shape a JSONLayerReader/JSONLayerWriter
// exchanges: layer metadata plus a flat list of tiles, keyed by column/row
// rather than a Go map so the format round-trips through encoding/json
// without losing key ordering guarantees.
type jsonElevationDoc struct {
	Metadata jsonMetadata   `json:"metadata"`
	Tiles    []jsonElevTile `json:"tiles"`
}

type jsonMetadata struct {
	CellType string          `json:"cellType"`
	CRS      string          `json:"crs"`
	Extent   layer.Extent    `json:"extent"`
	Layout   layer.Layout    `json:"layout"`
	Bounds   layer.KeyBounds `json:"bounds"`
}

type jsonElevTile struct {
	Col    int       `json:"col"`
	Row    int       `json:"row"`
	Cols   int       `json:"cols"`
	Rows   int       `json:"rows"`
	Values []float64 `json:"values"`
}

func (m jsonMetadata) toLayerMetadata() layer.Metadata {
	cellType := layer.Float64
	if strings.EqualFold(m.CellType, "int16nodata") {
		cellType = layer.Int16NoData
	}
	return layer.Metadata{
		Layout:   m.Layout,
		CRS:      m.CRS,
		Extent:   m.Extent,
		Bounds:   m.Bounds,
		CellType: cellType,
	}
}

func fromLayerMetadata(meta layer.Metadata) jsonMetadata {
	cellType := "float64"
	if meta.CellType == layer.Int16NoData {
		cellType = "int16nodata"
	}
	return jsonMetadata{
		CellType: cellType,
		CRS:      meta.CRS,
		Extent:   meta.Extent,
		Layout:   meta.Layout,
		Bounds:   meta.Bounds,
	}
}

// JSONLayerReader loads an elevation layer and its metadata from a single
// JSON document, identified by a local path or an http(s) URL. It is
// supplemental infrastructure for local experimentation and the test
// suite, standing in for a real GeoTIFF/COG/object-store LayerReader (out
// of scope per spec §1).
type JSONLayerReader struct {
	Path string

	mu   sync.Mutex
	doc  *jsonElevationDoc
	tiles map[layer.TileKey]*layer.ElevationTile
}

// NewJSONLayerReader returns a reader for the JSON document at pathOrURL.
func NewJSONLayerReader(pathOrURL string) *JSONLayerReader {
	return &JSONLayerReader{Path: pathOrURL}
}

func (r *JSONLayerReader) load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc != nil {
		return nil
	}

	rc, err := openResource(ctx, r.Path)
	if err != nil {
		return err
	}
	defer rc.Close()

	var doc jsonElevationDoc
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return fmt.Errorf("runtime: could not decode elevation layer %q: %w", r.Path, err)
	}

	tiles := make(map[layer.TileKey]*layer.ElevationTile, len(doc.Tiles))
	for _, jt := range doc.Tiles {
		tile := layer.NewElevationTile(jt.Cols, jt.Rows)
		copy(tile.Values, jt.Values)
		tiles[layer.TileKey{Col: jt.Col, Row: jt.Row}] = tile
	}

	r.doc = &doc
	r.tiles = tiles
	return nil
}

func (r *JSONLayerReader) ReadMetadata(ctx context.Context) (layer.Metadata, error) {
	if err := r.load(ctx); err != nil {
		return layer.Metadata{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc.Metadata.toLayerMetadata(), nil
}

func (r *JSONLayerReader) ReadTile(ctx context.Context, key layer.TileKey) (*layer.ElevationTile, error) {
	if err := r.load(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tile, ok := r.tiles[key]
	if !ok {
		return nil, fmt.Errorf("runtime: elevation layer %q has no tile %s", r.Path, key)
	}
	return tile, nil
}

var _ adapters.LayerReader = (*JSONLayerReader)(nil)

// JSONLayerWriter accumulates visibility tiles in memory and serializes
// them as a single JSON document to Path on Flush. Production
// LayerWriter implementations (GeoTIFF/COG/Cassandra/Accumulo) remain the
// caller's concern per spec §1; this exists for local experimentation and
// tests.
type JSONLayerWriter struct {
	Path string

	mu    sync.Mutex
	meta  layer.Metadata
	tiles map[layer.TileKey]*layer.VisibilityTile
}

// NewJSONLayerWriter returns a writer that will serialize to pathOrURL
// (local paths only; remote writes are not supported) on Flush.
func NewJSONLayerWriter(path string) *JSONLayerWriter {
	return &JSONLayerWriter{
		Path:  path,
		tiles: make(map[layer.TileKey]*layer.VisibilityTile),
	}
}

func (w *JSONLayerWriter) WriteMetadata(ctx context.Context, meta layer.Metadata) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.meta = meta
	return nil
}

func (w *JSONLayerWriter) WriteTile(ctx context.Context, key layer.TileKey, tile *layer.VisibilityTile) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tiles[key] = tile
	return nil
}

// Flush serializes every tile and the metadata written so far to Path.
func (w *JSONLayerWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Create(w.Path)
	if err != nil {
		return fmt.Errorf("runtime: could not create %q: %w", w.Path, err)
	}
	defer f.Close()

	doc := struct {
		Metadata jsonMetadata `json:"metadata"`
		Tiles    []struct {
			Col    int     `json:"col"`
			Row    int     `json:"row"`
			Cols   int     `json:"cols"`
			Rows   int     `json:"rows"`
			Values []int16 `json:"values"`
		} `json:"tiles"`
	}{
		Metadata: fromLayerMetadata(w.meta),
	}
	for key, tile := range w.tiles {
		doc.Tiles = append(doc.Tiles, struct {
			Col    int     `json:"col"`
			Row    int     `json:"row"`
			Cols   int     `json:"cols"`
			Rows   int     `json:"rows"`
			Values []int16 `json:"values"`
		}{Col: key.Col, Row: key.Row, Cols: tile.Cols, Rows: tile.Rows, Values: tile.Values})
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

var _ adapters.LayerWriter = (*JSONLayerWriter)(nil)

// SyntheticReader generates an elevation layer procedurally instead of
// reading one from storage — useful for examples and tests that need a
// layer of a given shape without shipping a fixture file. ElevationAt is
// evaluated lazily, once per requested tile.
type SyntheticReader struct {
	Meta        layer.Metadata
	ElevationAt func(key layer.TileKey, col, row int) float64
}

func (s *SyntheticReader) ReadMetadata(ctx context.Context) (layer.Metadata, error) {
	return s.Meta, nil
}

func (s *SyntheticReader) ReadTile(ctx context.Context, key layer.TileKey) (*layer.ElevationTile, error) {
	if !s.Meta.Bounds.Contains(key) {
		return nil, fmt.Errorf("runtime: synthetic layer has no tile %s", key)
	}
	cols, rows := s.Meta.Layout.TileCols, s.Meta.Layout.TileRows
	tile := layer.NewElevationTile(cols, rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			tile.Set(col, row, s.ElevationAt(key, col, row))
		}
	}
	return tile, nil
}

var _ adapters.LayerReader = (*SyntheticReader)(nil)
