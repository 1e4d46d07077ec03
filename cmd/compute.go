package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/achilleasa/go-viewshed/adapters"
	"github.com/achilleasa/go-viewshed/bus"
	"github.com/achilleasa/go-viewshed/engine"
	"github.com/achilleasa/go-viewshed/kernel"
	"github.com/achilleasa/go-viewshed/layer"
	"github.com/achilleasa/go-viewshed/observer"
	"github.com/achilleasa/go-viewshed/runtime"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// observerDoc is the on-disk shape of an --observers file: a JSON array of
// raw Point6Ds. FieldOfView and Altitude are pointers so a document can
// distinguish "omitted, use the sentinel default" from an explicit zero.
type observerDoc struct {
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	ViewHeight  float64  `json:"viewHeight"`
	Angle       float64  `json:"angle"`
	FieldOfView *float64 `json:"fieldOfView,omitempty"`
	Altitude    *float64 `json:"altitude,omitempty"`
}

func loadObservers(path string) ([]observer.Point6D, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open observers file %q: %w", path, err)
	}
	defer f.Close()

	var docs []observerDoc
	if err := json.NewDecoder(f).Decode(&docs); err != nil {
		return nil, fmt.Errorf("could not decode observers file %q: %w", path, err)
	}

	points := make([]observer.Point6D, len(docs))
	for i, d := range docs {
		fov := -1.0
		if d.FieldOfView != nil {
			fov = *d.FieldOfView
		}
		alt := observer.NegativeInfinity
		if d.Altitude != nil {
			alt = *d.Altitude
		}
		points[i] = observer.Point6D{
			X: d.X, Y: d.Y,
			ViewHeight:  d.ViewHeight,
			Angle:       d.Angle,
			FieldOfView: fov,
			Altitude:    alt,
		}
	}
	return points, nil
}

func parseOperator(name string) (kernel.Operator, error) {
	switch strings.ToLower(name) {
	case "", "or":
		return kernel.Or, nil
	case "and":
		return kernel.And, nil
	case "sum":
		return kernel.Sum, nil
	case "debug":
		return kernel.Debug, nil
	default:
		return 0, fmt.Errorf("unknown operator %q (expected or, and, sum or debug)", name)
	}
}

// elevationReader builds the adapters.LayerReader the compute command reads
// from: either a JSON document on disk, or a small synthetic cone-shaped
// layer for quick experimentation without a fixture file.
func elevationReader(ctx *cli.Context) (adapters.LayerReader, error) {
	if ctx.Bool("synthetic") {
		gridCols, gridRows := ctx.Int("synthetic-grid-cols"), ctx.Int("synthetic-grid-rows")
		tileCols, tileRows := ctx.Int("synthetic-tile-size"), ctx.Int("synthetic-tile-size")
		totalCols, totalRows := tileCols*gridCols, tileRows*gridRows

		meta := layer.Metadata{
			Layout: layer.Layout{TileCols: tileCols, TileRows: tileRows, TotalCols: totalCols, TotalRows: totalRows},
			CRS:    "EPSG:3857",
			Extent: layer.Extent{XMin: 0, YMin: 0, XMax: float64(totalCols), YMax: float64(totalRows)},
			Bounds: layer.KeyBounds{Min: layer.TileKey{Col: 0, Row: 0}, Max: layer.TileKey{Col: gridCols - 1, Row: gridRows - 1}},
		}
		centerCol, centerRow := float64(totalCols)/2, float64(totalRows)/2
		peak := ctx.Float64("synthetic-peak")

		return &runtime.SyntheticReader{
			Meta: meta,
			ElevationAt: func(key layer.TileKey, col, row int) float64 {
				gc := float64(key.Col*tileCols + col)
				gr := float64(key.Row*tileRows + row)
				dist := ((gc-centerCol)*(gc-centerCol) + (gr-centerRow)*(gr-centerRow))
				falloff := dist / (centerCol*centerCol + centerRow*centerRow)
				if falloff > 1 {
					falloff = 1
				}
				return peak * (1 - falloff)
			},
		}, nil
	}

	path := ctx.Args().First()
	if path == "" {
		return nil, errors.New("missing elevation layer file argument")
	}
	return runtime.NewJSONLayerReader(path), nil
}

// Compute runs the viewshed engine over an elevation layer and a set of
// observers, writing the resulting visibility layer to disk.
func Compute(ctx *cli.Context) error {
	setupLogging(ctx)

	reader, err := elevationReader(ctx)
	if err != nil {
		return err
	}
	el, err := runtime.LoadElevationLayer(context.Background(), reader)
	if err != nil {
		return err
	}

	observersPath := ctx.String("observers")
	if observersPath == "" {
		return errors.New("missing --observers file argument")
	}
	points, err := loadObservers(observersPath)
	if err != nil {
		return err
	}

	op, err := parseOperator(ctx.String("operator"))
	if err != nil {
		return err
	}

	pool := runtime.NewPool(ctx.Int("workers"), ctx.Int("max-retries"))
	stats := &engine.RunStats{}

	cfg := engine.Config{
		Elevation:        el,
		Points:           points,
		MaxDistance:      ctx.Float64("max-distance"),
		DisableCurvature: ctx.Bool("disable-curvature"),
		Operator:         op,
		Pool:             pool,
		Bus:              bus.NewBus(0),
		TouchedKeys:      engine.NewTouchedKeys(),
		Stats:            stats,
	}

	logger.Noticef("computing viewshed for %d observer(s) across %d tile(s)", len(points), len(el.Tiles))

	vl, err := engine.Run(context.Background(), cfg)
	if err != nil {
		return err
	}

	logger.Noticef("touched %d tile(s) in %d iteration(s)", len(cfg.TouchedKeys.Keys()), len(stats.Iterations))

	out := ctx.String("out")
	writer := runtime.NewJSONLayerWriter(out)
	if err := runtime.SaveVisibilityLayer(context.Background(), writer, vl); err != nil {
		return err
	}

	displayRunStats(stats)
	logger.Noticef("wrote visibility layer to %s", out)

	return nil
}

func displayRunStats(stats *engine.RunStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Iteration", "Messages in", "Tiles touched", "Elapsed"})
	for _, it := range stats.Iterations {
		table.Append([]string{
			fmt.Sprintf("%d", it.Index),
			fmt.Sprintf("%d", it.MessagesIn),
			fmt.Sprintf("%d", it.TilesTouched),
			it.Elapsed.String(),
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", stats.TotalTime.String()})
	table.Render()
	logger.Noticef("run statistics\n%s", buf.String())
}
