// Package geodesy computes the engine-wide meters-per-pixel resolution
// used by the R2 kernel and the curvature-drop constant it applies —
// spec §4.A.
package geodesy

import (
	"fmt"
	"math"
	"strings"

	"github.com/achilleasa/go-viewshed/layer"
)

// EarthRadiusMeters is the equatorial radius used throughout the engine
// for curvature-drop and circumference calculations — spec §6.
const EarthRadiusMeters = 6378137.0

// equatorialCircumferenceMeters is 2*pi*EarthRadiusMeters.
const equatorialCircumferenceMeters = 2 * math.Pi * EarthRadiusMeters

// CurvatureDrop returns the vertical drop, in meters, that Earth's
// curvature introduces over a horizontal distance — spec §6:
// "d^2 / (2*R)".
func CurvatureDrop(distanceMeters float64) float64 {
	return (distanceMeters * distanceMeters) / (2 * EarthRadiusMeters)
}

// Resolution computes the layer's meters-per-pixel scalar per spec §4.A:
//  1. select any one TileKey,
//  2. for a geographic CRS, approximate that tile's extent width in meters
//     using the equatorial circumference (a projected CRS's extent width is
//     used as-is; no reprojection is done),
//  3. divide by tileCols.
//
// The design assumes a near-equidistant layout and does not re-estimate
// per tile — a single scalar is used uniformly across the whole layer.
func Resolution(meta layer.Metadata) (float64, error) {
	if !meta.Bounds.Valid() {
		return 0, fmt.Errorf("%w: bounds is not a well-formed rectangle", layer.ErrInvalidLayer)
	}
	if meta.Layout.TileCols <= 0 {
		return 0, fmt.Errorf("%w: layout has non-positive tileCols", layer.ErrInvalidLayer)
	}

	key := meta.Bounds.Min
	re := meta.Layout.RasterExtentFor(meta.Extent, key)
	tileWidthUnits := re.CellWidth * float64(re.Cols)

	// Reprojecting an arbitrary CRS's extent to lat/lng is a full CRS
	// stack (out of scope per spec §1). Layers already in a geographic
	// CRS need no reprojection: their extent is already in degrees of
	// longitude, so approximate the tile's width in meters using the
	// equatorial circumference; layers in a projected CRS are assumed to
	// already carry a metric extent, and are used as-is.
	if isGeographic(meta.CRS) {
		tileWidthUnits = tileWidthUnits / 360.0 * equatorialCircumferenceMeters
	}

	return tileWidthUnits / float64(meta.Layout.TileCols), nil
}

// isGeographic reports whether crs names a geographic (lat/lng) coordinate
// reference system rather than a projected, metric one.
func isGeographic(crs string) bool {
	crs = strings.ToLower(crs)
	return strings.Contains(crs, "4326") || strings.Contains(crs, "longlat") || strings.Contains(crs, "crs84")
}
