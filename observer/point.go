// Package observer implements spec §4.B: mapping raw observer coordinates
// to tile-local positions, computing effective view heights, and
// materializing the broadcast tables the engine and kernel consume.
package observer

import "math"

// NegativeInfinity is the Point6D.Altitude sentinel meaning "use terrain
// height" — spec §3.
var NegativeInfinity = math.Inf(-1)

// Point6D is a raw observer as supplied on the wire — spec §3/§6:
// {x, y, viewHeight, angle, fieldOfView, altitude}.
type Point6D struct {
	X, Y        float64
	ViewHeight  float64
	Angle       float64
	FieldOfView float64
	Altitude    float64
}

// Omnidirectional reports whether p has no field-of-view restriction —
// spec §3: "a sentinel < 0 means omnidirectional".
func (p Point6D) Omnidirectional() bool {
	return p.FieldOfView < 0
}

// UsesTerrainAltitude reports whether p's target altitude tracks terrain
// height rather than a fixed value — spec §3: "sentinel -inf means 'use
// terrain height'".
func (p Point6D) UsesTerrainAltitude() bool {
	return math.IsInf(p.Altitude, -1)
}
