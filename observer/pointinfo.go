package observer

import "github.com/achilleasa/go-viewshed/layer"

// PointInfo is an elaborated observer, derived once from a Point6D and the
// layer's metadata — spec §3.
type PointInfo struct {
	Index      int
	Key        layer.TileKey
	Col, Row   int
	ViewHeight float64
	Angle      float64
	FOV        float64
	Alt        float64
}

// Omnidirectional reports whether this observer has no field-of-view
// restriction.
func (pi PointInfo) Omnidirectional() bool {
	return pi.FOV < 0
}

// Tables bundles the three broadcast tables §4.B requires: observers
// grouped by host tile, indexed by their stable identity, and their
// precomputed effective view heights. In this in-process engine the
// "broadcast" is simply a read-only value shared across worker goroutines;
// runtime.LocalBroadcast provides the same shape for callers that want it
// wrapped as an adapters.Broadcast.
type Tables struct {
	ByKey   map[layer.TileKey][]PointInfo
	ByIndex map[int]PointInfo
	Height  map[int]float64
}

// EffectiveHeight returns the observer's effective view height, or false
// if index is unknown — a caller hitting this after Resolve succeeded
// indicates the §7 ObserverUnknownIndex programming-error condition.
func (t *Tables) EffectiveHeight(index int) (float64, bool) {
	h, ok := t.Height[index]
	return h, ok
}
