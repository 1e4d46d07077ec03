// Package bus implements the Ray Packet Bus — spec §4.D: a concurrency-safe,
// duplicate-tolerant accumulator that gathers outgoing ray packets during an
// iteration and hands them to the driver once it drains between iterations.
package bus

import (
	"github.com/achilleasa/go-viewshed/kernel"
	"github.com/achilleasa/go-viewshed/layer"
)

// Message is a packet emitted by the kernel at a tile boundary, addressed to
// the neighbor across Direction.
type Message struct {
	TargetKey           layer.TileKey
	CausalObserverIndex int
	Direction           kernel.Direction
	Rays                []kernel.Ray
}
