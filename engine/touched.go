package engine

import (
	"sync"

	"github.com/achilleasa/go-viewshed/layer"
)

// TouchedKeys is the concurrency-safe progress-monitoring hook spec §4.E
// describes: "a caller-provided optional touchedKeys set accumulates every
// tile key ever addressed". Tile tasks run on separate goroutines within an
// iteration, so additions must be synchronized.
type TouchedKeys struct {
	mu   sync.Mutex
	keys map[layer.TileKey]struct{}
}

// NewTouchedKeys returns an empty tracker ready to be passed as
// Config.TouchedKeys.
func NewTouchedKeys() *TouchedKeys {
	return &TouchedKeys{keys: make(map[layer.TileKey]struct{})}
}

func (t *TouchedKeys) add(k layer.TileKey) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.keys[k] = struct{}{}
	t.mu.Unlock()
}

// Keys returns every tile key added so far, in no particular order.
func (t *TouchedKeys) Keys() []layer.TileKey {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]layer.TileKey, 0, len(t.keys))
	for k := range t.keys {
		out = append(out, k)
	}
	return out
}
