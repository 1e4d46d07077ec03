// Package layer implements the §3 Data Model: the tile grid, its metadata,
// and the elevation/visibility tiles that make up an engine run.
package layer

import "fmt"

// TileKey identifies a tile within a layer's regular grid by column and row.
type TileKey struct {
	Col, Row int
}

func (k TileKey) String() string {
	return fmt.Sprintf("(%d,%d)", k.Col, k.Row)
}

// KeyBounds is the rectangle of tile keys covered by a layer: all keys with
// Col in [Min.Col, Max.Col] and Row in [Min.Row, Max.Row].
type KeyBounds struct {
	Min, Max TileKey
}

// Contains reports whether k falls inside b.
func (b KeyBounds) Contains(k TileKey) bool {
	return k.Col >= b.Min.Col && k.Col <= b.Max.Col &&
		k.Row >= b.Min.Row && k.Row <= b.Max.Row
}

// Valid reports whether b describes a well-formed, non-empty rectangle.
func (b KeyBounds) Valid() bool {
	return b.Min.Col <= b.Max.Col && b.Min.Row <= b.Max.Row
}

// Keys enumerates every TileKey inside b in ascending row-major order.
func (b KeyBounds) Keys() []TileKey {
	if !b.Valid() {
		return nil
	}
	keys := make([]TileKey, 0, (b.Max.Row-b.Min.Row+1)*(b.Max.Col-b.Min.Col+1))
	for row := b.Min.Row; row <= b.Max.Row; row++ {
		for col := b.Min.Col; col <= b.Max.Col; col++ {
			keys = append(keys, TileKey{Col: col, Row: row})
		}
	}
	return keys
}
