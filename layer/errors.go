package layer

import "errors"

// ErrInvalidLayer is the §7 InvalidLayer error kind: the layer's bounds
// are not a well-formed rectangle, its metadata is missing, or it has no
// tiles at all.
var ErrInvalidLayer = errors.New("layer: invalid layer")
