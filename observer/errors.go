package observer

import "errors"

// ErrObserverOutOfLayout is the §7 ObserverOutOfLayout error kind: an
// observer coordinate does not map to a single tile in the layer.
var ErrObserverOutOfLayout = errors.New("observer: coordinate does not map to a single tile")

// ErrUnknownIndex is the §7 ObserverUnknownIndex error kind: an internal
// invariant violation where an index is absent from the broadcast tables.
// It is always fatal and indicates a programming error, never user input.
var ErrUnknownIndex = errors.New("observer: unknown observer index")
