package engine

import (
	"github.com/achilleasa/go-viewshed/layer"
	"github.com/achilleasa/go-viewshed/observer"
	"github.com/achilleasa/go-viewshed/runtime"
)

// The four error kinds are aliases onto the sentinels the packages that
// actually detect each condition already define, rather than a fresh
// errors.New block (renderer/errors.go's flat-var-block style, adapted):
// InvalidLayer is detected in layer/geodesy, ObserverOutOfLayout and
// ObserverUnknownIndex in observer, and SubstrateFailure in runtime.
// Callers can errors.Is against either the package-local sentinel or the
// engine-level alias.
var (
	ErrInvalidLayer         = layer.ErrInvalidLayer
	ErrObserverOutOfLayout  = observer.ErrObserverOutOfLayout
	ErrObserverUnknownIndex = observer.ErrUnknownIndex
	ErrSubstrateFailure     = runtime.ErrSubstrateFailure
)
