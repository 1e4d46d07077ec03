package runtime

import "errors"

// ErrSubstrateFailure marks a transient failure the substrate is expected
// to retry (spec §7: "relies on the substrate to retry transient
// SubstrateFailure"). Pool retries a task whose error wraps this sentinel
// up to MaxRetries times before giving up. Declared here rather than in
// engine to avoid an import cycle (engine depends on runtime.Pool as its
// concrete Substrate); engine/errors.go re-exports it under its own name.
var ErrSubstrateFailure = errors.New("runtime: substrate failure")
