package runner

import "errors"

// Error taxonomy shared by the resolver and the generators.
// Callers match with errors.Is; every returned error wraps exactly one of these.
var (
	// ErrAmbiguousKey reports a key defined by two or more inheritance layers.
	ErrAmbiguousKey = errors.New("key is inherited from multiple layers")
	// ErrMissingKey reports a key absent from every layer and from the defaults,
	// or a load-indexed list with no entry for the run's load.
	ErrMissingKey = errors.New("missing key")
	// ErrUnrecognizedShape reports a sub-table matching none of the known shapes,
	// or an unknown enumerated name.
	ErrUnrecognizedShape = errors.New("unrecognized configuration shape")
	// ErrNoSuchProfile reports a run naming a profile its aspect section lacks.
	ErrNoSuchProfile = errors.New("no such profile")
	// ErrBadValue reports a value of the wrong type or outside its domain.
	ErrBadValue = errors.New("bad value")
)
