package levelset

import "errors"

var (
	// ErrNotComputed is returned when Update is called before any Compute.
	ErrNotComputed = errors.New("levelset: update called before compute")

	// ErrComputed is returned when Compute is called on an engine whose band
	// has already been computed.
	ErrComputed = errors.New("levelset: compute called twice")
)
