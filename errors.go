package frame

import "errors"

// Sentinel errors returned by the orchestrator. Wrap-aware callers should
// test with errors.Is.
var (
	// ErrNotFound reports a lookup miss: a pool handle whose entry was
	// removed, a pipeline kind that was never built, or an unknown layout tag.
	ErrNotFound = errors.New("frame: not found")

	// ErrFrameLive reports a mutation attempted while a frame is in flight.
	// Pools, pipelines, and text buffers may only be mutated between frames.
	ErrFrameLive = errors.New("frame: frame in flight")

	// ErrNoAdapter reports that no GPU adapter compatible with the target
	// surface could be found. This is fatal: the process cannot render.
	ErrNoAdapter = errors.New("frame: no compatible GPU adapter")

	// ErrReleased reports use of an object after Release.
	ErrReleased = errors.New("frame: released")
)
