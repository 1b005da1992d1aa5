// Package detect implements the speech detector abstraction and its two
// concrete variants: a trivial fixed-window Periodic detector and a
// chunked, bounded-memory Silero-backed neural detector.
package detect

import (
	"context"

	"github.com/vadpipe/transcriber/internal/timestamp"
)

// Prober reports a media file's duration in seconds. Implemented by
// internal/audio.Source.
type Prober interface {
	Probe(ctx context.Context, ref string) (float64, error)
}

// SliceLoader decodes a bounded window of a media file into a mono f32
// buffer at the given sample rate. Implemented by internal/audio.Source.
type SliceLoader interface {
	Load(ctx context.Context, ref string, start, duration float64) ([]float32, error)
}

// Detector produces a speech interval list, in global seconds, for a
// whole audio file. Implementations own any internal chunking; the
// orchestrator consumes the returned list as a whole.
type Detector interface {
	Detect(ctx context.Context, ref string) (timestamp.List, error)
}

// DetectorError wraps a failure raised by a Detector implementation.
type DetectorError struct {
	Err error
}

func (e *DetectorError) Error() string { return "speech detection failed: " + e.Err.Error() }
func (e *DetectorError) Unwrap() error { return e.Err }
