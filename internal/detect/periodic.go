package detect

import (
	"context"
	"fmt"

	"github.com/vadpipe/transcriber/internal/timestamp"
)

// minPeriodicSegmentDuration is the minimum length a final, truncated
// periodic entry must have to be emitted.
const minPeriodicSegmentDuration = 1.0

// Periodic is a trivial detector that marks every PeriodicDuration
// seconds as speech, regardless of actual audio content. Useful as a
// VAD-free baseline or a fallback when a neural detector is unavailable.
type Periodic struct {
	Prober Prober

	// PeriodicDuration is the fixed length, in seconds, of each emitted
	// interval.
	PeriodicDuration float64
}

// NewPeriodic returns a Periodic detector emitting fixed-length windows.
func NewPeriodic(prober Prober, periodicDuration float64) *Periodic {
	return &Periodic{Prober: prober, PeriodicDuration: periodicDuration}
}

func (p *Periodic) Detect(ctx context.Context, ref string) (timestamp.List, error) {
	duration, err := p.Prober.Probe(ctx, ref)
	if err != nil {
		return nil, &DetectorError{Err: fmt.Errorf("failed to probe audio: %w", err)}
	}

	var out timestamp.List

	start := 0.0
	for start < duration {
		end := start + p.PeriodicDuration
		if end > duration {
			end = duration
		}

		if end-start >= minPeriodicSegmentDuration {
			out = append(out, timestamp.Interval{Start: start, End: end})
		}

		start = end
	}

	return out, nil
}
