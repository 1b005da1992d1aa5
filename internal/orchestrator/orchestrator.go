// Package orchestrator implements the voice-activity-driven transcription
// orchestrator: it drives a speech Detector through the timestamp algebra,
// materializes bounded audio buffers through a Prober/SliceLoader, invokes
// an opaque TranscribeFunc per window, and stitches the results back into
// one global Result.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/vadpipe/transcriber/internal/detect"
	"github.com/vadpipe/transcriber/internal/timestamp"
)

// Prober reports a media file's duration, in seconds.
type Prober interface {
	Probe(ctx context.Context, ref string) (float64, error)
}

// SliceLoader decodes a bounded window of a media file into a mono f32
// buffer.
type SliceLoader interface {
	Load(ctx context.Context, ref string, start, duration float64) ([]float32, error)
}

// TranscribeFunc is the opaque transcription callback: it converts a
// bounded audio buffer plus an optional textual prompt into an Output.
type TranscribeFunc func(ctx context.Context, buffer []float32, prompt string) (Output, error)

// Orchestrator drives detection, normalization, and transcription for one
// audio file at a time. It is not goroutine-safe to invoke Transcribe
// concurrently on the same Orchestrator against overlapping state;
// sequentiality is a correctness requirement, not an implementation
// accident, because the prompt window for call k depends on the completed
// results of calls < k.
type Orchestrator struct {
	Prober      Prober
	SliceLoader SliceLoader
	Detector    detect.Detector
	Params      Params
}

// New constructs an Orchestrator from its collaborators and tunables.
func New(prober Prober, loader SliceLoader, detector detect.Detector, params Params) *Orchestrator {
	return &Orchestrator{Prober: prober, SliceLoader: loader, Detector: detector, Params: params}
}

// Transcribe runs the full detect → normalize → transcribe → stitch
// pipeline for ref. It does not retry, does not swallow collaborator
// errors, and returns no partial Result on failure.
func (o *Orchestrator) Transcribe(ctx context.Context, ref string, transcribe TranscribeFunc) (Result, error) {
	if !o.Params.NonSpeechStrategy.IsValid() {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidStrategy, o.Params.NonSpeechStrategy)
	}

	raw, err := o.Detector.Detect(ctx, ref)
	if err != nil {
		return Result{}, &DetectorError{Err: err}
	}

	merged, err := o.normalize(ctx, ref, raw)
	if err != nil {
		return Result{}, err
	}

	return o.run(ctx, ref, merged, transcribe)
}

// normalize applies padding, merging, and the configured non-speech
// strategy to raw, yielding the sorted, non-overlapping schedule of
// windows the orchestrator will transcribe.
func (o *Orchestrator) normalize(ctx context.Context, ref string, raw timestamp.List) (timestamp.List, error) {
	p := o.Params

	sorted := make(timestamp.List, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	padded := timestamp.Pad(sorted, p.SegmentPaddingLeft, p.SegmentPaddingRight)

	maxMergeGap := p.MaxSilentPeriod
	maxMergeSize := p.MaxMergeSize
	minForceMergeGap := p.MinForceMergeGap
	maxForceMergeSize := maxMergeSize * p.ForceMergeSegmentMultiplier

	merged := timestamp.Merge(padded, &maxMergeGap, &maxMergeSize, &minForceMergeGap, &maxForceMergeSize)

	if p.NonSpeechStrategy == Skip {
		return merged, nil
	}

	totalDuration, err := o.Prober.Probe(ctx, ref)
	if err != nil {
		return nil, &AudioLoadError{Err: err}
	}

	switch p.NonSpeechStrategy {
	case CreateSegment:
		return timestamp.FillGaps(merged, &totalDuration, &maxMergeSize), nil
	case ExpandSegment:
		return timestamp.ExpandGaps(merged, &totalDuration), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStrategy, p.NonSpeechStrategy)
	}
}

// run iterates the normalized schedule, transcribing each window in order
// and folding the rebased output into a single Result.
func (o *Orchestrator) run(ctx context.Context, ref string, merged timestamp.List, transcribe TranscribeFunc) (Result, error) {
	var result Result
	languageVotes := make(map[string]int)
	var languageOrder []string
	window := newPromptWindow(o.Params.MaxPromptWindow, o.Params.PromptNoSpeechProb)

	for _, s := range merged {
		if math.IsNaN(s.Start) || math.IsNaN(s.End) || s.Start > s.End {
			return Result{}, fmt.Errorf("%w: [%f, %f]", ErrInvalidInterval, s.Start, s.End)
		}

		dur := s.End - s.Start
		if dur < o.Params.MinSegmentDuration {
			continue
		}

		buffer, err := o.SliceLoader.Load(ctx, ref, s.Start, dur)
		if err != nil {
			return Result{}, &AudioLoadError{Err: err}
		}

		prompt, _ := window.prompt()

		slog.Debug("running transcriber",
			slog.String("from", timestamp.FormatTimestamp(s.Start)),
			slog.String("to", timestamp.FormatTimestamp(s.End)),
			slog.Float64("duration", dur),
			slog.Float64("expandAmount", s.ExpandAmount),
			slog.String("prompt", prompt))

		out, err := transcribe(ctx, buffer, prompt)
		if err != nil {
			return Result{}, &TranscriberError{Err: err}
		}

		maxSourceTime := dur
		rebased := adjustSegments(out.Segments, s.Start, &maxSourceTime)

		if s.ExpandAmount > 0 {
			threshold := s.Start + (dur - s.ExpandAmount)
			for i := range rebased {
				if rebased[i].End > threshold {
					rebased[i].ExpandAmount = rebased[i].End - threshold
				}
			}
		}

		result.Text += out.Text
		result.Segments = append(result.Segments, rebased...)

		if _, seen := languageVotes[out.Language]; !seen {
			languageOrder = append(languageOrder, out.Language)
		}
		languageVotes[out.Language]++

		window.update(rebased, s.End)
	}

	result.Language = pickLanguage(languageVotes, languageOrder)

	return result, nil
}

// adjustSegments rebases transcriber output segments from buffer-local
// time into global time, the Segment-typed sibling of
// timestamp.Adjust (which operates on bare Interval values).
func adjustSegments(segments []Segment, addSeconds float64, maxSourceTime *float64) []Segment {
	out := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if maxSourceTime != nil {
			if seg.Start > *maxSourceTime {
				continue
			}
			if seg.End > *maxSourceTime {
				seg.End = *maxSourceTime
			}
		}
		seg.Start += addSeconds
		seg.End += addSeconds
		out = append(out, seg)
	}
	return out
}

// pickLanguage returns the language with the most votes, breaking ties by
// first occurrence in languageOrder. Returns "" if no votes were cast.
func pickLanguage(votes map[string]int, order []string) string {
	var best string
	var bestCount int
	for _, lang := range order {
		if votes[lang] > bestCount {
			best = lang
			bestCount = votes[lang]
		}
	}
	return best
}
