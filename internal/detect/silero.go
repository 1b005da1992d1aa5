package detect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streamer45/silero-vad-go/speech"

	"github.com/vadpipe/transcriber/internal/timestamp"
)

const (
	// DefaultMaxProcessingChunk bounds how much audio is held in memory at
	// once: one chunk of 60 minutes of 16kHz mono f32 is ~230MB.
	DefaultMaxProcessingChunk = 3600.0
	// DefaultSpeechThreshold is Silero's own recommended cutoff.
	DefaultSpeechThreshold = 0.3

	sileroSampleRate = 16000
)

// SileroConfig configures the chunked Silero-backed detector.
type SileroConfig struct {
	ModelPath            string
	Threshold            float32
	WindowSize           int
	SpeechPadMs          int
	MinSilenceDurationMs int

	// MaxProcessingChunk bounds the length, in seconds, of any single
	// buffer handed to the underlying VAD model.
	MaxProcessingChunk float64
}

func (c *SileroConfig) setDefaults() {
	if c.Threshold == 0 {
		c.Threshold = DefaultSpeechThreshold
	}
	if c.WindowSize == 0 {
		c.WindowSize = 1536
	}
	if c.MaxProcessingChunk == 0 {
		c.MaxProcessingChunk = DefaultMaxProcessingChunk
	}
}

// Silero is a bounded-memory driver over the streamer45/silero-vad-go
// neural VAD: it slices audio into windows no larger than
// MaxProcessingChunk, runs the model over each, and rebases the
// per-window speech intervals into global time.
type Silero struct {
	Prober      Prober
	SliceLoader SliceLoader

	cfg SileroConfig
}

// NewSilero constructs a Silero detector. The underlying ONNX model is
// loaded afresh on each Detect call and released when that call returns.
func NewSilero(prober Prober, loader SliceLoader, cfg SileroConfig) *Silero {
	cfg.setDefaults()
	return &Silero{Prober: prober, SliceLoader: loader, cfg: cfg}
}

func (s *Silero) Detect(ctx context.Context, ref string) (timestamp.List, error) {
	duration, err := s.Prober.Probe(ctx, ref)
	if err != nil {
		return nil, &DetectorError{Err: fmt.Errorf("failed to probe audio: %w", err)}
	}

	detector, err := speech.NewDetector(speech.DetectorConfig{
		ModelPath:            s.cfg.ModelPath,
		SampleRate:           sileroSampleRate,
		WindowSize:           s.cfg.WindowSize,
		Threshold:            s.cfg.Threshold,
		SpeechPadMs:          s.cfg.SpeechPadMs,
		MinSilenceDurationMs: s.cfg.MinSilenceDurationMs,
	})
	if err != nil {
		return nil, &DetectorError{Err: fmt.Errorf("failed to create speech detector: %w", err)}
	}
	defer func() {
		if err := detector.Destroy(); err != nil {
			slog.Warn("failed to destroy speech detector", slog.String("err", err.Error()))
		}
	}()

	var result timestamp.List
	chunkStart := 0.0

	for chunkStart < duration {
		chunkDur := duration - chunkStart
		if chunkDur > s.cfg.MaxProcessingChunk {
			chunkDur = s.cfg.MaxProcessingChunk
		}

		slog.Debug("processing VAD chunk",
			slog.String("from", timestamp.FormatTimestamp(chunkStart)),
			slog.String("to", timestamp.FormatTimestamp(chunkStart+chunkDur)))

		buf, err := s.SliceLoader.Load(ctx, ref, chunkStart, chunkDur)
		if err != nil {
			return nil, &DetectorError{Err: fmt.Errorf("failed to load audio chunk: %w", err)}
		}

		if err := detector.Reset(); err != nil {
			return nil, &DetectorError{Err: fmt.Errorf("failed to reset speech detector: %w", err)}
		}

		segments, err := detector.Detect(buf)
		if err != nil {
			return nil, &DetectorError{Err: fmt.Errorf("failed to detect speech: %w", err)}
		}

		// The streamer45 binding reports SpeechStartAt/SpeechEndAt already
		// in seconds (unlike torch.hub-style models, which return sample
		// offsets requiring a Multiply by 1/sampling_rate); Multiply is a
		// no-op here but kept so a future sample-indexed VAD backend only
		// needs to change this one call.
		local := make(timestamp.List, len(segments))
		for i, seg := range segments {
			local[i] = timestamp.Interval{Start: float64(seg.SpeechStartAt), End: float64(seg.SpeechEndAt)}
		}
		local = timestamp.Multiply(local, 1.0)

		// adjust_timestamp's upstream reference passes chunkStart+chunkDur
		// as the clamp bound; chunkDur is used here instead since local
		// speech times are already bounded to [0, chunkDur], so neither
		// value ever clamps or drops an interval.
		maxSourceTime := chunkDur
		adjusted := timestamp.Adjust(local, chunkStart, &maxSourceTime)

		result = append(result, adjusted...)
		chunkStart += chunkDur
	}

	return result, nil
}
