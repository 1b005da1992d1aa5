// Package audio implements the audio probe and slice loader: reporting a
// media file's duration and decoding a bounded [start, start+duration]
// window into a mono 16kHz f32 buffer.
//
// Two decode paths are wired: a generic one that shells out to ffmpeg via
// github.com/u2takey/ffmpeg-go, and a native in-process one for Ogg/Opus
// files that avoids spawning a subprocess, built on this repository's own
// Ogg page parser and Opus cgo bridge (see the ogg and opus subpackages).
package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"gonum.org/v1/gonum/stat"

	"github.com/vadpipe/transcriber/internal/audio/ogg"
	"github.com/vadpipe/transcriber/internal/audio/opus"
)

const DefaultSampleRate = 16000

// AudioLoadError wraps a decoder failure, carrying the decoder's stderr
// verbatim when available.
type AudioLoadError struct {
	Ref    string
	Stderr string
	Err    error
}

func (e *AudioLoadError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("failed to load audio %q: %s: %s", e.Ref, e.Err, e.Stderr)
	}
	return fmt.Sprintf("failed to load audio %q: %s", e.Ref, e.Err)
}

func (e *AudioLoadError) Unwrap() error { return e.Err }

// Source probes and loads audio files. It satisfies both the orchestrator's
// Prober and SliceLoader roles.
type Source struct {
	SampleRate int

	oggMu    sync.Mutex
	oggCache map[string][]float32
}

// NewSource returns a Source configured for 16kHz mono output, the rate
// every downstream VAD and transcriber in this repository expects.
func NewSource() *Source {
	return &Source{SampleRate: DefaultSampleRate, oggCache: make(map[string][]float32)}
}

type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe reports the duration, in seconds, of the file referenced by ref.
func (s *Source) Probe(ctx context.Context, ref string) (float64, error) {
	data, err := ffmpeg.Probe(ref)
	if err != nil {
		return 0, &AudioLoadError{Ref: ref, Err: fmt.Errorf("ffprobe failed: %w", err)}
	}

	var pf probeFormat
	if err := json.Unmarshal([]byte(data), &pf); err != nil {
		return 0, &AudioLoadError{Ref: ref, Err: fmt.Errorf("failed to parse ffprobe output: %w", err)}
	}

	dur, err := strconv.ParseFloat(pf.Format.Duration, 64)
	if err != nil {
		return 0, &AudioLoadError{Ref: ref, Err: fmt.Errorf("invalid duration %q: %w", pf.Format.Duration, err)}
	}

	return dur, nil
}

// isNativeOggOpus reports whether ref should take the in-process Ogg/Opus
// decode path rather than shelling out to ffmpeg.
func isNativeOggOpus(ref string) bool {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".ogg", ".opus":
		return true
	default:
		return false
	}
}

// Load decodes the [start, start+duration] window of ref into a mono
// buffer at s.SampleRate, in [-1, 1] f32 samples.
func (s *Source) Load(ctx context.Context, ref string, start, duration float64) ([]float32, error) {
	var samples []float32
	var err error

	if isNativeOggOpus(ref) {
		samples, err = s.loadOggOpus(ref, start, duration)
	} else {
		samples, err = loadViaFFmpeg(ref, start, duration, s.SampleRate)
	}
	if err != nil {
		return nil, err
	}

	logChunkStats(ref, start, duration, samples)

	return samples, nil
}

func loadViaFFmpeg(ref string, start, duration float64, sampleRate int) ([]float32, error) {
	var stdout, stderr bytes.Buffer

	stream := ffmpeg.Input(ref, ffmpeg.KwArgs{
		"ss": fmt.Sprintf("%f", start),
		"t":  fmt.Sprintf("%f", duration),
	}).Output("pipe:", ffmpeg.KwArgs{
		"format": "f32le",
		"ac":     1,
		"ar":     sampleRate,
	}).WithOutput(&stdout).WithErrorOutput(&stderr)

	if err := stream.Run(); err != nil {
		return nil, &AudioLoadError{Ref: ref, Stderr: stderr.String(), Err: err}
	}

	return decodeF32LE(stdout.Bytes()), nil
}

func decodeF32LE(buf []byte) []float32 {
	n := len(buf) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(buf[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// loadOggOpus decodes ref's full PCM stream once per Source and caches it,
// so repeated windowed Load calls against the same file (the orchestrator's
// and chunked detectors' normal access pattern) slice an already-decoded
// buffer instead of re-parsing and re-decoding the whole file each time.
func (s *Source) loadOggOpus(ref string, start, duration float64) ([]float32, error) {
	s.oggMu.Lock()
	all, cached := s.oggCache[ref]
	s.oggMu.Unlock()

	if !cached {
		decoded, err := decodeOggOpusFile(ref, s.SampleRate)
		if err != nil {
			return nil, err
		}
		s.oggMu.Lock()
		s.oggCache[ref] = decoded
		s.oggMu.Unlock()
		all = decoded
	}

	startIdx := int(start * float64(s.SampleRate))
	endIdx := int((start + duration) * float64(s.SampleRate))
	if startIdx > len(all) {
		startIdx = len(all)
	}
	if endIdx > len(all) {
		endIdx = len(all)
	}
	if endIdx < startIdx {
		endIdx = startIdx
	}

	out := make([]float32, endIdx-startIdx)
	copy(out, all[startIdx:endIdx])

	return out, nil
}

func decodeOggOpusFile(ref string, sampleRate int) ([]float32, error) {
	f, err := os.Open(ref)
	if err != nil {
		return nil, &AudioLoadError{Ref: ref, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer f.Close()

	reader, _, err := ogg.NewReaderWith(f)
	if err != nil {
		return nil, &AudioLoadError{Ref: ref, Err: fmt.Errorf("failed to create ogg reader: %w", err)}
	}

	dec, err := opus.NewDecoder(sampleRate, 1)
	if err != nil {
		return nil, &AudioLoadError{Ref: ref, Err: fmt.Errorf("failed to create opus decoder: %w", err)}
	}
	defer func() {
		if err := dec.Destroy(); err != nil {
			slog.Warn("failed to destroy opus decoder", slog.String("err", err.Error()))
		}
	}()

	pcmBuf := make([]float32, 5760) // 120ms @ 48kHz upper bound per Opus frame
	var all []float32

	for {
		data, hdr, err := reader.ParseNextPage()
		if err != nil {
			break
		}
		if hdr.GranulePosition == 0 {
			continue
		}

		n, err := dec.Decode(data, pcmBuf)
		if err != nil {
			slog.Warn("failed to decode opus page", slog.String("err", err.Error()))
			continue
		}
		all = append(all, pcmBuf[:n]...)
	}

	return all, nil
}

// logChunkStats logs the RMS amplitude and sample count of a decoded chunk,
// useful to spot silent windows when tuning VAD thresholds.
func logChunkStats(ref string, start, duration float64, samples []float32) {
	if len(samples) == 0 {
		return
	}

	f64 := make([]float64, len(samples))
	for i, v := range samples {
		f64[i] = float64(v)
	}

	rms := math.Sqrt(stat.Mean(squareAll(f64), nil))

	slog.Debug("decoded audio chunk",
		slog.String("ref", ref),
		slog.Float64("start", start),
		slog.Float64("duration", duration),
		slog.Int("samples", len(samples)),
		slog.Float64("rms", rms))
}

func squareAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * x
	}
	return out
}
