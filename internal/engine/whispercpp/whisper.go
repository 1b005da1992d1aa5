// Package whispercpp adapts whisper.cpp's C API into an
// orchestrator.TranscribeFunc, driving one model context per process and
// one whisper_full call per window handed to it.
package whispercpp

// #cgo LDFLAGS: -l:libwhisper.a -lm -lstdc++
// #include <whisper.h>
// #include <stdlib.h>
import "C"

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/vadpipe/transcriber/internal/orchestrator"
)

// Config configures a whisper.cpp Context.
type Config struct {
	// ModelFile is the path to the GGML model to load.
	ModelFile string
	// NumThreads is the number of system threads whisper_full may use.
	NumThreads int
	// Language is the forced transcription language, or "auto" to let
	// whisper.cpp detect it from the audio.
	Language string
}

func (c Config) IsValid() error {
	if c == (Config{}) {
		return fmt.Errorf("invalid empty config")
	}

	if c.ModelFile == "" {
		return fmt.Errorf("invalid ModelFile: should not be empty")
	}

	if numCPU := runtime.NumCPU(); c.NumThreads < 1 || c.NumThreads > numCPU {
		return fmt.Errorf("invalid NumThreads: should be in the range [1, %d]", numCPU)
	}

	if _, err := os.Stat(c.ModelFile); err != nil {
		return fmt.Errorf("invalid ModelFile: failed to stat model file: %w", err)
	}

	return nil
}

// Context wraps a loaded whisper.cpp model. It is not safe for concurrent
// use: whisper_full mutates state owned by the C context.
type Context struct {
	cfg Config
	ctx *C.struct_whisper_context
}

// NewContext loads the GGML model named by cfg.ModelFile.
func NewContext(cfg Config) (*Context, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}
	if cfg.Language == "" {
		cfg.Language = "auto"
	}

	path := C.CString(cfg.ModelFile)
	defer C.free(unsafe.Pointer(path))

	ctx := C.whisper_init_from_file(path)
	if ctx == nil {
		return nil, fmt.Errorf("failed to load model file")
	}

	return &Context{cfg: cfg, ctx: ctx}, nil
}

// Destroy releases the underlying C context. It must be called exactly
// once, after which the Context must not be used again.
func (c *Context) Destroy() error {
	if c.ctx == nil {
		return fmt.Errorf("context is not initialized")
	}
	C.whisper_free(c.ctx)
	c.ctx = nil
	return nil
}

// Transcribe satisfies orchestrator.TranscribeFunc. It is not goroutine-safe
// to call concurrently against the same Context, matching the orchestrator's
// own sequential contract.
func (c *Context) Transcribe(ctx context.Context, samples []float32, prompt string) (orchestrator.Output, error) {
	if err := ctx.Err(); err != nil {
		return orchestrator.Output{}, err
	}
	if len(samples) == 0 {
		return orchestrator.Output{}, fmt.Errorf("samples should not be empty")
	}

	params := C.whisper_full_default_params(C.WHISPER_SAMPLING_GREEDY)
	params.no_context = C.bool(false)
	params.n_threads = C.int(c.cfg.NumThreads)
	params.max_len = C.int(8)
	params.split_on_word = C.bool(true)

	lang := C.CString(c.cfg.Language)
	defer C.free(unsafe.Pointer(lang))
	params.language = lang

	var promptC *C.char
	if prompt != "" {
		promptC = C.CString(prompt)
		defer C.free(unsafe.Pointer(promptC))
		params.initial_prompt = promptC
	}

	ret := C.whisper_full(c.ctx, params, (*C.float)(&samples[0]), C.int(len(samples)))
	if ret != 0 {
		return orchestrator.Output{}, fmt.Errorf("whisper_full failed with code %d", ret)
	}

	n := int(C.whisper_full_n_segments(c.ctx))
	segments := make([]orchestrator.Segment, n)
	var text string
	for i := 0; i < n; i++ {
		segText := C.GoString(C.whisper_full_get_segment_text(c.ctx, C.int(i)))
		segments[i] = orchestrator.Segment{
			Start:        float64(C.whisper_full_get_segment_t0(c.ctx, C.int(i))) / 100,
			End:          float64(C.whisper_full_get_segment_t1(c.ctx, C.int(i))) / 100,
			Text:         segText,
			NoSpeechProb: float64(C.whisper_full_get_segment_no_speech_prob(c.ctx, C.int(i))),
		}
		text += segText
	}

	language := C.GoString(C.whisper_lang_str(C.whisper_full_lang_id(c.ctx)))

	return orchestrator.Output{Text: text, Language: language, Segments: segments}, nil
}
