// Package azure adapts the Azure Cognitive Services speech SDK into an
// orchestrator.TranscribeFunc. Unlike whisper.cpp's initial_prompt, Azure
// has no free-text prompt parameter; carried-over context is instead fed
// in as phrase-list hints, which bias recognition toward words it has
// already seen without guaranteeing they appear verbatim in the output.
package azure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/Microsoft/cognitive-services-speech-sdk-go/audio"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/common"
	"github.com/Microsoft/cognitive-services-speech-sdk-go/speech"

	"github.com/vadpipe/transcriber/internal/orchestrator"
)

const (
	audioSampleRate = 16000
	audioBitDepth   = 16
	audioChannels   = 1

	// maxPhraseHints bounds how many words from the carried-over prompt are
	// fed to the phrase list grammar, to keep bias requests small.
	maxPhraseHints = 32
)

// RecognizerConfig configures a Recognizer.
type RecognizerConfig struct {
	SpeechKey    string
	SpeechRegion string
	Language     string
	DataDir      string
}

func (c RecognizerConfig) IsValid() error {
	if c.SpeechKey == "" {
		return fmt.Errorf("invalid SpeechKey: should not be empty")
	}
	if c.SpeechRegion == "" {
		return fmt.Errorf("invalid SpeechRegion: should not be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("invalid DataDir: should not be empty")
	}
	return nil
}

// Recognizer drives one transcription window at a time through Azure's
// continuous recognition API. A fresh recognizer session is created per
// call since the Go SDK's push stream cannot be reliably flushed and
// reused between windows.
type Recognizer struct {
	cfg          RecognizerConfig
	speechConfig *speech.SpeechConfig
}

// NewRecognizer validates cfg and opens a reusable SpeechConfig.
func NewRecognizer(cfg RecognizerConfig) (*Recognizer, error) {
	if err := cfg.IsValid(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	speechConfig, err := speech.NewSpeechConfigFromSubscription(cfg.SpeechKey, cfg.SpeechRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech config: %w", err)
	}
	if err := speechConfig.SetProperty(common.SpeechLogFilename, filepath.Join(cfg.DataDir, "azure.log")); err != nil {
		return nil, fmt.Errorf("failed to set log property: %w", err)
	}
	if cfg.Language != "" {
		if err := speechConfig.SetSpeechRecognitionLanguage(cfg.Language); err != nil {
			return nil, fmt.Errorf("failed to set recognition language: %w", err)
		}
	}

	return &Recognizer{cfg: cfg, speechConfig: speechConfig}, nil
}

// Destroy releases the underlying SpeechConfig.
func (r *Recognizer) Destroy() error {
	if r.speechConfig != nil {
		r.speechConfig.Close()
	}
	return nil
}

// Transcribe satisfies orchestrator.TranscribeFunc.
func (r *Recognizer) Transcribe(ctx context.Context, samples []float32, prompt string) (orchestrator.Output, error) {
	if err := ctx.Err(); err != nil {
		return orchestrator.Output{}, err
	}

	inputDuration := time.Duration(float32(len(samples))/float32(audioSampleRate)) * time.Second

	audioStream, err := audio.CreatePushAudioInputStream()
	if err != nil {
		return orchestrator.Output{}, fmt.Errorf("failed to create audio stream: %w", err)
	}
	audioConfig, err := audio.NewAudioConfigFromStreamInput(audioStream)
	if err != nil {
		return orchestrator.Output{}, fmt.Errorf("failed to create audio config: %w", err)
	}
	recognizer, err := speech.NewSpeechRecognizerFromConfig(r.speechConfig, audioConfig)
	if err != nil {
		return orchestrator.Output{}, fmt.Errorf("failed to create speech recognizer: %w", err)
	}
	defer func() {
		audioStream.CloseStream()
		audioConfig.Close()
		recognizer.Close()
	}()

	if hints := phraseHints(prompt); len(hints) > 0 {
		grammar, err := speech.NewPhraseListGrammarFromRecognizer(recognizer)
		if err != nil {
			slog.Warn("failed to create phrase list grammar", slog.String("err", err.Error()))
		} else {
			defer grammar.Close()
			for _, hint := range hints {
				if err := grammar.AddPhrase(hint); err != nil {
					slog.Warn("failed to add phrase hint", slog.String("err", err.Error()))
				}
			}
		}
	}

	type result struct {
		text  string
		start time.Duration
		end   time.Duration
	}

	resultsCh := make(chan result, 1)
	errCh := make(chan error, 1)
	eosCh := make(chan struct{})

	recognizer.Recognized(func(event speech.SpeechRecognitionEventArgs) {
		defer event.Close()

		if event.Result.Reason == common.NoMatch {
			slog.Debug("no match")
			return
		}
		if event.Result.Reason == common.Canceled {
			slog.Debug("canceled")
			return
		}
		if len(event.Result.Text) == 0 {
			slog.Debug("empty result")
			return
		}

		resultsCh <- result{
			text:  event.Result.Text,
			start: event.Result.Offset,
			end:   event.Result.Offset + event.Result.Duration,
		}
	})
	recognizer.Canceled(func(event speech.SpeechRecognitionCanceledEventArgs) {
		defer event.Close()
		if event.Reason == common.EndOfStream {
			close(eosCh)
		} else if event.Reason == common.Error {
			errCh <- errors.New(event.ErrorDetails)
		}
	})

	if err := <-recognizer.StartContinuousRecognitionAsync(); err != nil {
		return orchestrator.Output{}, fmt.Errorf("failed to start recognizer: %w", err)
	}
	defer func() {
		if err := <-recognizer.StopContinuousRecognitionAsync(); err != nil {
			slog.Error("failed to stop recognizer", slog.String("err", err.Error()))
		}
	}()

	if err := audioStream.Write(f32PCMToWAV(samples)); err != nil {
		return orchestrator.Output{}, fmt.Errorf("failed to write audio data: %w", err)
	}
	audioStream.CloseStream()

	timeoutCh := time.After(max(inputDuration*2, 10*time.Second))

	var out orchestrator.Output
	for {
		select {
		case res := <-resultsCh:
			out.Text += res.text
			out.Segments = append(out.Segments, orchestrator.Segment{
				Start: res.start.Seconds(),
				End:   res.end.Seconds(),
				Text:  res.text,
			})
		case <-timeoutCh:
			return orchestrator.Output{}, fmt.Errorf("timed out waiting for transcription")
		case err := <-errCh:
			return orchestrator.Output{}, fmt.Errorf("transcription failed: %w", err)
		case <-eosCh:
			out.Language = r.cfg.Language
			slog.Debug("done transcribing", slog.Int("numSegments", len(out.Segments)), slog.Duration("inputDuration", inputDuration))
			return out, nil
		}
	}
}

// phraseHints splits the carried-over prompt on whitespace and keeps its
// last maxPhraseHints words (repeated words included) to feed Azure's
// phrase list grammar.
func phraseHints(prompt string) []string {
	if prompt == "" {
		return nil
	}

	fields := strings.Fields(prompt)
	if len(fields) > maxPhraseHints {
		fields = fields[len(fields)-maxPhraseHints:]
	}
	return fields
}
