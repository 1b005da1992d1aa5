package orchestrator

import (
	"errors"
	"fmt"
)

// ErrInvalidStrategy is a programmer error: an unknown NonSpeechStrategy
// value was configured. It is not recoverable and should fail fast.
var ErrInvalidStrategy = errors.New("invalid non-speech strategy")

// ErrInvalidInterval is raised when the orchestrator observes an interval
// with start > end or a NaN bound after normalization.
var ErrInvalidInterval = errors.New("invalid interval")

// AudioLoadError wraps a failure from the audio probe or slice loader.
type AudioLoadError struct{ Err error }

func (e *AudioLoadError) Error() string { return fmt.Sprintf("audio load failed: %s", e.Err) }
func (e *AudioLoadError) Unwrap() error { return e.Err }

// DetectorError wraps a failure from the speech detector.
type DetectorError struct{ Err error }

func (e *DetectorError) Error() string { return fmt.Sprintf("speech detection failed: %s", e.Err) }
func (e *DetectorError) Unwrap() error { return e.Err }

// TranscriberError wraps a failure from the transcriber callback.
type TranscriberError struct{ Err error }

func (e *TranscriberError) Error() string { return fmt.Sprintf("transcription failed: %s", e.Err) }
func (e *TranscriberError) Unwrap() error { return e.Err }
