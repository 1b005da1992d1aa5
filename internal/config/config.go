// Package config holds the orchestrator CLI's configuration surface: a
// plain struct with IsValid/SetDefaults methods and a FromEnv constructor,
// layered underneath cobra flags and a viper-backed config file by
// cmd/transcriber.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/vadpipe/transcriber/internal/orchestrator"
)

// Engine selects which transcription backend produces segments.
type Engine string

const (
	EngineWhisperCPP Engine = "whisper.cpp"
	EngineAzure      Engine = "azure"
)

func (e Engine) IsValid() bool {
	switch e {
	case EngineWhisperCPP, EngineAzure:
		return true
	default:
		return false
	}
}

// DetectorKind selects which speech Detector drives the orchestrator.
type DetectorKind string

const (
	DetectorPeriodic DetectorKind = "periodic"
	DetectorSilero   DetectorKind = "silero"
)

func (d DetectorKind) IsValid() bool {
	switch d {
	case DetectorPeriodic, DetectorSilero:
		return true
	default:
		return false
	}
}

const (
	EngineDefault       = EngineWhisperCPP
	DetectorKindDefault = DetectorSilero
	NumThreadsDefault   = 2

	PeriodicDurationDefault = 30.0
)

// Config is the orchestrator CLI's full configuration surface.
type Config struct {
	// AudioRef is the path or URL handed to the Prober/SliceLoader.
	AudioRef string
	LogLevel string
	DataDir  string

	Engine     Engine
	NumThreads int

	WhisperModelFile string
	WhisperLanguage  string

	AzureSpeechKey    string
	AzureSpeechRegion string
	AzureLanguage     string

	Detector         DetectorKind
	PeriodicDuration float64

	SileroModelPath            string
	SileroThreshold            float32
	SileroWindowSize           int
	SileroSpeechPadMs          int
	SileroMinSilenceDurationMs int
	SileroMaxProcessingChunk   float64

	Orchestrator orchestrator.Params

	LedgerPath string
}

func (cfg Config) IsValid() error {
	if cfg.AudioRef == "" {
		return fmt.Errorf("AudioRef cannot be empty")
	}

	if !cfg.Engine.IsValid() {
		return fmt.Errorf("Engine value is not valid")
	}
	if !cfg.Detector.IsValid() {
		return fmt.Errorf("Detector value is not valid")
	}

	if numCPU := runtime.NumCPU(); cfg.NumThreads < 1 || cfg.NumThreads > numCPU {
		return fmt.Errorf("NumThreads should be in the range [1, %d]", numCPU)
	}

	switch cfg.Engine {
	case EngineWhisperCPP:
		if cfg.WhisperModelFile == "" {
			return fmt.Errorf("WhisperModelFile cannot be empty")
		}
	case EngineAzure:
		if cfg.AzureSpeechKey == "" {
			return fmt.Errorf("AzureSpeechKey cannot be empty")
		}
		if cfg.AzureSpeechRegion == "" {
			return fmt.Errorf("AzureSpeechRegion cannot be empty")
		}
	}

	if cfg.Detector == DetectorSilero && cfg.SileroModelPath == "" {
		return fmt.Errorf("SileroModelPath cannot be empty")
	}

	if !cfg.Orchestrator.NonSpeechStrategy.IsValid() {
		return fmt.Errorf("Orchestrator.NonSpeechStrategy value is not valid")
	}

	if cfg.LedgerPath == "" {
		return fmt.Errorf("LedgerPath cannot be empty")
	}

	return nil
}

func (cfg *Config) SetDefaults() {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.Engine == "" {
		cfg.Engine = EngineDefault
	}
	if cfg.Detector == "" {
		cfg.Detector = DetectorKindDefault
	}
	if cfg.NumThreads == 0 {
		cfg.NumThreads = max(1, min(NumThreadsDefault, runtime.NumCPU()))
	}
	if cfg.PeriodicDuration == 0 {
		cfg.PeriodicDuration = PeriodicDurationDefault
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = "transcriber.db"
	}

	zero := orchestrator.Params{}
	if cfg.Orchestrator == zero {
		cfg.Orchestrator = orchestrator.DefaultParams()
	}
}

// FromEnv builds a Config from environment variables, using a flat
// VAR_NAME convention. Values left unset by the environment fall through
// to SetDefaults.
func FromEnv() (Config, error) {
	var cfg Config

	cfg.AudioRef = os.Getenv("AUDIO_REF")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	cfg.DataDir = os.Getenv("DATA_DIR")
	cfg.LedgerPath = os.Getenv("LEDGER_PATH")

	if val := os.Getenv("ENGINE"); val != "" {
		cfg.Engine = Engine(val)
	}
	if val := os.Getenv("NUM_THREADS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse NUM_THREADS: %w", err)
		}
		cfg.NumThreads = n
	}

	cfg.WhisperModelFile = os.Getenv("WHISPER_MODEL_FILE")
	cfg.WhisperLanguage = os.Getenv("WHISPER_LANGUAGE")

	cfg.AzureSpeechKey = os.Getenv("AZURE_SPEECH_KEY")
	cfg.AzureSpeechRegion = os.Getenv("AZURE_SPEECH_REGION")
	cfg.AzureLanguage = os.Getenv("AZURE_LANGUAGE")

	if val := os.Getenv("DETECTOR"); val != "" {
		cfg.Detector = DetectorKind(val)
	}
	if val := os.Getenv("PERIODIC_DURATION"); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse PERIODIC_DURATION: %w", err)
		}
		cfg.PeriodicDuration = f
	}

	cfg.SileroModelPath = os.Getenv("SILERO_MODEL_PATH")

	cfg.Orchestrator = orchestrator.DefaultParams()

	return cfg, nil
}
