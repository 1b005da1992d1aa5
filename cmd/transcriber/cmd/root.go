// Package cmd wires the orchestrator, audio source, detector, and engine
// together behind a cobra CLI, with flags/env/config-file layering
// provided by viper.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vadpipe/transcriber/internal/audio"
	"github.com/vadpipe/transcriber/internal/config"
	"github.com/vadpipe/transcriber/internal/detect"
	"github.com/vadpipe/transcriber/internal/engine/azure"
	"github.com/vadpipe/transcriber/internal/engine/whispercpp"
	"github.com/vadpipe/transcriber/internal/ledger"
	"github.com/vadpipe/transcriber/internal/orchestrator"
)

var v = viper.New()

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "transcriber [audio file]",
		Short: "Transcribe a long audio file using voice-activity-driven segmentation",
		Args:  cobra.ExactArgs(1),
		RunE:  runTranscribe,
	}

	flags := root.Flags()
	flags.String("engine", string(config.EngineDefault), "transcription engine: whisper.cpp or azure")
	flags.String("detector", string(config.DetectorKindDefault), "speech detector: periodic or silero")
	flags.Int("num-threads", config.NumThreadsDefault, "number of transcription threads")
	flags.String("whisper-model-file", "", "path to a GGML whisper.cpp model")
	flags.String("whisper-language", "auto", "forced whisper.cpp language, or auto")
	flags.String("azure-speech-key", "", "Azure Cognitive Services speech key")
	flags.String("azure-speech-region", "", "Azure Cognitive Services region")
	flags.String("azure-language", "en-US", "Azure recognition language")
	flags.String("silero-model-path", "", "path to the Silero ONNX model")
	flags.Float64("silero-threshold", detect.DefaultSpeechThreshold, "Silero speech probability threshold")
	flags.Int("silero-window-size", 1536, "Silero analysis window size, in samples")
	flags.Int("silero-speech-pad-ms", 0, "padding added to each Silero speech segment, in milliseconds")
	flags.Int("silero-min-silence-duration-ms", 0, "minimum silence duration before Silero ends a speech segment, in milliseconds")
	flags.Float64("silero-max-processing-chunk", detect.DefaultMaxProcessingChunk, "maximum audio span fed to Silero at once, in seconds")
	flags.Float64("periodic-duration", config.PeriodicDurationDefault, "fixed window size for the periodic detector, in seconds")
	flags.String("non-speech-strategy", string(orchestrator.Skip), "skip, create_segment, or expand_segment")
	flags.String("ledger-path", "transcriber.db", "path to the run ledger SQLite database")
	flags.String("data-dir", ".", "working directory for logs and engine-specific scratch files")
	flags.String("log-level", "info", "log level: debug, info, warn, or error")
	flags.String("config", "", "path to a YAML/TOML/JSON config file")

	cobra.OnInitialize(func() {
		if path, _ := flags.GetString("config"); path != "" {
			v.SetConfigFile(path)
			_ = v.ReadInConfig()
		}
	})

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("TRANSCRIBER")
	v.AutomaticEnv()

	return root
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	cfg := config.Config{
		AudioRef:                   args[0],
		LogLevel:                   v.GetString("log-level"),
		DataDir:                    v.GetString("data-dir"),
		Engine:                     config.Engine(v.GetString("engine")),
		NumThreads:                 v.GetInt("num-threads"),
		WhisperModelFile:           v.GetString("whisper-model-file"),
		WhisperLanguage:            v.GetString("whisper-language"),
		AzureSpeechKey:             v.GetString("azure-speech-key"),
		AzureSpeechRegion:          v.GetString("azure-speech-region"),
		AzureLanguage:              v.GetString("azure-language"),
		Detector:                   config.DetectorKind(v.GetString("detector")),
		PeriodicDuration:           v.GetFloat64("periodic-duration"),
		SileroModelPath:            v.GetString("silero-model-path"),
		SileroThreshold:            float32(v.GetFloat64("silero-threshold")),
		SileroWindowSize:           v.GetInt("silero-window-size"),
		SileroSpeechPadMs:          v.GetInt("silero-speech-pad-ms"),
		SileroMinSilenceDurationMs: v.GetInt("silero-min-silence-duration-ms"),
		SileroMaxProcessingChunk:   v.GetFloat64("silero-max-processing-chunk"),
		LedgerPath:                 v.GetString("ledger-path"),
		Orchestrator:               orchestrator.DefaultParams(),
	}
	cfg.Orchestrator.NonSpeechStrategy = orchestrator.NonSpeechStrategy(v.GetString("non-speech-strategy"))
	cfg.SetDefaults()

	if err := cfg.IsValid(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	source := audio.NewSource()

	var detector detect.Detector
	switch cfg.Detector {
	case config.DetectorPeriodic:
		detector = detect.NewPeriodic(source, cfg.PeriodicDuration)
	case config.DetectorSilero:
		detector = detect.NewSilero(source, source, detect.SileroConfig{
			ModelPath:            cfg.SileroModelPath,
			Threshold:            cfg.SileroThreshold,
			WindowSize:           cfg.SileroWindowSize,
			SpeechPadMs:          cfg.SileroSpeechPadMs,
			MinSilenceDurationMs: cfg.SileroMinSilenceDurationMs,
			MaxProcessingChunk:   cfg.SileroMaxProcessingChunk,
		})
	}

	var transcribe orchestrator.TranscribeFunc
	switch cfg.Engine {
	case config.EngineWhisperCPP:
		whisperCtx, err := whispercpp.NewContext(whispercpp.Config{
			ModelFile:  cfg.WhisperModelFile,
			NumThreads: cfg.NumThreads,
			Language:   cfg.WhisperLanguage,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize whisper.cpp: %w", err)
		}
		defer whisperCtx.Destroy()
		transcribe = whisperCtx.Transcribe
	case config.EngineAzure:
		recognizer, err := azure.NewRecognizer(azure.RecognizerConfig{
			SpeechKey:    cfg.AzureSpeechKey,
			SpeechRegion: cfg.AzureSpeechRegion,
			Language:     cfg.AzureLanguage,
			DataDir:      cfg.DataDir,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Azure recognizer: %w", err)
		}
		defer recognizer.Destroy()
		transcribe = recognizer.Transcribe
	}

	ledgerDB, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer ledgerDB.Close()

	o := orchestrator.New(source, source, detector, cfg.Orchestrator)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	started := time.Now()
	result, transcribeErr := o.Transcribe(ctx, cfg.AudioRef, transcribe)
	finished := time.Now()

	run := ledger.Run{
		AudioRef:    cfg.AudioRef,
		Engine:      string(cfg.Engine),
		Detector:    string(cfg.Detector),
		StartedAt:   started,
		FinishedAt:  finished,
		NumSegments: len(result.Segments),
		Language:    result.Language,
	}
	if transcribeErr != nil {
		run.Err = transcribeErr.Error()
	}
	if _, err := ledgerDB.RecordRun(ctx, run); err != nil {
		slog.Error("failed to record run in ledger", slog.String("err", err.Error()))
	}

	if transcribeErr != nil {
		return fmt.Errorf("transcription failed: %w", transcribeErr)
	}

	fmt.Println(result.Text)
	return nil
}
