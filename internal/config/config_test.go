package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vadpipe/transcriber/internal/orchestrator"
)

func validConfig() Config {
	cfg := Config{
		AudioRef:         "audio.wav",
		Engine:           EngineWhisperCPP,
		WhisperModelFile: "model.bin",
		Detector:         DetectorPeriodic,
		NumThreads:       1,
		LedgerPath:       "ledger.db",
		Orchestrator:     orchestrator.DefaultParams(),
	}
	return cfg
}

func TestConfigIsValidRejectsMissingAudioRef(t *testing.T) {
	cfg := validConfig()
	cfg.AudioRef = ""
	require.Error(t, cfg.IsValid())
}

func TestConfigIsValidRejectsUnknownEngine(t *testing.T) {
	cfg := validConfig()
	cfg.Engine = "bogus"
	require.Error(t, cfg.IsValid())
}

func TestConfigIsValidRequiresWhisperModelFile(t *testing.T) {
	cfg := validConfig()
	cfg.WhisperModelFile = ""
	require.Error(t, cfg.IsValid())
}

func TestConfigIsValidRequiresAzureCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.Engine = EngineAzure
	require.Error(t, cfg.IsValid())

	cfg.AzureSpeechKey = "key"
	require.Error(t, cfg.IsValid())

	cfg.AzureSpeechRegion = "region"
	require.NoError(t, cfg.IsValid())
}

func TestConfigIsValidRequiresSileroModelPath(t *testing.T) {
	cfg := validConfig()
	cfg.Detector = DetectorSilero
	require.Error(t, cfg.IsValid())

	cfg.SileroModelPath = "model.onnx"
	require.NoError(t, cfg.IsValid())
}

func TestConfigIsValidAccepts(t *testing.T) {
	require.NoError(t, validConfig().IsValid())
}

func TestSetDefaultsFillsEmptyFields(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, EngineDefault, cfg.Engine)
	require.Equal(t, DetectorKindDefault, cfg.Detector)
	require.Equal(t, PeriodicDurationDefault, cfg.PeriodicDuration)
	require.Equal(t, "transcriber.db", cfg.LedgerPath)
	require.Equal(t, orchestrator.DefaultParams(), cfg.Orchestrator)
}

func TestSetDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Config{LogLevel: "debug", NumThreads: 4}
	cfg.SetDefaults()

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 4, cfg.NumThreads)
}
