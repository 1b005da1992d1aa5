package whispercpp

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigIsValidRejectsEmpty(t *testing.T) {
	require.Error(t, Config{}.IsValid())
}

func TestConfigIsValidRejectsMissingModelFile(t *testing.T) {
	cfg := Config{ModelFile: "", NumThreads: 1}
	require.Error(t, cfg.IsValid())
}

func TestConfigIsValidRejectsOutOfRangeThreads(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "model-*.bin")
	require.NoError(t, err)
	defer f.Close()

	cfg := Config{ModelFile: f.Name(), NumThreads: 0}
	require.Error(t, cfg.IsValid())

	cfg.NumThreads = 1 << 20
	require.Error(t, cfg.IsValid())
}

func TestConfigIsValidRejectsMissingFile(t *testing.T) {
	cfg := Config{ModelFile: "/no/such/model.bin", NumThreads: 1}
	require.Error(t, cfg.IsValid())
}

func TestConfigIsValidAcceptsWellFormedConfig(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "model-*.bin")
	require.NoError(t, err)
	defer f.Close()

	cfg := Config{ModelFile: f.Name(), NumThreads: 1}
	require.NoError(t, cfg.IsValid())
}
