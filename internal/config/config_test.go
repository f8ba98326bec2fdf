package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, uint32(1), cfg.Entropy.OSR)
	assert.Equal(t, "/dev/random", cfg.Daemon.DevRandomPath)
}

func TestValidateRejectsZeroOSR(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Entropy.OSR = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsNonPositivePollInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Daemon.PollIntervalSec = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audit.DatabasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Entropy.OSR, cfg.Entropy.OSR)
}

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	contents := `
[entropy]
osr = 4
disable_memory_access = true

[daemon]
poll_interval_sec = 10
low_watermark_bits = 4096
dev_random_path = "/dev/random"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), cfg.Entropy.OSR)
	assert.True(t, cfg.Entropy.DisableMemoryAccess)
	assert.Equal(t, 10, cfg.Daemon.PollIntervalSec)
	assert.Equal(t, 4096, cfg.Daemon.LowWatermarkBits)
}

func TestEnsureDirectoriesCreatesParents(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Daemon.PIDFile = filepath.Join(dir, "run", "jitterentropyd.pid")
	cfg.Logging.FilePath = filepath.Join(dir, "log", "jitterentropyd.log")
	cfg.Audit.DatabasePath = filepath.Join(dir, "db", "audit.db")

	require.NoError(t, cfg.EnsureDirectories())

	for _, d := range []string{"run", "log", "db"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
