// Package config handles configuration loading, validation, and hot
// reload for jitterentropyd, the entropy-feeding daemon built on top of
// package jent.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// EntropyConfig controls how the daemon's jent.Collector is built.
type EntropyConfig struct {
	// OSR is the oversampling rate passed to jent.NewCollector.
	OSR uint32 `toml:"osr"`

	// DisableMemoryAccess, DisableStir, and DisableUnbias map directly
	// onto jent.Flags bits, for environments (mainly testing) that need
	// to disable one noise-shaping stage.
	DisableMemoryAccess bool `toml:"disable_memory_access"`
	DisableStir         bool `toml:"disable_stir"`
	DisableUnbias       bool `toml:"disable_unbias"`
}

// DaemonConfig controls the feeding loop itself.
type DaemonConfig struct {
	// PollIntervalSec is how often the daemon checks the OS entropy
	// pool's fill level and tops it up if needed.
	PollIntervalSec int `toml:"poll_interval_sec"`

	// LowWatermarkBits is the entropy_avail threshold, in bits, below
	// which the daemon injects a block via RNDADDENTROPY.
	LowWatermarkBits int `toml:"low_watermark_bits"`

	// DevRandomPath is the device node the daemon feeds.
	DevRandomPath string `toml:"dev_random_path"`

	// PIDFile is an optional path to write the daemon's PID to.
	PIDFile string `toml:"pid_file"`

	// UseTPM enables blending in supplementary TPM entropy alongside
	// jent's CPU-jitter samples before feeding the OS pool.
	UseTPM    bool   `toml:"use_tpm"`
	TPMDevice string `toml:"tpm_device"`
}

// LoggingConfig controls internal/logging's output.
type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	Output     string `toml:"output"`
	FilePath   string `toml:"file_path"`
	MaxSizeMB  int64  `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// AuditConfig controls internal/auditstore's persisted history.
type AuditConfig struct {
	DatabasePath string `toml:"database_path"`
}

// Config holds jitterentropyd's full configuration.
type Config struct {
	Entropy EntropyConfig `toml:"entropy"`
	Daemon  DaemonConfig  `toml:"daemon"`
	Logging LoggingConfig `toml:"logging"`
	Audit   AuditConfig   `toml:"audit"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".jitterentropyd")

	return &Config{
		Entropy: EntropyConfig{
			OSR: 1,
		},
		Daemon: DaemonConfig{
			PollIntervalSec:  5,
			LowWatermarkBits: 2048,
			DevRandomPath:    "/dev/random",
			PIDFile:          filepath.Join(base, "jitterentropyd.pid"),
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stderr",
			FilePath:   filepath.Join(base, "jitterentropyd.log"),
			MaxSizeMB:  100,
			MaxBackups: 5,
		},
		Audit: AuditConfig{
			DatabasePath: filepath.Join(base, "audit.db"),
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".jitterentropyd", "config.toml")
}

// Load reads configuration from path. If the file doesn't exist, the
// default configuration is returned unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for errors that would prevent the
// daemon from starting.
func (c *Config) Validate() error {
	if c.Entropy.OSR == 0 {
		return errors.New("config: entropy.osr must be at least 1")
	}
	if c.Daemon.PollIntervalSec < 1 {
		return errors.New("config: daemon.poll_interval_sec must be at least 1")
	}
	if c.Daemon.LowWatermarkBits < 0 {
		return errors.New("config: daemon.low_watermark_bits must not be negative")
	}
	if c.Daemon.DevRandomPath == "" {
		return errors.New("config: daemon.dev_random_path is required")
	}
	if c.Audit.DatabasePath == "" {
		return errors.New("config: audit.database_path is required")
	}
	return nil
}

// EnsureDirectories creates every directory this configuration writes
// into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Daemon.PIDFile),
		filepath.Dir(c.Logging.FilePath),
		filepath.Dir(c.Audit.DatabasePath),
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	return nil
}
