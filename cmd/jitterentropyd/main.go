// Command jitterentropyd feeds the OS random pool from CPU-timing
// jitter, optionally blended with a hardware TPM source.
//
// It runs the one-time environment qualification at startup, refusing
// to start if the host's timer isn't trustworthy as a noise source,
// then polls the kernel's entropy estimate and tops it up via
// RNDADDENTROPY whenever it falls below the configured watermark.
//
// Usage:
//
//	jitterentropyd [flags]
//
// Flags:
//
//	-config string
//	    Path to a TOML config file (default: ~/.jitterentropyd/config.toml)
//	-foreground
//	    Run in foreground instead of daemonizing (daemonizing is left
//	    to the caller's service supervisor; this flag only controls log
//	    destination)
//	-uid int
//	-gid int
//	    Drop privileges to this uid/gid after opening the device node
//	-verbose
//	    Enable debug-level logging
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"jitterentropy-go/internal/auditstore"
	"jitterentropy-go/internal/config"
	"jitterentropy-go/internal/jent"
	"jitterentropy-go/internal/logging"
	"jitterentropy-go/internal/report"
	"jitterentropy-go/internal/tpmentropy"
)

var (
	configPath = flag.String("config", "", "path to TOML config file")
	foreground = flag.Bool("foreground", false, "log to stderr instead of the configured file")
	dropUID    = flag.Int("uid", -1, "UID to drop privileges to after startup")
	dropGID    = flag.Int("gid", -1, "GID to drop privileges to after startup")
	verbose    = flag.Bool("verbose", false, "enable debug logging")
)

func main() {
	flag.Parse()

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "jitterentropyd: load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "jitterentropyd: prepare directories: %v\n", err)
		os.Exit(1)
	}

	logCfg := logging.DefaultConfig()
	if level, err := logging.ParseLevel(cfg.Logging.Level); err == nil {
		logCfg.Level = level
	}
	if cfg.Logging.Format == "json" {
		logCfg.Format = logging.FormatJSON
	}
	logCfg.MaxSize = cfg.Logging.MaxSizeMB
	logCfg.MaxBackups = cfg.Logging.MaxBackups
	if *verbose {
		logCfg.Level = logging.LevelDebug
	}
	if *foreground {
		logCfg.Output = "stderr"
	} else {
		logCfg.Output = cfg.Logging.Output
		logCfg.FilePath = cfg.Logging.FilePath
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jitterentropyd: init logging: %v\n", err)
		os.Exit(1)
	}

	auditKey, err := auditKeySeed()
	if err != nil {
		logger.Error("derive audit key seed", "error", err)
		os.Exit(1)
	}
	key, err := auditstore.DeriveAuditKey(auditKey)
	if err != nil {
		logger.Error("derive audit key", "error", err)
		os.Exit(1)
	}
	store, err := auditstore.Open(cfg.Audit.DatabasePath, key)
	if err != nil {
		logger.Error("open audit store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	auditCfg := logging.DefaultAuditConfig()
	auditCfg.FilePath = filepath.Join(filepath.Dir(cfg.Logging.FilePath), "audit.log")
	auditLogger, err := logging.NewAuditLogger(auditCfg)
	if err != nil {
		logger.Error("init audit logger", "error", err)
		os.Exit(1)
	}
	defer auditLogger.Close()

	ctx := context.Background()
	hostname, _ := os.Hostname()

	crashHandler := logging.NewCrashHandler(&logging.CrashHandlerConfig{
		CrashDir:  filepath.Join(filepath.Dir(cfg.Logging.FilePath), "crashes"),
		Version:   "1",
		Component: "jitterentropyd",
		OnCrash: func(r logging.CrashReport) {
			auditLogger.LogError(ctx, "panic", fmt.Errorf("%s", r.PanicValue), map[string]any{
				"collector_osr":      r.CollectorOSR,
				"last_qualify_error": r.LastQualifyError,
			})
		},
	})
	defer func() {
		if r := recover(); r != nil {
			crashHandler.HandlePanic(r, map[string]any{"phase": "daemon_loop"})
			os.Exit(1)
		}
	}()

	auditLogger.LogStartup(ctx, "1", map[string]any{"osr": cfg.Entropy.OSR})

	qualifyStart := time.Now()
	qualifyErr := jent.Qualify()
	qualifyDuration := time.Since(qualifyStart)
	auditLogger.LogQualify(ctx, qualifyErr)

	rpt := report.Build(hostname, time.Now().UnixNano(), int64(qualifyDuration), cfg.Entropy.OSR, qualifyErr)
	_ = store.RecordQualifyRun(auditstore.QualifyRun{
		TimestampNs: rpt.TimestampNs,
		Passed:      rpt.Passed,
		FailureCode: rpt.FailureCode,
		DurationNs:  rpt.DurationNs,
		Hostname:    hostname,
	})
	if qualifyErr != nil {
		logger.Error("timer qualification failed, refusing to start", "error", qualifyErr)
		os.Exit(1)
	}
	logger.Info("timer qualification passed", "duration", qualifyDuration)

	flags := jent.Flags(0)
	if cfg.Entropy.DisableMemoryAccess {
		flags |= jent.DisableMemoryAccess
	}
	if cfg.Entropy.DisableStir {
		flags |= jent.DisableStir
	}
	if cfg.Entropy.DisableUnbias {
		flags |= jent.DisableUnbias
	}

	collector, err := jent.NewCollector(cfg.Entropy.OSR, flags)
	if err != nil {
		logger.Error("create collector", "error", err)
		os.Exit(1)
	}
	defer collector.Close()
	auditLogger.LogCollectorCreated(ctx, cfg.Entropy.OSR, !cfg.Entropy.DisableMemoryAccess)

	crashHandler.SetCollectorContext(cfg.Entropy.OSR, qualifyErr)
	logger = logger.WithCollector(cfg.Entropy.OSR, disabledStagesString(cfg))

	var tpmSource *tpmentropy.Source
	if cfg.Daemon.UseTPM {
		tpmSource, err = tpmentropy.Open(cfg.Daemon.TPMDevice)
		if err != nil {
			logger.Warn("TPM entropy source unavailable", "error", err)
			auditLogger.Log(ctx, logging.AuditEvent{EventType: logging.AuditEventTPMSourceFailed, Details: map[string]any{"error": err.Error()}})
		} else {
			logger.Info("TPM entropy source added", "device", tpmSource.Device())
			auditLogger.Log(ctx, logging.AuditEvent{EventType: logging.AuditEventTPMSourceAdded, Details: map[string]any{"device": tpmSource.Device()}})
			defer tpmSource.Close()
		}
	}

	if uid, gid, ok := effectiveDropIDs(); ok {
		if err := dropPrivileges(uid, gid); err != nil {
			logger.Error("drop privileges", "error", err)
			os.Exit(1)
		}
		logger.Info("dropped privileges", "uid", uid, "gid", gid)
	}

	lockMemory()

	if cfg.Daemon.PIDFile != "" {
		if err := os.WriteFile(cfg.Daemon.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
			logger.Warn("write pidfile", "error", err)
		} else {
			defer os.Remove(cfg.Daemon.PIDFile)
		}
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	hupChan := make(chan os.Signal, 1)
	signal.Notify(hupChan, syscall.SIGHUP)

	// watchedCfg carries configs picked up by the loader's fsnotify watch
	// (a file write/create on the config path, debounced) into the main
	// select loop below, which is the only place cfg/ticker are mutated.
	watchedCfg := make(chan *config.Config, 1)
	loader.OnChange(func(newCfg *config.Config) {
		select {
		case watchedCfg <- newCfg:
		default:
		}
	})
	if err := loader.Watch(); err != nil {
		logger.Warn("start config file watcher, falling back to SIGHUP-only reload", "error", err)
	}
	defer loader.Close()

	ticker := time.NewTicker(time.Duration(cfg.Daemon.PollIntervalSec) * time.Second)
	defer ticker.Stop()

	logger.Info("jitterentropyd running", "poll_interval_sec", cfg.Daemon.PollIntervalSec, "watermark_bits", cfg.Daemon.LowWatermarkBits)

	for {
		select {
		case sig := <-termChan:
			logger.Info("received shutdown signal", "signal", sig.String())
			auditLogger.LogShutdown(ctx, sig.String())
			return

		case <-hupChan:
			newCfg, err := reloadConfig(loader, logger)
			if err != nil {
				auditLogger.Log(ctx, logging.AuditEvent{EventType: logging.AuditEventError, Details: map[string]any{"stage": "reload_config", "error": err.Error()}})
				continue
			}
			cfg = newCfg
			ticker.Reset(time.Duration(cfg.Daemon.PollIntervalSec) * time.Second)
			auditLogger.Log(ctx, logging.AuditEvent{EventType: logging.AuditEventConfigChange, Details: map[string]any{
				"poll_interval_sec": cfg.Daemon.PollIntervalSec,
				"watermark_bits":    cfg.Daemon.LowWatermarkBits,
				"trigger":           "sighup",
			}})

		case newCfg := <-watchedCfg:
			logger.Info("config file changed on disk, reloaded", "poll_interval_sec", newCfg.Daemon.PollIntervalSec, "watermark_bits", newCfg.Daemon.LowWatermarkBits)
			cfg = newCfg
			ticker.Reset(time.Duration(cfg.Daemon.PollIntervalSec) * time.Second)
			auditLogger.Log(ctx, logging.AuditEvent{EventType: logging.AuditEventConfigChange, Details: map[string]any{
				"poll_interval_sec": cfg.Daemon.PollIntervalSec,
				"watermark_bits":    cfg.Daemon.LowWatermarkBits,
				"trigger":           "fsnotify",
			}})

		case <-ticker.C:
			pollOnce(ctx, cfg, collector, tpmSource, store, auditLogger, logger)
		}
	}
}

// reloadConfig re-reads and validates the config file through loader, the
// way SIGHUP reload is described in jitterentropy-rngd.c. Only the
// daemon's own feeding fields (poll interval, watermark, device path)
// take effect without a restart; entropy.osr and the noise-stage disable
// flags are baked into the already-running collector, and the TPM source
// is opened once at startup, so none of those are retroactively applied. This shares the same validated-load path the loader's fsnotify
// watch uses, so a SIGHUP and a plain file write behave identically.
func reloadConfig(loader *config.Loader, logger *logging.Logger) (*config.Config, error) {
	newCfg, err := loader.Load()
	if err != nil {
		logger.Error("reload config", "error", err)
		return nil, err
	}
	logger.Info("reloaded config", "poll_interval_sec", newCfg.Daemon.PollIntervalSec, "watermark_bits", newCfg.Daemon.LowWatermarkBits)
	return newCfg, nil
}

// pollOnce checks the kernel's entropy estimate and, if it's below the
// configured watermark, draws one RNDBYTES block from the collector
// (blended with a TPM sample when available) and injects it.
func pollOnce(ctx context.Context, cfg *config.Config, collector *jent.Collector, tpmSource *tpmentropy.Source, store *auditstore.Store, auditLogger *logging.AuditLogger, logger *logging.Logger) {
	const rndBytes = 32

	avail, err := readEntropyAvail()
	if err != nil {
		logger.Debug("read entropy_avail failed, feeding unconditionally", "error", err)
	} else if avail >= cfg.Daemon.LowWatermarkBits {
		return
	}

	buf := make([]byte, rndBytes)
	if _, err := collector.ReadEntropy(buf); err != nil {
		if err == jent.ErrContinuousTest {
			logger.Warn("continuous self-test tripped, discarding block")
			auditLogger.LogSelfTestTripped(ctx)
			_ = store.RecordSelfTestTrip(auditstore.SelfTestTrip{TimestampNs: time.Now().UnixNano(), CollectorOSR: cfg.Entropy.OSR})
			return
		}
		logger.Error("read entropy from collector", "error", err)
		return
	}

	source := "jent"
	if tpmSource != nil {
		tpmBuf := make([]byte, rndBytes)
		if _, err := tpmSource.Read(tpmBuf); err == nil {
			for i := range buf {
				buf[i] ^= tpmBuf[i]
			}
			source = "jent+tpm"
		} else {
			logger.Warn("TPM read failed, feeding jitter entropy alone", "error", err)
		}
	}

	entropyBits := rndBytes * jent.TimeEntropyBits
	if err := feedEntropy(cfg.Daemon.DevRandomPath, buf, entropyBits); err != nil {
		logger.Error("feed entropy", "error", err)
		return
	}

	auditLogger.LogFeedOSPool(ctx, rndBytes, entropyBits)
	_ = store.RecordFeedEvent(auditstore.FeedEvent{
		TimestampNs: time.Now().UnixNano(),
		BytesFed:    rndBytes,
		EntropyBits: entropyBits,
		Source:      source,
	})
}

// disabledStagesString renders which optional noise stages a config
// turns off, for attaching to every subsequent log line via
// logging.Logger.WithCollector.
func disabledStagesString(cfg *config.Config) string {
	var disabled []string
	if cfg.Entropy.DisableMemoryAccess {
		disabled = append(disabled, "memaccess")
	}
	if cfg.Entropy.DisableStir {
		disabled = append(disabled, "stir")
	}
	if cfg.Entropy.DisableUnbias {
		disabled = append(disabled, "unbias")
	}
	if len(disabled) == 0 {
		return ""
	}
	out := disabled[0]
	for _, s := range disabled[1:] {
		out += "," + s
	}
	return out
}

// effectiveDropIDs reports the uid/gid to drop to, if both were given
// explicitly and the process is currently running as root.
func effectiveDropIDs() (int, int, bool) {
	if os.Getuid() != 0 {
		return 0, 0, false
	}
	if *dropUID < 0 || *dropGID < 0 {
		return 0, 0, false
	}
	return *dropUID, *dropGID, true
}

// auditKeySeed returns stable, host-specific material to derive the
// audit chain's HMAC key from. /etc/machine-id is preferred; the
// hostname is a fallback for hosts that lack one (e.g. containers
// without the file bind-mounted).
func auditKeySeed() ([]byte, error) {
	if data, err := os.ReadFile("/etc/machine-id"); err == nil && len(data) > 0 {
		return data, nil
	}
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("no machine-id and no hostname available: %w", err)
	}
	return []byte("jitterentropyd-fallback-seed-" + hostname), nil
}
