// Package logging provides structured logging with slog for jitterentropyd.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// AuditEventType represents the type of audit event.
type AuditEventType string

// Audit event types for the entropy daemon's lifecycle.
const (
	AuditEventStartup           AuditEventType = "startup"
	AuditEventShutdown          AuditEventType = "shutdown"
	AuditEventConfigChange      AuditEventType = "config_change"
	AuditEventQualifyPass       AuditEventType = "qualify_pass"
	AuditEventQualifyFail       AuditEventType = "qualify_fail"
	AuditEventCollectorCreated  AuditEventType = "collector_created"
	AuditEventCollectorClosed   AuditEventType = "collector_closed"
	AuditEventSelfTestTripped   AuditEventType = "self_test_tripped"
	AuditEventFeedOSPool        AuditEventType = "feed_os_pool"
	AuditEventTPMSourceAdded    AuditEventType = "tpm_source_added"
	AuditEventTPMSourceFailed   AuditEventType = "tpm_source_failed"
	AuditEventError             AuditEventType = "error"
)

// AuditEvent represents a security-relevant event in the entropy daemon's
// lifecycle.
type AuditEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	EventType AuditEventType         `json:"event_type"`
	Component string                 `json:"component"`
	Action    string                 `json:"action"`
	Resource  string                 `json:"resource,omitempty"`
	Result    string                 `json:"result"` // "success", "failure", "denied"
	Details   map[string]interface{} `json:"details,omitempty"`
	SourceFile string                `json:"source_file,omitempty"`
	SourceLine int                   `json:"source_line,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// AuditLoggerConfig holds configuration for the audit logger.
type AuditLoggerConfig struct {
	// FilePath is the path to the audit log file.
	FilePath string

	// MaxSize is the maximum size in MB before rotation.
	MaxSize int64

	// MaxAge is the maximum age in days before deletion.
	MaxAge int

	// MaxBackups is the maximum number of rotated files to keep.
	MaxBackups int

	// Compress determines if rotated logs should be compressed.
	Compress bool

	// Component is the component name for audit events.
	Component string
}

// DefaultAuditConfig returns default audit logger configuration.
func DefaultAuditConfig() *AuditLoggerConfig {
	return &AuditLoggerConfig{
		FilePath:   defaultAuditLogPath(),
		MaxSize:    50, // 50 MB
		MaxAge:     90, // 90 days
		MaxBackups: 10,
		Compress:   true,
		Component:  "jitterentropyd",
	}
}

// defaultAuditLogPath returns the platform-specific default audit log path.
func defaultAuditLogPath() string {
	switch runtime.GOOS {
	case "darwin":
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, "Library", "Logs", "jitterentropyd", "audit.log")
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		return filepath.Join(appData, "jitterentropyd", "logs", "audit.log")
	default:
		stateHome := os.Getenv("XDG_STATE_HOME")
		if stateHome == "" {
			homeDir, _ := os.UserHomeDir()
			stateHome = filepath.Join(homeDir, ".local", "state")
		}
		return filepath.Join(stateHome, "jitterentropyd", "audit.log")
	}
}

// AuditLogger handles security audit logging for the entropy daemon.
type AuditLogger struct {
	config  *AuditLoggerConfig
	rotator *FileRotator
	logger  *slog.Logger
	mu      sync.Mutex
}

var (
	defaultAuditLogger *AuditLogger
	auditLoggerOnce    sync.Once
)

// DefaultAuditLogger returns the default global audit logger.
func DefaultAuditLogger() *AuditLogger {
	auditLoggerOnce.Do(func() {
		var err error
		defaultAuditLogger, err = NewAuditLogger(DefaultAuditConfig())
		if err != nil {
			defaultAuditLogger = &AuditLogger{
				config: DefaultAuditConfig(),
				logger: slog.Default(),
			}
		}
	})
	return defaultAuditLogger
}

// SetDefaultAuditLogger sets the default global audit logger.
func SetDefaultAuditLogger(l *AuditLogger) {
	defaultAuditLogger = l
}

// NewAuditLogger creates a new AuditLogger.
func NewAuditLogger(cfg *AuditLoggerConfig) (*AuditLogger, error) {
	if cfg == nil {
		cfg = DefaultAuditConfig()
	}

	rotatorCfg := &Config{
		FilePath:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxAge,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
		Format:     FormatJSON,
		Level:      LevelInfo,
	}

	rotator, err := NewFileRotator(rotatorCfg)
	if err != nil {
		return nil, fmt.Errorf("create audit rotator: %w", err)
	}

	handler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: LevelInfo})

	return &AuditLogger{
		config:  cfg,
		rotator: rotator,
		logger:  slog.New(handler),
	}, nil
}

// Log writes an audit event.
func (a *AuditLogger) Log(ctx context.Context, event AuditEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Component == "" {
		event.Component = a.config.Component
	}
	if event.SourceFile == "" {
		if _, file, line, ok := runtime.Caller(1); ok {
			event.SourceFile = file
			event.SourceLine = line
		}
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	data = append(data, '\n')

	if _, err := a.rotator.Write(data); err != nil {
		return fmt.Errorf("write audit event: %w", err)
	}

	return nil
}

// LogStartup logs a daemon startup event.
func (a *AuditLogger) LogStartup(ctx context.Context, version string, details map[string]interface{}) error {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["version"] = version
	return a.Log(ctx, AuditEvent{
		EventType: AuditEventStartup,
		Action:    "daemon_started",
		Result:    "success",
		Details:   details,
	})
}

// LogShutdown logs a daemon shutdown event.
func (a *AuditLogger) LogShutdown(ctx context.Context, reason string) error {
	return a.Log(ctx, AuditEvent{
		EventType: AuditEventShutdown,
		Action:    "daemon_stopped",
		Result:    "success",
		Details:   map[string]interface{}{"reason": reason},
	})
}

// LogConfigChange logs a configuration hot-reload.
func (a *AuditLogger) LogConfigChange(ctx context.Context, setting, oldValue, newValue string) error {
	return a.Log(ctx, AuditEvent{
		EventType: AuditEventConfigChange,
		Action:    "config_reloaded",
		Resource:  setting,
		Result:    "success",
		Details: map[string]interface{}{
			"old_value": oldValue,
			"new_value": newValue,
		},
	})
}

// LogQualify logs the result of an environment qualification run. A
// failure forces an immediate log rotation afterward, so the event that
// decided whether the daemon is even allowed to start is never buried
// in the middle of an unrelated rotation window.
func (a *AuditLogger) LogQualify(ctx context.Context, err error) error {
	if err != nil {
		logErr := a.Log(ctx, AuditEvent{
			EventType: AuditEventQualifyFail,
			Action:    "qualify",
			Result:    "failure",
			Error:     err.Error(),
		})
		a.forceRotate()
		return logErr
	}
	return a.Log(ctx, AuditEvent{
		EventType: AuditEventQualifyPass,
		Action:    "qualify",
		Result:    "success",
	})
}

// forceRotate rotates the audit log immediately, ignoring errors: a
// failed rotation attempt should never prevent the audit event that
// triggered it from having already been recorded.
func (a *AuditLogger) forceRotate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rotator != nil {
		_ = a.rotator.RotateNow()
	}
}

// LogCollectorCreated logs creation of a new entropy collector.
func (a *AuditLogger) LogCollectorCreated(ctx context.Context, osr uint32, memLocked bool) error {
	return a.Log(ctx, AuditEvent{
		EventType: AuditEventCollectorCreated,
		Action:    "collector_created",
		Result:    "success",
		Details: map[string]interface{}{
			"osr":        osr,
			"mem_locked": memLocked,
		},
	})
}

// LogCollectorClosed logs collector shutdown.
func (a *AuditLogger) LogCollectorClosed(ctx context.Context) error {
	return a.Log(ctx, AuditEvent{
		EventType: AuditEventCollectorClosed,
		Action:    "collector_closed",
		Result:    "success",
	})
}

// LogSelfTestTripped logs a continuous self-test failure and forces an
// immediate log rotation afterward, as LogQualify does: a tripped
// self-test means the collector just discarded a block rather than
// trusting it, so the trip closes the current log file and later events
// start a new one.
func (a *AuditLogger) LogSelfTestTripped(ctx context.Context) error {
	err := a.Log(ctx, AuditEvent{
		EventType: AuditEventSelfTestTripped,
		Action:    "continuous_self_test",
		Result:    "failure",
	})
	a.forceRotate()
	return err
}

// LogFeedOSPool logs an RNDADDENTROPY injection into the OS pool.
func (a *AuditLogger) LogFeedOSPool(ctx context.Context, bytesFed int, entropyBits int) error {
	return a.Log(ctx, AuditEvent{
		EventType: AuditEventFeedOSPool,
		Action:    "feed_os_pool",
		Result:    "success",
		Details: map[string]interface{}{
			"bytes":        bytesFed,
			"entropy_bits": entropyBits,
		},
	})
}

// LogError logs an error event.
func (a *AuditLogger) LogError(ctx context.Context, operation string, err error, details map[string]interface{}) error {
	if details == nil {
		details = make(map[string]interface{})
	}
	return a.Log(ctx, AuditEvent{
		EventType: AuditEventError,
		Action:    operation,
		Result:    "failure",
		Error:     err.Error(),
		Details:   details,
	})
}

// Close closes the audit logger.
func (a *AuditLogger) Close() error {
	if a.rotator != nil {
		return a.rotator.Close()
	}
	return nil
}

// Sync flushes any buffered audit events.
func (a *AuditLogger) Sync() error {
	if a.rotator != nil {
		return a.rotator.Sync()
	}
	return nil
}

// Audit logs an audit event using the default audit logger.
func Audit(ctx context.Context, event AuditEvent) error {
	return DefaultAuditLogger().Log(ctx, event)
}

// AuditError logs an error using the default audit logger.
func AuditError(ctx context.Context, operation string, err error, details map[string]interface{}) error {
	return DefaultAuditLogger().LogError(ctx, operation, err, details)
}
