// audit.go: Audit trail for geometry file mutations
//
// Every patch, backup and restore is an auditable event: geometry files
// feed regulatory flood models, and "who changed cross section 41950 and
// when" is a question that gets asked. Events are buffered and flushed in
// batches to keep the write path fast.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"crypto/sha256"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// AuditLevel represents the severity of audit events.
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseAuditLevel maps a level name to its AuditLevel, defaulting to INFO.
func ParseAuditLevel(s string) AuditLevel {
	switch s {
	case "WARN", "warn":
		return AuditWarn
	case "CRITICAL", "critical":
		return AuditCritical
	default:
		return AuditInfo
	}
}

// AuditEvent represents a single auditable event.
type AuditEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     AuditLevel             `json:"level"`
	Event     string                 `json:"event"`
	Component string                 `json:"component"`
	FilePath  string                 `json:"file_path,omitempty"`
	ProcessID int                    `json:"process_id"`
	Context   map[string]interface{} `json:"context,omitempty"`
	Checksum  string                 `json:"checksum"` // For tamper detection
}

// AuditConfig configures the audit system.
type AuditConfig struct {
	Enabled       bool          `yaml:"enabled" json:"enabled"`
	OutputFile    string        `yaml:"output_file" json:"output_file"`
	MinLevel      AuditLevel    `yaml:"min_level" json:"min_level"`
	BufferSize    int           `yaml:"buffer_size" json:"buffer_size"`
	FlushInterval time.Duration `yaml:"flush_interval" json:"flush_interval"`
}

// DefaultAuditConfig returns the default audit configuration: enabled,
// SQLite-backed, modest buffer. Specify an OutputFile with a .jsonl
// extension to get line-oriented JSON instead.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		OutputFile:    "",
		MinLevel:      AuditInfo,
		BufferSize:    500,
		FlushInterval: 3 * time.Second,
	}
}

// Validate checks the audit configuration.
func (c AuditConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.BufferSize < 0 {
		return errors.New(ErrCodeInvalidAuditConfig, "buffer size cannot be negative")
	}
	if c.FlushInterval < 0 {
		return errors.New(ErrCodeInvalidAuditConfig, "flush interval cannot be negative")
	}
	return nil
}

// AuditLogger provides buffered audit logging for geometry mutations.
type AuditLogger struct {
	config  AuditConfig
	backend auditBackend

	mu     sync.Mutex
	buffer []AuditEvent
	closed bool

	stopFlush chan struct{}
	flushDone sync.WaitGroup
}

// NewAuditLogger creates an audit logger with the configured backend.
// A disabled configuration yields a logger whose methods are no-ops.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	if !config.Enabled {
		return &AuditLogger{config: config}, nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.BufferSize == 0 {
		config.BufferSize = DefaultAuditConfig().BufferSize
	}
	if config.FlushInterval == 0 {
		config.FlushInterval = DefaultAuditConfig().FlushInterval
	}

	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeAuditBackendFailure, "failed to initialize audit backend")
	}

	logger := &AuditLogger{
		config:    config,
		backend:   backend,
		buffer:    make([]AuditEvent, 0, config.BufferSize),
		stopFlush: make(chan struct{}),
	}

	logger.flushDone.Add(1)
	go logger.flushLoop()

	return logger, nil
}

// Log records one audit event. Below-threshold levels are dropped.
func (a *AuditLogger) Log(level AuditLevel, event, filePath string, context map[string]interface{}) {
	if a == nil || !a.config.Enabled || level < a.config.MinLevel {
		return
	}

	e := AuditEvent{
		Timestamp: timecache.CachedTime(),
		Level:     level,
		Event:     event,
		Component: "riverbed",
		FilePath:  filePath,
		ProcessID: os.Getpid(),
		Context:   context,
	}
	e.Checksum = checksumEvent(e)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.buffer = append(a.buffer, e)
	if len(a.buffer) >= a.config.BufferSize {
		a.flushLocked()
	}
}

// LogPatch records a committed record replacement.
func (a *AuditLogger) LogPatch(path, keyword string, context map[string]interface{}) {
	if context == nil {
		context = map[string]interface{}{}
	}
	context["keyword"] = keyword
	a.Log(AuditInfo, "record_patched", path, context)
}

// LogBackup records a backup or restore operation.
func (a *AuditLogger) LogBackup(event, path, backupPath string) {
	a.Log(AuditInfo, "backup_"+event, path, map[string]interface{}{
		"backup_path": backupPath,
	})
}

// LogAnomaly records a warning-level parsing anomaly, such as a section
// terminated only by end-of-file.
func (a *AuditLogger) LogAnomaly(path, detail string) {
	a.Log(AuditWarn, "parse_anomaly", path, map[string]interface{}{
		"detail": detail,
	})
}

// Flush forces all buffered events to the backend.
func (a *AuditLogger) Flush() error {
	if a == nil || !a.config.Enabled {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.flushLocked()
	return a.backend.Flush()
}

// Close flushes pending events and releases the backend. The logger must
// not be used after Close.
func (a *AuditLogger) Close() error {
	if a == nil || !a.config.Enabled {
		return nil
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.flushLocked()
	a.mu.Unlock()

	close(a.stopFlush)
	a.flushDone.Wait()

	return a.backend.Close()
}

// flushLocked hands the buffer to the backend. Caller holds a.mu.
func (a *AuditLogger) flushLocked() {
	if len(a.buffer) == 0 || a.backend == nil {
		return
	}
	events := make([]AuditEvent, len(a.buffer))
	copy(events, a.buffer)
	a.buffer = a.buffer[:0]

	if err := a.backend.Write(events); err != nil {
		// Audit must never break the write path; the failure itself is
		// reported on stderr as a last resort.
		fmt.Fprintf(os.Stderr, "riverbed: audit write failed: %v\n", err)
	}
}

// flushLoop periodically drains the buffer until Close.
func (a *AuditLogger) flushLoop() {
	defer a.flushDone.Done()

	ticker := time.NewTicker(a.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.mu.Lock()
			if !a.closed {
				a.flushLocked()
			}
			a.mu.Unlock()
		case <-a.stopFlush:
			return
		}
	}
}

// checksumEvent computes a tamper-detection checksum over the immutable
// event fields.
func checksumEvent(e AuditEvent) string {
	payload := fmt.Sprintf("%d|%s|%s|%s|%d",
		e.Timestamp.UnixNano(), e.Level, e.Event, e.FilePath, e.ProcessID)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(payload)))
}
