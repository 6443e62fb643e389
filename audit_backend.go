// audit_backend.go: Pluggable storage backends for the audit trail
//
// Two backends: SQLite for queryable audit databases (the default) and
// JSONL for grep-able, shippable log files. Selection is by OutputFile
// extension, with graceful degradation SQLite -> JSONL so audit storage
// problems never prevent an edit session from starting.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// auditBackend abstracts audit storage so JSONL files and SQLite
// databases are interchangeable behind the logger.
type auditBackend interface {
	// Write persists a batch of audit events. Implementations must
	// handle concurrent writes safely.
	Write(events []AuditEvent) error

	// Flush commits all pending writes to storage.
	Flush() error

	// Close releases all resources; the backend must not be used after.
	Close() error
}

// createAuditBackend selects a backend for the configuration: explicit
// .jsonl output gets the JSONL backend, everything else tries SQLite
// first and falls back to JSONL.
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	if config.OutputFile != "" && filepath.Ext(config.OutputFile) == ".jsonl" {
		return newJSONLBackend(config)
	}

	backend, err := newSQLiteBackend(config)
	if err == nil {
		return backend, nil
	}

	jsonlBackend, jsonlErr := newJSONLBackend(config)
	if jsonlErr != nil {
		return nil, fmt.Errorf("all audit backends failed - SQLite: %w, JSONL: %v", err, jsonlErr)
	}
	return jsonlBackend, nil
}

// defaultAuditPath returns the fallback location for the audit store when
// no OutputFile is configured.
func defaultAuditPath(ext string) string {
	return filepath.Join(os.TempDir(), "riverbed", "audit"+ext)
}

// sqliteAuditBackend stores audit events in a single SQLite database with
// WAL journaling for concurrent writers.
type sqliteAuditBackend struct {
	mu     sync.Mutex
	db     *sql.DB
	dbPath string
}

const sqliteAuditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp_ns INTEGER NOT NULL,
	level TEXT NOT NULL,
	event TEXT NOT NULL,
	component TEXT NOT NULL,
	file_path TEXT,
	process_id INTEGER NOT NULL,
	context TEXT,
	checksum TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_events_timestamp ON audit_events(timestamp_ns);
CREATE INDEX IF NOT EXISTS idx_audit_events_file_path ON audit_events(file_path);
`

func newSQLiteBackend(config AuditConfig) (*sqliteAuditBackend, error) {
	dbPath := config.OutputFile
	if dbPath == "" {
		dbPath = defaultAuditPath(".db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3",
		fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if _, err := db.Exec(sqliteAuditSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	return &sqliteAuditBackend{db: db, dbPath: dbPath}, nil
}

func (b *sqliteAuditBackend) Write(events []AuditEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO audit_events
		(timestamp_ns, level, event, component, file_path, process_id, context, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare audit insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range events {
		contextJSON := ""
		if e.Context != nil {
			if data, err := json.Marshal(e.Context); err == nil {
				contextJSON = string(data)
			}
		}
		if _, err := stmt.Exec(
			e.Timestamp.UnixNano(), e.Level.String(), e.Event, e.Component,
			e.FilePath, e.ProcessID, contextJSON, e.Checksum,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}

	return tx.Commit()
}

func (b *sqliteAuditBackend) Flush() error {
	// Writes are transactional; nothing is buffered here.
	return nil
}

func (b *sqliteAuditBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.Close()
}

// jsonlAuditBackend appends one JSON document per line to a log file.
type jsonlAuditBackend struct {
	mu   sync.Mutex
	file *os.File
}

func newJSONLBackend(config AuditConfig) (*jsonlAuditBackend, error) {
	outputPath := config.OutputFile
	if outputPath == "" || filepath.Ext(outputPath) != ".jsonl" {
		outputPath = defaultAuditPath(".jsonl")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	return &jsonlAuditBackend{file: file}, nil
}

func (b *jsonlAuditBackend) Write(events []AuditEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range events {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal audit event: %w", err)
		}
		if _, err := b.file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to append audit event: %w", err)
		}
	}
	return nil
}

func (b *jsonlAuditBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Sync()
}

func (b *jsonlAuditBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.file.Sync(); err != nil {
		_ = b.file.Close()
		return err
	}
	return b.file.Close()
}
