// Package cli provides the command-line interface for riverbed geometry
// file inspection and editing.
//
// Built on the Orpheus framework with git-style subcommands:
//   - xs: cross-section operations (show, set, validate)
//   - storage: storage-area curve operations
//   - keywords: registry inspection
//   - backup: backup and restore
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package cli

import (
	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/agilira/riverbed"
)

// Manager wires riverbed components behind Orpheus commands.
type Manager struct {
	app         *orpheus.App
	cfg         riverbed.Config
	locks       *riverbed.FileLockRegistry
	auditLogger *riverbed.AuditLogger // Optional audit integration
}

// NewManager creates the CLI manager with the default configuration.
func NewManager() *Manager {
	return NewManagerWithConfig(riverbed.Config{}.WithDefaults())
}

// NewManagerWithConfig creates the CLI manager over a caller-supplied
// configuration, typically assembled from flags and environment.
func NewManagerWithConfig(cfg riverbed.Config) *Manager {
	app := orpheus.New("riverbed").
		SetDescription("Fixed-width geometry file parser and safe in-place editor").
		SetVersion("1.0.0")

	manager := &Manager{
		app:   app,
		cfg:   cfg,
		locks: riverbed.NewFileLockRegistry(),
	}

	manager.setupCrossSectionCommands()
	manager.setupStorageCommands()
	manager.setupUtilityCommands()
	manager.setupBackupCommands()

	return manager
}

// WithAudit enables audit logging for all mutating CLI operations.
func (m *Manager) WithAudit(auditLogger *riverbed.AuditLogger) *Manager {
	m.auditLogger = auditLogger
	return m
}

// Run executes the CLI application with the provided arguments.
func (m *Manager) Run(args []string) error {
	return m.app.Run(args)
}

// setupCrossSectionCommands configures the 'xs' command group.
func (m *Manager) setupCrossSectionCommands() {
	xsCmd := orpheus.NewCommand("xs", "Cross-section operations")

	// xs show <file> <river> <reach> <station>
	xsCmd.Subcommand("show", "Print a cross section's geometry", m.handleXSShow)

	// xs set <file> <river> <reach> <station> <points-file>
	setCmd := xsCmd.Subcommand("set", "Replace a cross section's station/elevation series", m.handleXSSet)
	setCmd.AddFlag("timestamped-backup", "t", "false", "Keep a timestamped backup in addition to the rolling .bak")

	// xs validate <file> [--all]
	validateCmd := xsCmd.Subcommand("validate", "Validate cross sections against the domain invariants", m.handleXSValidate)
	validateCmd.AddFlag("river", "r", "", "Restrict to one river")

	m.app.AddCommand(xsCmd)
}

// setupStorageCommands configures the 'storage' command group.
func (m *Manager) setupStorageCommands() {
	storageCmd := orpheus.NewCommand("storage", "Storage-area curve operations")

	// storage show <file> [name]
	storageCmd.Subcommand("show", "Print a storage area's elevation/area/volume curve", m.handleStorageShow)

	m.app.AddCommand(storageCmd)
}

// setupUtilityCommands configures registry and index inspection.
func (m *Manager) setupUtilityCommands() {
	keywordsCmd := orpheus.NewCommand("keywords", "List registered keywords and their count semantics").
		SetHandler(m.handleKeywords)
	m.app.AddCommand(keywordsCmd)

	indexCmd := orpheus.NewCommand("index", "Print keyword occurrence counts for a file").
		SetHandler(m.handleIndex)
	m.app.AddCommand(indexCmd)
}

// setupBackupCommands configures the 'backup' command group.
func (m *Manager) setupBackupCommands() {
	backupCmd := orpheus.NewCommand("backup", "Backup and restore geometry files")

	// backup create <file> [--timestamped]
	createCmd := backupCmd.Subcommand("create", "Create a backup copy", m.handleBackupCreate)
	createCmd.AddFlag("timestamped", "t", "false", "Create a timestamped historical backup")

	// backup restore <file>
	backupCmd.Subcommand("restore", "Restore the rolling .bak over the original", m.handleBackupRestore)

	m.app.AddCommand(backupCmd)
}
