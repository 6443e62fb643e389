// Command handlers for the riverbed CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"

	"github.com/agilira/go-errors"
	"github.com/agilira/orpheus/pkg/orpheus"
	"github.com/agilira/riverbed"
)

// handleXSShow prints one cross section addressed by its business key.
func (m *Manager) handleXSShow(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	river := ctx.GetArg(1)
	reach := ctx.GetArg(2)
	station := ctx.GetArg(3)

	g, err := riverbed.LoadGeometryFile(filePath)
	if err != nil {
		return err
	}

	extractor := riverbed.NewRecordExtractor(m.cfg)
	xs, err := extractor.ExtractCrossSection(g, river, reach, station)
	if err != nil {
		return err
	}

	fmt.Printf("Cross section %s / %s / %s (%d points)\n", xs.River, xs.Reach, xs.Station, len(xs.Points))
	if xs.LeftBank != 0 || xs.RightBank != 0 {
		fmt.Printf("  Banks: %g .. %g\n", xs.LeftBank, xs.RightBank)
	}
	if xs.Manning.Uniform {
		fmt.Printf("  Manning's n: LOB %.3f, channel %.3f, ROB %.3f\n",
			xs.Manning.LOB, xs.Manning.Channel, xs.Manning.ROB)
	} else if len(xs.Manning.Breaks) > 0 {
		fmt.Printf("  Manning's n: %d breakpoints\n", len(xs.Manning.Breaks))
	}
	if xs.Skipped > 0 {
		fmt.Printf("  WARNING: %d non-numeric chunks skipped during decode\n", xs.Skipped)
	}
	for _, p := range xs.Points {
		fmt.Printf("  %10.2f %10.2f\n", p.Station, p.Elevation)
	}
	return nil
}

// handleXSSet replaces a cross section's station/elevation series from a
// points file of whitespace-separated "station elevation" rows.
func (m *Manager) handleXSSet(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	river := ctx.GetArg(1)
	reach := ctx.GetArg(2)
	station := ctx.GetArg(3)
	pointsPath := ctx.GetArg(4)

	points, err := loadPointsFile(pointsPath)
	if err != nil {
		return err
	}

	patcher := riverbed.NewRecordPatcher(m.cfg, m.locks).WithAudit(m.auditLogger)

	if ctx.GetFlagBool("timestamped-backup") {
		backupPath, err := riverbed.NewBackupManager().TimestampedBackup(filePath)
		if err != nil {
			return err
		}
		fmt.Printf("Historical backup: %s\n", backupPath)
	}

	if err := patcher.PatchStationElevation(filePath, river, reach, station, points); err != nil {
		return err
	}

	fmt.Printf("Patched %s/%s/%s with %d points\n", river, reach, station, len(points))
	return nil
}

// handleXSValidate runs the invariant validator over every cross section
// in the file, reporting all findings without stopping at the first.
func (m *Manager) handleXSValidate(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	riverFilter := ctx.GetFlagString("river")

	g, err := riverbed.LoadGeometryFile(filePath)
	if err != nil {
		return err
	}

	extractor := riverbed.NewRecordExtractor(m.cfg)
	validator := riverbed.NewValidator(m.cfg)

	sections, failures := extractor.ScanCrossSections(g)
	problems := 0

	for _, recerr := range failures {
		fmt.Printf("EXTRACT %v\n", recerrString(recerr))
		problems++
	}

	for _, xs := range sections {
		if riverFilter != "" && xs.River != riverFilter {
			continue
		}
		result := validator.ValidateCrossSection(xs)
		for _, v := range result.Violations {
			fmt.Printf("ERROR   %s/%s/%s: %s\n", xs.River, xs.Reach, xs.Station, v)
			problems++
		}
		for _, w := range result.Warnings {
			fmt.Printf("WARN    %s/%s/%s: %s\n", xs.River, xs.Reach, xs.Station, w)
		}
	}

	if problems > 0 {
		return errors.New(riverbed.ErrCodeValidationFailed,
			fmt.Sprintf("%d problem(s) found in %s", problems, filePath))
	}
	fmt.Printf("%d cross section(s) valid\n", len(sections))
	return nil
}

// handleStorageShow prints a storage area's curve.
func (m *Manager) handleStorageShow(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	name := ctx.GetArg(1)

	g, err := riverbed.LoadGeometryFile(filePath)
	if err != nil {
		return err
	}

	extractor := riverbed.NewRecordExtractor(m.cfg)
	curve, err := extractor.ExtractStorageCurve(g, name)
	if err != nil {
		return err
	}

	fmt.Printf("Storage curve %q (%d rows)\n", curve.Name, len(curve.Rows))
	fmt.Printf("  %10s %10s %10s\n", "Elevation", "Area", "Volume")
	for _, row := range curve.Rows {
		fmt.Printf("  %10.2f %10.2f %10.2f\n", row.Elevation, row.Area, row.Volume)
	}
	return nil
}

// handleKeywords lists the registered keyword specs.
func (m *Manager) handleKeywords(ctx *orpheus.Context) error {
	table := riverbed.NewKeywordTable()
	for _, kw := range table.Keywords() {
		spec, _ := table.Spec(kw)
		terminators := "same keyword / EOF"
		if len(spec.Terminators) > 0 {
			terminators = fmt.Sprintf("%d terminator(s)", len(spec.Terminators))
		}
		fmt.Printf("  %-28s %-5s tuple=%d  %s\n", kw, spec.Kind, spec.TupleSize, terminators)
	}
	return nil
}

// handleIndex prints keyword occurrence counts for a file.
func (m *Manager) handleIndex(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)

	g, err := riverbed.LoadGeometryFile(filePath)
	if err != nil {
		return err
	}

	table := riverbed.NewKeywordTable()
	index := riverbed.BuildLineIndex(g.Lines(), table)
	for _, kw := range table.Keywords() {
		if n := index.Count(kw); n > 0 {
			fmt.Printf("  %-28s %d\n", kw, n)
		}
	}
	return nil
}

// handleBackupCreate creates a rolling or timestamped backup.
func (m *Manager) handleBackupCreate(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)
	backups := riverbed.NewBackupManager()

	var backupPath string
	var err error
	if ctx.GetFlagBool("timestamped") {
		backupPath, err = backups.TimestampedBackup(filePath)
	} else {
		backupPath, err = backups.Backup(filePath)
	}
	if err != nil {
		return err
	}

	if m.auditLogger != nil {
		m.auditLogger.LogBackup("create", filePath, backupPath)
	}
	fmt.Printf("Backup created: %s\n", backupPath)
	return nil
}

// handleBackupRestore restores the rolling .bak over the original.
func (m *Manager) handleBackupRestore(ctx *orpheus.Context) error {
	filePath := ctx.GetArg(0)

	patcher := riverbed.NewRecordPatcher(m.cfg, m.locks).WithAudit(m.auditLogger)
	if err := patcher.Restore(filePath); err != nil {
		return err
	}

	fmt.Printf("Restored %s from backup\n", filePath)
	return nil
}
