// doc.go: Package documentation for riverbed
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

/*
Package riverbed parses and safely edits fixed-width hydraulic-model
geometry files: cross-section geometry, Manning's roughness, bank
stations, storage-area curves and structure profiles, encoded in a
positional FORTRAN-style layout of 8-character numeric fields packed ten
to an 80-character line.

Records are located lexically: each keyword opens a section that runs
until a keyword from its terminator table, the next occurrence of the
same keyword, or end-of-file. The same trailing count token means "N
coordinate pairs" after one keyword and "N values" after another; the
KeywordTable resolves that once, declaratively.

# Reading

	cfg := riverbed.Config{}.WithDefaults()
	extractor := riverbed.NewRecordExtractor(cfg)

	g, err := riverbed.LoadGeometryFile("river.g01")
	if err != nil {
		// ...
	}
	xs, err := extractor.ExtractCrossSection(g, "Salt River", "Upper", "41950")

# Writing

All mutation goes through RecordPatcher: one lock-held cycle of load,
re-locate, validate, backup, splice and atomic write. Every byte outside
the patched record survives identically, and a .bak copy of the pre-write
content always exists before the file is touched.

	locks := riverbed.NewFileLockRegistry()
	patcher := riverbed.NewRecordPatcher(cfg, locks)

	err = patcher.PatchStationElevation("river.g01", "Salt River", "Upper", "41950", points)

Validation violations are collected across the whole record and returned
together, so a caller fixes every problem in one pass. Elevation range
findings are warnings by default and escalatable via Config.

# Concurrency

The core is synchronous. Concurrent callers editing the same file
serialize on a per-path lock from an injected FileLockRegistry; edits to
distinct files run in parallel.
*/
package riverbed
