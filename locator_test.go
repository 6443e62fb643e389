// locator_test.go: Tests for section location and the line index
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"strings"
	"testing"
)

func locatorFixture() []string {
	return []string{
		"River Reach=Salt River,Upper",
		"Type RM Length L Ch R = 1 ,41950,100,100,100",
		"#Sta/Elev= 2",
		"    0.00  100.00   50.00   95.00",
		"#Mann= 3 ,0.035 ,0.025 ,0.035",
		"Bank Sta=0,50",
		"Type RM Length L Ch R = 1 ,41800,90,90,90",
		"#Sta/Elev= 2",
		"    0.00   99.00  200.00   99.50",
		"#Mann= 3 ,0.03 ,0.02 ,0.03",
		"Bank Sta=0,200",
	}
}

func TestLocateWithRegisteredTerminator(t *testing.T) {
	locator := NewSectionLocator(NewKeywordTable())
	lines := locatorFixture()

	section, err := locator.Locate(lines, KeywordStationElevation, 0)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}

	if section.Start != 2 || section.End != 4 {
		t.Errorf("Expected span [2, 4), got [%d, %d)", section.Start, section.End)
	}
	if section.Kind != KindPair {
		t.Errorf("Expected PAIR kind, got %s", section.Kind)
	}
	if section.TruncatedAtEOF {
		t.Error("Section closed by a terminator should not be flagged truncated")
	}
}

func TestLocateFromOffset(t *testing.T) {
	locator := NewSectionLocator(NewKeywordTable())
	lines := locatorFixture()

	// Starting past the first record must find the second.
	section, err := locator.Locate(lines, KeywordStationElevation, 4)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if section.Start != 7 || section.End != 9 {
		t.Errorf("Expected span [7, 9), got [%d, %d)", section.Start, section.End)
	}
}

func TestLocateKeywordNotFound(t *testing.T) {
	locator := NewSectionLocator(NewKeywordTable())

	_, err := locator.Locate(locatorFixture(), KeywordStorageCurve, 0)
	if err == nil {
		t.Fatal("Expected KeywordNotFound")
	}
	if !strings.Contains(err.Error(), "RIVERBED_KEYWORD_NOT_FOUND") {
		t.Errorf("Expected keyword not found code, got: %v", err)
	}
}

func TestLocateImplicitSameKeywordTermination(t *testing.T) {
	table := NewKeywordTable()
	if err := table.Register("Repeat=", KeywordSpec{Kind: KindValue}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	locator := NewSectionLocator(table)

	lines := []string{
		"Repeat= 2",
		"    1.00    2.00",
		"Repeat= 2",
		"    3.00    4.00",
	}

	section, err := locator.Locate(lines, "Repeat=", 0)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if section.Start != 0 || section.End != 2 {
		t.Errorf("Expected span [0, 2), got [%d, %d)", section.Start, section.End)
	}
}

func TestLocateEOFFallback(t *testing.T) {
	locator := NewSectionLocator(NewKeywordTable())

	// The record runs to end-of-file with no terminator in sight.
	lines := []string{
		"#Sta/Elev= 2",
		"    0.00  100.00   50.00   95.00",
	}

	section, err := locator.Locate(lines, KeywordStationElevation, 0)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if section.End != len(lines) {
		t.Errorf("Expected end at EOF (%d), got %d", len(lines), section.End)
	}
	if !section.TruncatedAtEOF {
		t.Error("EOF-closed section should be flagged truncated")
	}
}

func TestLocateAll(t *testing.T) {
	locator := NewSectionLocator(NewKeywordTable())
	sections := locator.LocateAll(locatorFixture(), KeywordStationElevation)

	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d", len(sections))
	}
	if sections[0].Start != 2 || sections[1].Start != 7 {
		t.Errorf("Unexpected starts: %d, %d", sections[0].Start, sections[1].Start)
	}
}

func TestLocateIndexedMatchesLinearScan(t *testing.T) {
	table := NewKeywordTable()
	locator := NewSectionLocator(table)
	lines := locatorFixture()
	index := BuildLineIndex(lines, table)

	// Every offset must resolve to the same span the linear scan finds.
	for _, from := range []int{0, 3, 4, 7} {
		want, wantErr := locator.Locate(lines, KeywordStationElevation, from)
		got, gotErr := locator.LocateIndexed(lines, index, KeywordStationElevation, from)
		if (wantErr == nil) != (gotErr == nil) {
			t.Fatalf("From %d: error mismatch: %v vs %v", from, wantErr, gotErr)
		}
		if got != want {
			t.Errorf("From %d: expected %+v, got %+v", from, want, got)
		}
	}

	// A keyword the index does not carry (section headers are not
	// registered) still resolves through the fallback scan.
	section, err := locator.LocateIndexed(lines, index, KeywordSectionHeader, 0)
	if err != nil {
		t.Fatalf("Fallback locate failed: %v", err)
	}
	if section.Start != 1 {
		t.Errorf("Expected header at line 1, got %d", section.Start)
	}

	// Absent keywords fail the same way in both paths.
	if _, err := locator.LocateIndexed(lines, index, KeywordStorageCurve, 0); err == nil {
		t.Error("Expected KeywordNotFound through the index path")
	}
}

func TestBuildLineIndex(t *testing.T) {
	table := NewKeywordTable()
	index := BuildLineIndex(locatorFixture(), table)

	if got := index.Count(KeywordStationElevation); got != 2 {
		t.Errorf("Expected 2 station/elevation records, got %d", got)
	}
	if got := index.Count(KeywordManning); got != 2 {
		t.Errorf("Expected 2 Manning records, got %d", got)
	}
	if got := index.Count(KeywordStorageCurve); got != 0 {
		t.Errorf("Expected no storage curves, got %d", got)
	}

	occ := index.Occurrences(KeywordStationElevation)
	if len(occ) != 2 || occ[0] != 2 || occ[1] != 7 {
		t.Errorf("Unexpected occurrences: %v", occ)
	}

	if n, ok := index.FirstAt(KeywordStationElevation, 3); !ok || n != 7 {
		t.Errorf("Expected first occurrence at 7, got %d (ok=%v)", n, ok)
	}
	if _, ok := index.FirstAt(KeywordStationElevation, 8); ok {
		t.Error("Expected no occurrence past line 8")
	}
}
