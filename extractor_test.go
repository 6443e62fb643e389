// extractor_test.go: Tests for typed record extraction
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"math"
	"strings"
	"testing"
)

// geometryFixture assembles a two-section reach plus a storage area and a
// lateral weir, with all body lines rendered through the codec so field
// widths are exact.
func geometryFixture(t *testing.T) *GeometryFile {
	t.Helper()

	var lines []string
	add := func(ls ...string) { lines = append(lines, ls...) }
	encode := func(values []float64) []string {
		encoded, err := EncodeValues(values, 8, 10, 2)
		if err != nil {
			t.Fatalf("fixture encode failed: %v", err)
		}
		return encoded
	}

	add("River Reach=Salt River,Upper")
	add("Type RM Length L Ch R = 1 ,41950,100,100,100")
	add("XS GIS Cut Line= 2")
	add(encode([]float64{1000, 2000, 1100, 2100})...)
	add("#Sta/Elev= 4")
	add(encode([]float64{0, 100, 50, 95, 150, 95, 200, 100})...)
	add("#Mann= 3 ,0.035 ,0.025 ,0.035")
	add("Bank Sta=50,150")
	add("Type RM Length L Ch R = 1 ,41800,90,90,90")
	add("#Sta/Elev= 2")
	add(encode([]float64{0, 99, 200, 99.5})...)
	add("#Mann= 4")
	add(encode([]float64{0, 0.04, 120, 0.03})...)
	add("Bank Sta=0,200")
	add("Storage Area=Pond A,123,456")
	add("Elev Area Volume= 3")
	add(encode([]float64{100, 10, 0, 101, 12, 11, 102, 14, 24})...)
	add("Lateral Weir SE= 2")
	add(encode([]float64{0, 105, 100, 105})...)
	add("Lateral Weir Coef= 2.6")

	return ParseGeometry(strings.Join(lines, "\n") + "\n")
}

func TestExtractFortyPairScenario(t *testing.T) {
	// "#Sta/Elev= 40" followed by 8 full lines of 10 values yields
	// exactly 40 pairs in file order.
	raw := make([]float64, 80)
	for i := range raw {
		raw[i] = float64(i)
	}
	body, err := EncodeValues(raw, 8, 10, 2)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(body) != 8 {
		t.Fatalf("Fixture should occupy 8 lines, got %d", len(body))
	}

	lines := append([]string{"#Sta/Elev= 40"}, body...)
	g := ParseGeometry(strings.Join(lines, "\n") + "\n")

	extractor := NewRecordExtractor(Config{})
	record, err := extractor.ExtractPairs(g, KeywordStationElevation, 0)
	if err != nil {
		t.Fatalf("ExtractPairs failed: %v", err)
	}

	if len(record.Pairs) != 40 {
		t.Fatalf("Expected 40 pairs, got %d", len(record.Pairs))
	}
	for i, pair := range record.Pairs {
		if pair[0] != float64(2*i) || pair[1] != float64(2*i+1) {
			t.Fatalf("Pair %d out of order: %v", i, pair)
		}
	}
}

func TestExtractValuesInlineManning(t *testing.T) {
	g := geometryFixture(t)
	extractor := NewRecordExtractor(Config{})

	record, err := extractor.ExtractValues(g, KeywordManning, 0)
	if err != nil {
		t.Fatalf("ExtractValues failed: %v", err)
	}

	if record.Count != 3 {
		t.Errorf("Expected count 3, got %d", record.Count)
	}
	expected := []float64{0.035, 0.025, 0.035}
	if len(record.Values) != 3 {
		t.Fatalf("Expected 3 values, got %v", record.Values)
	}
	for i, want := range expected {
		if record.Values[i] != want {
			t.Errorf("Value %d: expected %g, got %g", i, want, record.Values[i])
		}
	}
}

func TestExtractValuesCapsInlineSurplus(t *testing.T) {
	// A keyword line promising 2 values but carrying 3 inline contributes
	// only the promised ones.
	g := ParseGeometry("#Mann= 2 ,0.035 ,0.025 ,0.035\n")
	extractor := NewRecordExtractor(Config{})

	record, err := extractor.ExtractValues(g, KeywordManning, 0)
	if err != nil {
		t.Fatalf("ExtractValues failed: %v", err)
	}

	if record.Count != 2 {
		t.Errorf("Expected count 2, got %d", record.Count)
	}
	if len(record.Values) != 2 {
		t.Fatalf("Expected 2 values, got %v", record.Values)
	}
	if record.Values[0] != 0.035 || record.Values[1] != 0.025 {
		t.Errorf("Surplus value not dropped: %v", record.Values)
	}
}

func TestExtractCrossSectionByBusinessKey(t *testing.T) {
	g := geometryFixture(t)
	extractor := NewRecordExtractor(Config{})

	xs, err := extractor.ExtractCrossSection(g, "Salt River", "Upper", "41950")
	if err != nil {
		t.Fatalf("ExtractCrossSection failed: %v", err)
	}

	if len(xs.Points) != 4 {
		t.Fatalf("Expected 4 points, got %d", len(xs.Points))
	}
	if xs.Points[1].Station != 50 || xs.Points[1].Elevation != 95 {
		t.Errorf("Point 1 wrong: %+v", xs.Points[1])
	}
	if xs.LeftBank != 50 || xs.RightBank != 150 {
		t.Errorf("Banks wrong: %g, %g", xs.LeftBank, xs.RightBank)
	}
	if !xs.Manning.Uniform {
		t.Fatal("Expected uniform Manning assignment")
	}
	if xs.Manning.Channel != 0.025 {
		t.Errorf("Channel n wrong: %g", xs.Manning.Channel)
	}
}

func TestExtractCrossSectionManningBreakpoints(t *testing.T) {
	g := geometryFixture(t)
	extractor := NewRecordExtractor(Config{})

	xs, err := extractor.ExtractCrossSection(g, "Salt River", "Upper", "41800")
	if err != nil {
		t.Fatalf("ExtractCrossSection failed: %v", err)
	}

	if xs.Manning.Uniform {
		t.Fatal("Expected breakpoint Manning assignment")
	}
	if len(xs.Manning.Breaks) != 2 {
		t.Fatalf("Expected 2 breakpoints, got %d", len(xs.Manning.Breaks))
	}
	if xs.Manning.Breaks[1].Station != 120 || xs.Manning.Breaks[1].N != 0.03 {
		t.Errorf("Breakpoint 1 wrong: %+v", xs.Manning.Breaks[1])
	}
}

func TestExtractCrossSectionNotFound(t *testing.T) {
	g := geometryFixture(t)
	extractor := NewRecordExtractor(Config{})

	_, err := extractor.ExtractCrossSection(g, "Salt River", "Upper", "99999")
	if err == nil {
		t.Fatal("Expected record not found")
	}
	if !strings.Contains(err.Error(), "RIVERBED_RECORD_NOT_FOUND") {
		t.Errorf("Expected record not found code, got: %v", err)
	}
}

func TestExtractMalformedCount(t *testing.T) {
	g := ParseGeometry("#Sta/Elev= lots\n    0.00  100.00\n")
	extractor := NewRecordExtractor(Config{})

	_, err := extractor.ExtractPairs(g, KeywordStationElevation, 0)
	if err == nil {
		t.Fatal("Expected MalformedCount error")
	}
	if !strings.Contains(err.Error(), "RIVERBED_MALFORMED_COUNT") {
		t.Errorf("Expected malformed count code, got: %v", err)
	}
}

func TestExtractIncompleteRecord(t *testing.T) {
	// Count promises 4 pairs; the body carries only 2.
	g := ParseGeometry("#Sta/Elev= 4\n    0.00  100.00   50.00   95.00\n")
	extractor := NewRecordExtractor(Config{})

	_, err := extractor.ExtractPairs(g, KeywordStationElevation, 0)
	if err == nil {
		t.Fatal("Expected IncompleteRecord error")
	}
	if !strings.Contains(err.Error(), "RIVERBED_INCOMPLETE_RECORD") {
		t.Errorf("Expected incomplete record code, got: %v", err)
	}
}

func TestExtractStrictDecode(t *testing.T) {
	content := "#Sta/Elev= 2\n    0.00  100.00  BADBAD   95.00   60.00\n"

	lenient := NewRecordExtractor(Config{})
	record, err := lenient.ExtractPairs(ParseGeometry(content), KeywordStationElevation, 0)
	if err != nil {
		t.Fatalf("Lenient extract failed: %v", err)
	}
	if record.Skipped != 1 {
		t.Errorf("Expected 1 skipped chunk surfaced, got %d", record.Skipped)
	}

	strict := NewRecordExtractor(Config{StrictDecode: true})
	if _, err := strict.ExtractPairs(ParseGeometry(content), KeywordStationElevation, 0); err == nil {
		t.Fatal("Strict decode should fail on malformed chunks")
	}
}

func TestExtractStorageCurve(t *testing.T) {
	g := geometryFixture(t)
	extractor := NewRecordExtractor(Config{})

	curve, err := extractor.ExtractStorageCurve(g, "Pond A")
	if err != nil {
		t.Fatalf("ExtractStorageCurve failed: %v", err)
	}

	if len(curve.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(curve.Rows))
	}
	want := StorageRow{Elevation: 101, Area: 12, Volume: 11}
	if curve.Rows[1] != want {
		t.Errorf("Row 1 wrong: %+v", curve.Rows[1])
	}

	if _, err := extractor.ExtractStorageCurve(g, "No Such Pond"); err == nil {
		t.Error("Expected not found for unknown storage area")
	}
}

func TestExtractStructureProfile(t *testing.T) {
	g := geometryFixture(t)
	extractor := NewRecordExtractor(Config{})

	profile, err := extractor.ExtractStructureProfile(g, WeirProfile, 0)
	if err != nil {
		t.Fatalf("ExtractStructureProfile failed: %v", err)
	}

	if len(profile.Points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(profile.Points))
	}
	if profile.Points[1].Station != 100 || profile.Points[1].Elevation != 105 {
		t.Errorf("Point 1 wrong: %+v", profile.Points[1])
	}
	if profile.WeirCoefficient != 2.6 {
		t.Errorf("Expected weir coefficient 2.6, got %g", profile.WeirCoefficient)
	}
}

func TestScanCrossSections(t *testing.T) {
	g := geometryFixture(t)
	extractor := NewRecordExtractor(Config{})

	sections, failures := extractor.ScanCrossSections(g)
	if len(failures) != 0 {
		t.Fatalf("Expected no failures, got %v", failures)
	}
	if len(sections) != 2 {
		t.Fatalf("Expected 2 cross sections, got %d", len(sections))
	}
	if sections[0].Station != "41950" || sections[1].Station != "41800" {
		t.Errorf("Stations wrong: %s, %s", sections[0].Station, sections[1].Station)
	}
	for _, xs := range sections {
		if xs.River != "Salt River" || xs.Reach != "Upper" {
			t.Errorf("Business key wrong: %s/%s", xs.River, xs.Reach)
		}
	}
}

func TestScanCollectsPerRecordFailures(t *testing.T) {
	// Second section's count token is garbage; the batch must still
	// deliver the first section plus one failure.
	lines := []string{
		"River Reach=Salt River,Upper",
		"Type RM Length L Ch R = 1 ,41950,100,100,100",
		"#Sta/Elev= 2",
		"    0.00  100.00   50.00   95.00",
		"Type RM Length L Ch R = 1 ,41800,90,90,90",
		"#Sta/Elev= broken",
		"    0.00   99.00",
	}
	g := ParseGeometry(strings.Join(lines, "\n") + "\n")

	extractor := NewRecordExtractor(Config{})
	sections, failures := extractor.ScanCrossSections(g)

	if len(sections) != 1 {
		t.Fatalf("Expected 1 good section, got %d", len(sections))
	}
	if len(failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(failures))
	}
	if !strings.Contains(failures[0].Error(), "RIVERBED_MALFORMED_COUNT") {
		t.Errorf("Failure should carry the malformed count code: %v", failures[0])
	}
}

func TestExtractedRecordIsIndependentCopy(t *testing.T) {
	g := geometryFixture(t)
	extractor := NewRecordExtractor(Config{})

	xs, err := extractor.ExtractCrossSection(g, "Salt River", "Upper", "41950")
	if err != nil {
		t.Fatalf("ExtractCrossSection failed: %v", err)
	}

	// Mutating the record must not disturb the source buffer.
	before := strings.Join(g.Lines(), "\n")
	xs.Points[0].Elevation = math.Inf(1)
	xs.Points = append(xs.Points, Point{Station: 999, Elevation: 999})
	after := strings.Join(g.Lines(), "\n")

	if before != after {
		t.Error("Mutating an extracted record changed the source lines")
	}
}
