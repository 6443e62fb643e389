// keywords_test.go: Tests for the keyword registry
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import "testing"

func TestClassifyBuiltinKeywords(t *testing.T) {
	table := NewKeywordTable()

	tests := []struct {
		keyword string
		want    RecordKind
	}{
		{KeywordStationElevation, KindPair},
		{KeywordGISCutLine, KindPair},
		{KeywordStorageCurve, KindPair},
		{KeywordWeirProfile, KindPair},
		{KeywordDeckProfile, KindPair},
		{KeywordCulvertProfile, KindPair},
		{KeywordManning, KindValue},
		{KeywordBankStations, KindValue},
		{KeywordPierSkew, KindValue},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			if got := table.Classify(tt.keyword); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.keyword, got, tt.want)
			}
		})
	}
}

func TestClassifyUnknownDefaultsToValue(t *testing.T) {
	table := NewKeywordTable()
	if got := table.Classify("Unheard Of="); got != KindValue {
		t.Errorf("Unknown keyword should classify as VALUE, got %s", got)
	}
}

func TestPairCountSemantics(t *testing.T) {
	table := NewKeywordTable()

	// PAIR keyword: count 40 means 80 raw values.
	if got := table.RawValuesFor(KeywordStationElevation, 40); got != 80 {
		t.Errorf("Expected 80 raw values for 40 pairs, got %d", got)
	}

	// VALUE keyword: count 3 means 3 raw values.
	if got := table.RawValuesFor(KeywordManning, 3); got != 3 {
		t.Errorf("Expected 3 raw values, got %d", got)
	}

	// Storage curve: count 5 means 15 raw values (elevation/area/volume).
	if got := table.RawValuesFor(KeywordStorageCurve, 5); got != 15 {
		t.Errorf("Expected 15 raw values for 5 triples, got %d", got)
	}

	// Unknown keyword: count passes through unchanged.
	if got := table.RawValuesFor("Unheard Of=", 7); got != 7 {
		t.Errorf("Expected 7 raw values for unknown keyword, got %d", got)
	}
}

func TestTerminators(t *testing.T) {
	table := NewKeywordTable()

	terminators := table.Terminators(KeywordStationElevation)
	if len(terminators) == 0 {
		t.Fatal("Station/elevation keyword should have registered terminators")
	}

	found := false
	for _, term := range terminators {
		if term == KeywordManning {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected %q among terminators, got %v", KeywordManning, terminators)
	}

	// Bank stations have no registered terminators: implicit rule applies.
	if terms := table.Terminators(KeywordBankStations); len(terms) != 0 {
		t.Errorf("Expected implicit termination for bank stations, got %v", terms)
	}
}

func TestRegisterDefaultsTupleSize(t *testing.T) {
	table := NewKeywordTable()

	if err := table.Register("Ice Thickness=", KeywordSpec{Kind: KindValue}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	spec, ok := table.Spec("Ice Thickness=")
	if !ok || spec.TupleSize != 1 {
		t.Errorf("VALUE keyword should default to tuple size 1, got %+v", spec)
	}

	if err := table.Register("Ice SE=", KeywordSpec{Kind: KindPair}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	spec, _ = table.Spec("Ice SE=")
	if spec.TupleSize != 2 {
		t.Errorf("PAIR keyword should default to tuple size 2, got %+v", spec)
	}

	if err := table.Register("", KeywordSpec{}); err == nil {
		t.Error("Empty keyword should be rejected")
	}
}

func TestLoadSpecsFromYAML(t *testing.T) {
	table := NewKeywordTable()

	yamlDoc := []byte(`
keywords:
  - keyword: "Ice Thickness="
    kind: value
    terminators: ["#Sta/Elev="]
  - keyword: "Levee SE="
    kind: pair
`)

	if err := table.LoadSpecs(yamlDoc); err != nil {
		t.Fatalf("LoadSpecs failed: %v", err)
	}

	if got := table.Classify("Ice Thickness="); got != KindValue {
		t.Errorf("Expected VALUE, got %s", got)
	}
	if got := table.Classify("Levee SE="); got != KindPair {
		t.Errorf("Expected PAIR, got %s", got)
	}
	if got := table.RawValuesFor("Levee SE=", 6); got != 12 {
		t.Errorf("Expected 12 raw values, got %d", got)
	}
}

func TestLoadSpecsRejectsBadKind(t *testing.T) {
	table := NewKeywordTable()

	yamlDoc := []byte(`
keywords:
  - keyword: "Bad="
    kind: triple
`)
	if err := table.LoadSpecs(yamlDoc); err == nil {
		t.Error("Expected error for unknown kind")
	}

	if err := table.LoadSpecs([]byte("keywords: [")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
