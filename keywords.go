// keywords.go: Static keyword registry with count semantics and terminators
//
// The geometry format has no self-describing grammar: a record's extent is
// decided lexically, by matching later lines against a per-keyword table of
// terminator keywords. The same trailing count token means "N coordinate
// tuples" after one keyword and "N scalar values" after another. This file
// is the single declarative home for both facts, so new keyword types are
// added in one place and tested in isolation from the scanning logic.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// RecordKind classifies how a keyword's trailing count is interpreted.
type RecordKind int

const (
	// KindValue: count means N raw values.
	KindValue RecordKind = iota
	// KindPair: count means N coordinate tuples (TupleSize raw values each).
	KindPair
)

func (k RecordKind) String() string {
	switch k {
	case KindValue:
		return "VALUE"
	case KindPair:
		return "PAIR"
	default:
		return "UNKNOWN"
	}
}

// KeywordSpec describes one registered keyword: its count semantics and
// the keywords that legally close a record it starts. An empty Terminators
// list means the record is implicitly terminated by the next occurrence of
// the same keyword, or end-of-file.
type KeywordSpec struct {
	Kind RecordKind
	// TupleSize is the number of raw values per counted unit: 1 for
	// scalar lists, 2 for station/elevation style pairs, 3 for the
	// storage elevation/area/volume curve.
	TupleSize   int
	Terminators []string
}

// Keyword strings as they appear at line start in geometry files. The
// trailing "=" is part of the keyword: "#Mann=" never matches "#Manning=".
const (
	KeywordStationElevation = "#Sta/Elev="
	KeywordManning          = "#Mann="
	KeywordBankStations     = "Bank Sta="
	KeywordGISCutLine       = "XS GIS Cut Line="
	KeywordRiverReach       = "River Reach="
	KeywordSectionHeader    = "Type RM Length L Ch R ="
	KeywordStorageArea      = "Storage Area="
	KeywordStorageCurve     = "Elev Area Volume="
	KeywordConnection       = "Connection="
	KeywordWeirProfile      = "Lateral Weir SE="
	KeywordWeirCoefficient  = "Lateral Weir Coef="
	KeywordDeckProfile      = "Deck SE="
	KeywordDeckWidth        = "Deck Width="
	KeywordDeckWeirCoef     = "Weir Coef="
	KeywordCulvertProfile   = "Culvert SE="
	KeywordCulvertShape     = "Culvert Shape="
	KeywordCulvertBarrels   = "Culvert Barrels="
	KeywordPierSkew         = "Pier Skew="
)

// builtinSpecs is the embedded registry. Terminator lists follow the
// record order the modeling tools emit: a cross-section block is
// header, cut line, station/elevation, Manning, bank stations.
var builtinSpecs = map[string]KeywordSpec{
	KeywordStationElevation: {
		Kind:      KindPair,
		TupleSize: 2,
		Terminators: []string{
			KeywordManning, KeywordBankStations,
			KeywordSectionHeader, KeywordRiverReach,
		},
	},
	KeywordGISCutLine: {
		Kind:      KindPair,
		TupleSize: 2,
		Terminators: []string{
			KeywordStationElevation, KeywordManning,
			KeywordSectionHeader, KeywordRiverReach,
		},
	},
	KeywordManning: {
		Kind:      KindValue,
		TupleSize: 1,
		Terminators: []string{
			KeywordBankStations, KeywordStationElevation,
			KeywordSectionHeader, KeywordRiverReach,
		},
	},
	// Single-line records: implicit same-keyword/EOF termination.
	KeywordBankStations: {Kind: KindValue, TupleSize: 1},
	KeywordPierSkew: {
		Kind:      KindValue,
		TupleSize: 1,
		Terminators: []string{
			KeywordDeckProfile, KeywordSectionHeader, KeywordRiverReach,
		},
	},
	KeywordStorageCurve: {
		Kind:      KindPair,
		TupleSize: 3,
		Terminators: []string{
			KeywordStorageArea, KeywordConnection, KeywordRiverReach,
		},
	},
	KeywordWeirProfile: {
		Kind:      KindPair,
		TupleSize: 2,
		Terminators: []string{
			KeywordWeirCoefficient, KeywordSectionHeader, KeywordRiverReach,
		},
	},
	KeywordDeckProfile: {
		Kind:      KindPair,
		TupleSize: 2,
		Terminators: []string{
			KeywordDeckWidth, KeywordDeckWeirCoef, KeywordPierSkew,
			KeywordSectionHeader, KeywordRiverReach,
		},
	},
	KeywordCulvertProfile: {
		Kind:      KindPair,
		TupleSize: 2,
		Terminators: []string{
			KeywordCulvertShape, KeywordCulvertBarrels,
			KeywordSectionHeader, KeywordRiverReach,
		},
	},
}

// KeywordTable resolves keyword count semantics and section terminators.
// The table is seeded with the builtin registry and may be extended at
// startup, either programmatically or from a YAML document. Lookups are
// safe for concurrent use; registration is expected at startup only.
type KeywordTable struct {
	mu    sync.RWMutex
	specs map[string]KeywordSpec
}

// NewKeywordTable returns a table seeded with the builtin keyword registry.
func NewKeywordTable() *KeywordTable {
	specs := make(map[string]KeywordSpec, len(builtinSpecs))
	for k, s := range builtinSpecs {
		specs[k] = s
	}
	return &KeywordTable{specs: specs}
}

// Classify returns the count semantics for a keyword. Unknown keywords
// default to VALUE: an explicit fallback, not a match-all guess, because
// a misread pair count silently doubles the record length while a misread
// value count only under-reads.
func (t *KeywordTable) Classify(keyword string) RecordKind {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if spec, ok := t.specs[keyword]; ok {
		return spec.Kind
	}
	return KindValue
}

// Spec returns the full registered spec for a keyword.
func (t *KeywordTable) Spec(keyword string) (KeywordSpec, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	spec, ok := t.specs[keyword]
	return spec, ok
}

// Terminators returns the keywords that legally close a record started by
// keyword. An empty result means the implicit rule applies: the record is
// terminated by the next occurrence of the same keyword or end-of-file.
func (t *KeywordTable) Terminators(keyword string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	spec, ok := t.specs[keyword]
	if !ok || len(spec.Terminators) == 0 {
		return nil
	}
	out := make([]string, len(spec.Terminators))
	copy(out, spec.Terminators)
	return out
}

// RawValuesFor converts a keyword-line count into the total number of raw
// numeric values the record body must supply: count for VALUE keywords,
// count*TupleSize for PAIR keywords.
func (t *KeywordTable) RawValuesFor(keyword string, count int) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if spec, ok := t.specs[keyword]; ok && spec.Kind == KindPair {
		return count * spec.TupleSize
	}
	return count
}

// Register adds or replaces a keyword spec. TupleSize defaults from the
// kind (2 for PAIR, 1 for VALUE) when left zero.
func (t *KeywordTable) Register(keyword string, spec KeywordSpec) error {
	if keyword == "" {
		return errors.New(ErrCodeInvalidKeywordSpec, "keyword cannot be empty")
	}
	if spec.TupleSize == 0 {
		if spec.Kind == KindPair {
			spec.TupleSize = 2
		} else {
			spec.TupleSize = 1
		}
	}
	if spec.TupleSize < 1 {
		return errors.New(ErrCodeInvalidKeywordSpec,
			fmt.Sprintf("keyword %q tuple size must be positive", keyword))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.specs[keyword] = spec
	return nil
}

// Keywords returns all registered keywords in sorted order.
func (t *KeywordTable) Keywords() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.specs))
	for k := range t.specs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// yamlKeywordSpec is the on-disk shape of one keyword extension entry.
type yamlKeywordSpec struct {
	Keyword     string   `yaml:"keyword"`
	Kind        string   `yaml:"kind"`
	TupleSize   int      `yaml:"tuple_size"`
	Terminators []string `yaml:"terminators"`
}

type yamlKeywordFile struct {
	Keywords []yamlKeywordSpec `yaml:"keywords"`
}

// LoadSpecs extends the table from a YAML document of the form:
//
//	keywords:
//	  - keyword: "Ice Thickness="
//	    kind: value
//	    terminators: ["#Sta/Elev="]
//
// Used by deployments that carry vendor-specific keywords the builtin
// registry does not know about.
func (t *KeywordTable) LoadSpecs(data []byte) error {
	var file yamlKeywordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.Wrap(err, ErrCodeInvalidKeywordSpec, "failed to parse keyword specs")
	}

	for _, entry := range file.Keywords {
		var kind RecordKind
		switch strings.ToLower(strings.TrimSpace(entry.Kind)) {
		case "pair":
			kind = KindPair
		case "value", "":
			kind = KindValue
		default:
			return errors.New(ErrCodeInvalidKeywordSpec,
				fmt.Sprintf("keyword %q has unknown kind %q", entry.Keyword, entry.Kind))
		}

		spec := KeywordSpec{
			Kind:        kind,
			TupleSize:   entry.TupleSize,
			Terminators: entry.Terminators,
		}
		if err := t.Register(entry.Keyword, spec); err != nil {
			return err
		}
	}
	return nil
}

// matchesKeyword reports whether a line opens a record for keyword. The
// format is positional at field level but keyword lines are identified by
// prefix: everything after the keyword belongs to the count and inline
// values.
func matchesKeyword(line, keyword string) bool {
	return strings.HasPrefix(line, keyword)
}
