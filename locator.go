// locator.go: Record boundary location via keyword terminator rules
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"fmt"

	"github.com/agilira/go-errors"
)

// locatorState tracks one Locate invocation through its lifecycle.
type locatorState int

const (
	stateSearching locatorState = iota
	stateFoundStart
	stateInSection
	stateClosed
)

// SectionLocator finds the line span of one logical record. Each Locate
// call runs a small state machine: SEARCHING for the target keyword from
// the caller's start offset, then IN_SECTION scanning for a terminator,
// then CLOSED with a half-open 0-indexed span.
type SectionLocator struct {
	table *KeywordTable
}

// NewSectionLocator returns a locator resolving terminators against table.
func NewSectionLocator(table *KeywordTable) *SectionLocator {
	return &SectionLocator{table: table}
}

// Locate finds the span of the first record for keyword starting at or
// after line from.
//
// Termination rules, in order:
//   - a line matching any registered terminator closes the section at that
//     line (exclusive); when several terminators could match, first match
//     wins - terminator priority is not otherwise ordered
//   - with no registered terminators, the next occurrence of the same
//     keyword closes the section
//   - end-of-file always closes the section, with TruncatedAtEOF set when
//     no terminator was ever seen
//
// Fails with ErrCodeKeywordNotFound if the keyword is absent from the scan
// range.
func (l *SectionLocator) Locate(lines []string, keyword string, from int) (Section, error) {
	return l.LocateIndexed(lines, nil, keyword, from)
}

// LocateIndexed is Locate with the search phase resolved through a
// prebuilt LineIndex, for batch callers processing many records of the
// same keyword across a large file. A keyword the index does not know
// (unregistered, or genuinely absent) falls back to the linear scan, so
// the result is always identical to Locate's.
func (l *SectionLocator) LocateIndexed(lines []string, ix *LineIndex, keyword string, from int) (Section, error) {
	if from < 0 {
		from = 0
	}

	state := stateSearching
	section := Section{Keyword: keyword, Kind: l.table.Classify(keyword)}

	// SEARCHING: resolve the keyword line via the index when one is
	// supplied, otherwise scan forward.
	if ix != nil {
		if n, ok := ix.FirstAt(keyword, from); ok {
			section.Start = n
			state = stateFoundStart
		}
	}
	if state == stateSearching {
		for n := from; n < len(lines); n++ {
			if matchesKeyword(lines[n], keyword) {
				section.Start = n
				state = stateFoundStart
				break
			}
		}
	}
	if state == stateSearching {
		return Section{}, errors.New(ErrCodeKeywordNotFound,
			fmt.Sprintf("keyword %q not found at or after line %d", keyword, from))
	}

	terminators := l.table.Terminators(keyword)

	// IN_SECTION: scan forward for a closing line.
	state = stateInSection
	for n := section.Start + 1; n < len(lines); n++ {
		if closesSection(lines[n], keyword, terminators) {
			section.End = n
			state = stateClosed
			break
		}
	}

	if state != stateClosed {
		// End-of-file fallback. The span is still usable; the flag lets
		// callers log the anomaly at warning level.
		section.End = len(lines)
		section.TruncatedAtEOF = true
	}

	return section, nil
}

// LocateAll returns the spans of every record for keyword, in file order.
// Batch counterpart of Locate for whole-file scans.
func (l *SectionLocator) LocateAll(lines []string, keyword string) []Section {
	var sections []Section
	from := 0
	for from < len(lines) {
		section, err := l.Locate(lines, keyword, from)
		if err != nil {
			break
		}
		sections = append(sections, section)
		if section.End <= section.Start {
			break
		}
		from = maxInt(section.End, section.Start+1)
	}
	return sections
}

// closesSection reports whether line terminates a record opened by keyword.
func closesSection(line, keyword string, terminators []string) bool {
	if len(terminators) == 0 {
		// Implicit rule: the next record of the same keyword closes this one.
		return matchesKeyword(line, keyword)
	}
	for _, term := range terminators {
		if matchesKeyword(line, term) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
