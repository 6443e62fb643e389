// index.go: Keyword occurrence index over a geometry line buffer
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import "sort"

// LineIndex maps each registered keyword to the ordered line numbers where
// it occurs. One linear scan at build time replaces the O(n^2) rescans a
// naive per-record search would cost when processing many records of the
// same keyword across a large file.
//
// The index is a read-time accelerator only: it indexes the buffer it was
// built from and is discarded with it. The patcher never consults a stale
// index.
type LineIndex struct {
	byKeyword map[string][]int
}

// BuildLineIndex scans lines once and records every occurrence of every
// keyword registered in the table.
func BuildLineIndex(lines []string, table *KeywordTable) *LineIndex {
	keywords := table.Keywords()
	ix := &LineIndex{byKeyword: make(map[string][]int, len(keywords))}

	for n, line := range lines {
		for _, kw := range keywords {
			if matchesKeyword(line, kw) {
				ix.byKeyword[kw] = append(ix.byKeyword[kw], n)
			}
		}
	}
	return ix
}

// Occurrences returns the ordered line numbers where keyword occurs.
func (ix *LineIndex) Occurrences(keyword string) []int {
	occ := ix.byKeyword[keyword]
	out := make([]int, len(occ))
	copy(out, occ)
	return out
}

// Count returns how many times keyword occurs.
func (ix *LineIndex) Count(keyword string) int {
	return len(ix.byKeyword[keyword])
}

// FirstAt returns the first occurrence of keyword at or after line from.
func (ix *LineIndex) FirstAt(keyword string, from int) (int, bool) {
	occ := ix.byKeyword[keyword]
	i := sort.SearchInts(occ, from)
	if i >= len(occ) {
		return 0, false
	}
	return occ[i], true
}
