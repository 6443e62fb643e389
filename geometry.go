// geometry.go: Geometry file line buffer with byte-faithful round-tripping
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"os"
	"strings"

	"github.com/agilira/go-errors"
)

// GeometryFile owns the full text content of one geometry file as an
// ordered sequence of lines. It is loaded fresh per operation and never
// cached across operations: the patcher re-reads and re-locates before
// every write precisely because the file may have changed since.
//
// Newline style and the file's exact trailing terminator are recorded at
// load time so Content reproduces untouched regions byte-identically.
type GeometryFile struct {
	path    string
	lines   []string
	newline string
	// trailing is the exact newline sequence ending the file, empty when
	// the last line is unterminated. Kept verbatim rather than derived
	// from the dominant style: a CRLF file whose last line ends in a bare
	// LF must still round-trip byte-identically.
	trailing string
}

// LoadGeometryFile reads a geometry file from disk.
func LoadGeometryFile(path string) (*GeometryFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is caller-provided intentionally
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, ErrCodeIOError, "geometry file not found: "+path)
		}
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to read geometry file: "+path)
	}

	g := ParseGeometry(string(data))
	g.path = path
	return g, nil
}

// ParseGeometry builds a GeometryFile from raw content. Used directly by
// tests and by callers that already hold the bytes.
func ParseGeometry(content string) *GeometryFile {
	g := &GeometryFile{newline: "\n"}

	if content == "" {
		return g
	}

	if strings.Contains(content, "\r\n") {
		g.newline = "\r\n"
	}

	switch {
	case strings.HasSuffix(content, "\r\n"):
		g.trailing = "\r\n"
	case strings.HasSuffix(content, "\n"):
		g.trailing = "\n"
	}

	g.lines = strings.Split(strings.TrimSuffix(content, g.trailing), g.newline)
	return g
}

// Path returns the file path this buffer was loaded from, empty for
// buffers built via ParseGeometry.
func (g *GeometryFile) Path() string { return g.path }

// Lines returns the underlying line buffer. The slice is shared, not
// copied: extraction reads it, only the patcher replaces it.
func (g *GeometryFile) Lines() []string { return g.lines }

// LineCount returns the number of lines in the buffer.
func (g *GeometryFile) LineCount() int { return len(g.lines) }

// Content reassembles the file exactly as loaded: original newline style,
// original trailing terminator.
func (g *GeometryFile) Content() string {
	if len(g.lines) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, line := range g.lines {
		if i > 0 {
			sb.WriteString(g.newline)
		}
		sb.WriteString(line)
	}
	sb.WriteString(g.trailing)
	return sb.String()
}

// Splice replaces the half-open line range [start, end) with replacement
// lines. Every line outside the range is carried over untouched.
func (g *GeometryFile) Splice(start, end int, replacement []string) error {
	if start < 0 || end < start || end > len(g.lines) {
		return errors.New(ErrCodeSectionBoundary,
			"splice range is outside the file")
	}

	out := make([]string, 0, len(g.lines)-(end-start)+len(replacement))
	out = append(out, g.lines[:start]...)
	out = append(out, replacement...)
	out = append(out, g.lines[end:]...)
	g.lines = out
	return nil
}

// Section is a transient value describing one located record: computed on
// demand, never persisted, never trusted across file mutations.
type Section struct {
	Keyword string
	Kind    RecordKind
	// Half-open 0-indexed line span: Start is the keyword line, End is
	// the first line not in the record.
	Start int
	End   int
	// TruncatedAtEOF marks the degenerate case where the scan reached
	// end-of-file while still inside the section. The span is usable
	// but callers should treat it as a warning-level anomaly.
	TruncatedAtEOF bool
}

// Len returns the number of lines in the section, keyword line included.
func (s Section) Len() int { return s.End - s.Start }
