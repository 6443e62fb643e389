// codec.go: Fixed-width numeric field codec
//
// This file implements the positional FORTRAN-style layout used by the
// geometry format: 8-character numeric fields packed 10 to an 80-character
// line with no separators. Position is the delimiter.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// DecodeLine splits a line into columnWidth-sized chunks and parses each
// trimmed chunk as a float. Empty or non-numeric chunks are skipped, not
// failed: survey data in the wild carries blank tail fields and the odd
// typo, and the historical tooling tolerated both. The number of skipped
// non-empty chunks is returned so callers can observe (or escalate) the
// leniency; see Config.StrictDecode.
//
// DecodeLine never fails - it returns fewer values than expected instead.
func DecodeLine(line string, columnWidth int) (values []float64, skipped int) {
	if columnWidth <= 0 {
		columnWidth = DefaultColumnWidth
	}

	for start := 0; start < len(line); start += columnWidth {
		end := start + columnWidth
		if end > len(line) {
			end = len(line)
		}

		chunk := strings.TrimSpace(line[start:end])
		if chunk == "" {
			continue
		}

		v, err := strconv.ParseFloat(chunk, 64)
		if err != nil {
			skipped++
			continue
		}
		values = append(values, v)
	}

	return values, skipped
}

// EncodeValues formats values into fixed-width lines: each value rendered
// with fixed decimal precision, right-aligned to columnWidth, valuesPerLine
// fields concatenated per line. A value whose decimal rendering overflows
// the column falls back to scientific notation at the same precision.
//
// Fails with ErrCodeEncodingOverflow, reporting the value's position, if
// even the scientific form does not fit.
func EncodeValues(values []float64, columnWidth, valuesPerLine, precision int) ([]string, error) {
	if columnWidth <= 0 {
		columnWidth = DefaultColumnWidth
	}
	if valuesPerLine <= 0 {
		valuesPerLine = DefaultValuesPerLine
	}
	if precision < 0 {
		precision = DefaultPrecision
	}

	var lines []string
	var sb strings.Builder
	sb.Grow(columnWidth * valuesPerLine)

	for i, v := range values {
		field, err := EncodeField(v, columnWidth, precision)
		if err != nil {
			return nil, errors.Wrap(err, ErrCodeEncodingOverflow,
				fmt.Sprintf("value %g at position %d does not fit in %d characters", v, i, columnWidth))
		}
		sb.WriteString(field)

		if (i+1)%valuesPerLine == 0 {
			lines = append(lines, sb.String())
			sb.Reset()
		}
	}
	if sb.Len() > 0 {
		lines = append(lines, sb.String())
	}

	return lines, nil
}

// EncodeField renders one value right-aligned into a columnWidth-character
// field, preferring fixed decimal notation and falling back to scientific
// notation when the fixed form overflows.
func EncodeField(v float64, columnWidth, precision int) (string, error) {
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if len(s) > columnWidth {
		// Scientific fallback keeps the magnitude representable at the
		// same precision, trading mantissa digits for exponent range.
		s = strconv.FormatFloat(v, 'E', precision, 64)
		if len(s) > columnWidth {
			return "", errors.New(ErrCodeEncodingOverflow,
				fmt.Sprintf("value %g exceeds column width %d even in scientific notation", v, columnWidth))
		}
	}

	if pad := columnWidth - len(s); pad > 0 {
		return strings.Repeat(" ", pad) + s, nil
	}
	return s, nil
}

// ParseCount extracts the trailing count token from a keyword line such
// as "#Sta/Elev= 40" or "#Mann= 3 ,0.035,0.025,0.035". The count is the
// first comma-separated token after the keyword.
//
// Fails with ErrCodeMalformedCount if the token is missing or non-numeric.
func ParseCount(line, keyword string) (int, error) {
	rest := strings.TrimPrefix(line, keyword)
	token := rest
	if idx := strings.IndexByte(rest, ','); idx >= 0 {
		token = rest[:idx]
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return 0, errors.New(ErrCodeMalformedCount,
			fmt.Sprintf("keyword %q carries no count token", keyword))
	}

	// Counts are written as integers but some tools emit "40.0".
	n, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, errors.New(ErrCodeMalformedCount,
			fmt.Sprintf("keyword %q count token %q is not numeric", keyword, token))
	}
	if n < 0 || n != float64(int(n)) {
		return 0, errors.New(ErrCodeMalformedCount,
			fmt.Sprintf("keyword %q count token %q is not a non-negative integer", keyword, token))
	}

	return int(n), nil
}

// ExtractCommaValues parses every comma-separated numeric token after the
// "=" of a keyword line, count included. For "#Mann= 3 ,0.035 ,0.025 ,0.035"
// it yields [3 0.035 0.025 0.035]. Non-numeric tokens are skipped the same
// way DecodeLine skips malformed chunks.
func ExtractCommaValues(line string) []float64 {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return nil
	}

	var values []float64
	for _, token := range strings.Split(line[idx+1:], ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if v, err := strconv.ParseFloat(token, 64); err == nil {
			values = append(values, v)
		}
	}
	return values
}

// FormatKeywordLine renders a keyword line with its count and optional
// inline values, matching the on-disk convention "<Keyword>= <count> ,v1 ,v2".
func FormatKeywordLine(keyword string, count int, inline []float64, precision int) string {
	var sb strings.Builder
	sb.WriteString(keyword)
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(count))
	for _, v := range inline {
		sb.WriteString(" ,")
		sb.WriteString(strconv.FormatFloat(v, 'f', precision, 64))
	}
	return sb.String()
}
