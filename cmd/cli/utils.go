// Utility functions for the riverbed CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
	"github.com/agilira/riverbed"
)

// loadPointsFile parses a plain-text points file: one point per line,
// station and elevation separated by whitespace or a comma. Blank lines
// and lines starting with '#' are ignored.
func loadPointsFile(path string) ([]riverbed.Point, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided intentionally
	if err != nil {
		return nil, errors.Wrap(err, riverbed.ErrCodeIOError, "failed to read points file")
	}

	var points []riverbed.Point
	for n, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, ",", " "))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, errors.New(riverbed.ErrCodeMalformedValue,
				fmt.Sprintf("points file line %d needs station and elevation", n+1))
		}

		station, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errors.New(riverbed.ErrCodeMalformedValue,
				fmt.Sprintf("points file line %d: bad station %q", n+1, fields[0]))
		}
		elevation, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, errors.New(riverbed.ErrCodeMalformedValue,
				fmt.Sprintf("points file line %d: bad elevation %q", n+1, fields[1]))
		}

		points = append(points, riverbed.Point{Station: station, Elevation: elevation})
	}

	return points, nil
}

// recerrString formats a batch extraction failure for terminal output.
func recerrString(e riverbed.RecordError) string {
	return e.Error()
}
