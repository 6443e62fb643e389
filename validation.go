// validation.go: Domain invariant validation for geometry records
//
// Validation runs only before a write commits, never during read: reading
// a file somebody else wrote badly must still work. Violations are
// collected across the whole record and returned together so a caller
// fixes every problem in one iteration instead of one at a time.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"fmt"
	"math"
	"strings"

	"github.com/agilira/go-errors"
)

// Violation is one validation finding, tied to the offending point index
// where one exists (-1 otherwise).
type Violation struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Index   int    `json:"index"`
}

func (v Violation) String() string {
	if v.Index >= 0 {
		return fmt.Sprintf("[%s] %s (point %d)", v.Code, v.Message, v.Index)
	}
	return fmt.Sprintf("[%s] %s", v.Code, v.Message)
}

// ValidationResult collects every finding of one validation pass.
// Violations block a write; Warnings do not, unless escalated via
// Config.ElevationFatal.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
	Warnings   []Violation `json:"warnings,omitempty"`
}

// String returns a human-readable summary of the validation results.
func (r ValidationResult) String() string {
	if r.Valid {
		if len(r.Warnings) == 0 {
			return "record is valid"
		}
		return fmt.Sprintf("record is valid with %d warning(s)", len(r.Warnings))
	}
	return fmt.Sprintf("record is invalid: %d violation(s), %d warning(s)",
		len(r.Violations), len(r.Warnings))
}

// Err folds a failed result into a single coded error carrying every
// violation message, nil when the result is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	messages := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		messages = append(messages, v.String())
	}
	return errors.New(ErrCodeValidationFailed, strings.Join(messages, "; "))
}

// Validator enforces the physical plausibility rules on records before a
// patch is accepted.
type Validator struct {
	cfg Config
}

// NewValidator returns a validator using cfg's limits.
func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg.WithDefaults()}
}

// ValidatePoints checks a station/elevation series:
//   - point count within the format's ceiling
//   - no NaN stations or elevations
//   - stations strictly non-decreasing, equal neighbors reported as
//     duplicates (so the series is strictly increasing when clean)
//   - elevations within the configured plausible range (warning-level
//     unless escalated)
func (v *Validator) ValidatePoints(points []Point) ValidationResult {
	result := ValidationResult{Valid: true}

	if len(points) > v.cfg.PointLimit {
		result.add(Violation{
			Code:    ErrCodePointLimitExceeded,
			Message: fmt.Sprintf("%d points exceed the limit of %d", len(points), v.cfg.PointLimit),
			Index:   -1,
		})
	}

	for i, p := range points {
		if math.IsNaN(p.Station) || math.IsNaN(p.Elevation) {
			result.add(Violation{
				Code:    ErrCodeIncompleteRecord,
				Message: "point has a missing value",
				Index:   i,
			})
			continue
		}

		if i > 0 && !math.IsNaN(points[i-1].Station) {
			prev := points[i-1].Station
			switch {
			case p.Station < prev:
				result.add(Violation{
					Code:    ErrCodeStationOrder,
					Message: fmt.Sprintf("station %g is left of its predecessor %g", p.Station, prev),
					Index:   i,
				})
			case p.Station == prev:
				result.add(Violation{
					Code:    ErrCodeDuplicateStation,
					Message: fmt.Sprintf("station %g repeats", p.Station),
					Index:   i,
				})
			}
		}

		if p.Elevation < v.cfg.MinElevation || p.Elevation > v.cfg.MaxElevation {
			violation := Violation{
				Code: ErrCodeElevationRange,
				Message: fmt.Sprintf("elevation %g is outside [%g, %g]",
					p.Elevation, v.cfg.MinElevation, v.cfg.MaxElevation),
				Index: i,
			}
			if v.cfg.ElevationFatal {
				result.add(violation)
			} else {
				result.Warnings = append(result.Warnings, violation)
			}
		}
	}

	return result
}

// ValidateCrossSection checks the full record: the point series plus the
// bank stations, which must satisfy left <= right and lie within the
// station range of the series.
func (v *Validator) ValidateCrossSection(xs *CrossSection) ValidationResult {
	result := v.ValidatePoints(xs.Points)

	if xs.LeftBank == 0 && xs.RightBank == 0 {
		// No bank stations recorded; nothing to check.
		return result
	}

	if xs.LeftBank > xs.RightBank {
		result.add(Violation{
			Code:    ErrCodeBankStationRange,
			Message: fmt.Sprintf("left bank %g is right of right bank %g", xs.LeftBank, xs.RightBank),
			Index:   -1,
		})
	}

	if len(xs.Points) > 0 {
		min, max := stationRange(xs.Points)
		for _, bank := range []float64{xs.LeftBank, xs.RightBank} {
			if bank < min || bank > max {
				result.add(Violation{
					Code:    ErrCodeBankStationRange,
					Message: fmt.Sprintf("bank station %g is outside the section range [%g, %g]", bank, min, max),
					Index:   -1,
				})
			}
		}
	}

	return result
}

// ValidateManning checks a roughness assignment before it is written: no
// missing values, and breakpoint stations follow the same ordering rules
// as a point series.
func (v *Validator) ValidateManning(m Manning) ValidationResult {
	result := ValidationResult{Valid: true}

	if m.Uniform {
		for i, n := range []float64{m.LOB, m.Channel, m.ROB} {
			if math.IsNaN(n) {
				result.add(Violation{
					Code:    ErrCodeIncompleteRecord,
					Message: "roughness value is missing",
					Index:   i,
				})
			}
		}
		return result
	}

	for i, brk := range m.Breaks {
		if math.IsNaN(brk.Station) || math.IsNaN(brk.N) {
			result.add(Violation{
				Code:    ErrCodeIncompleteRecord,
				Message: "breakpoint has a missing value",
				Index:   i,
			})
			continue
		}

		if i > 0 && !math.IsNaN(m.Breaks[i-1].Station) {
			prev := m.Breaks[i-1].Station
			switch {
			case brk.Station < prev:
				result.add(Violation{
					Code:    ErrCodeStationOrder,
					Message: fmt.Sprintf("breakpoint station %g is left of its predecessor %g", brk.Station, prev),
					Index:   i,
				})
			case brk.Station == prev:
				result.add(Violation{
					Code:    ErrCodeDuplicateStation,
					Message: fmt.Sprintf("breakpoint station %g repeats", brk.Station),
					Index:   i,
				})
			}
		}
	}

	return result
}

// ValidateStorageCurve checks an elevation/area/volume curve: no missing
// values, elevation strictly increasing, area and volume non-negative.
func (v *Validator) ValidateStorageCurve(curve *StorageCurve) ValidationResult {
	result := ValidationResult{Valid: true}

	for i, row := range curve.Rows {
		if math.IsNaN(row.Elevation) || math.IsNaN(row.Area) || math.IsNaN(row.Volume) {
			result.add(Violation{
				Code:    ErrCodeIncompleteRecord,
				Message: "curve row has a missing value",
				Index:   i,
			})
			continue
		}

		if i > 0 && row.Elevation <= curve.Rows[i-1].Elevation {
			result.add(Violation{
				Code:    ErrCodeStationOrder,
				Message: fmt.Sprintf("elevation %g does not increase past %g", row.Elevation, curve.Rows[i-1].Elevation),
				Index:   i,
			})
		}

		if row.Area < 0 || row.Volume < 0 {
			result.add(Violation{
				Code:    ErrCodeIncompleteRecord,
				Message: "area and volume cannot be negative",
				Index:   i,
			})
		}
	}

	return result
}

// add records a write-blocking violation.
func (r *ValidationResult) add(v Violation) {
	r.Valid = false
	r.Violations = append(r.Violations, v)
}

// stationRange returns the minimum and maximum station of a series.
func stationRange(points []Point) (min, max float64) {
	min, max = points[0].Station, points[0].Station
	for _, p := range points[1:] {
		if p.Station < min {
			min = p.Station
		}
		if p.Station > max {
			max = p.Station
		}
	}
	return min, max
}
