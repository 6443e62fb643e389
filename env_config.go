// env_config.go: Environment variable configuration loading
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package riverbed provides environment-based configuration for container
// and batch-job deployments, where flags and config files are awkward.

package riverbed

import (
	"os"
	"strconv"
	"time"

	"github.com/agilira/go-errors"
)

// Environment variable names understood by LoadConfigFromEnv.
const (
	EnvColumnWidth        = "RIVERBED_COLUMN_WIDTH"
	EnvValuesPerLine      = "RIVERBED_VALUES_PER_LINE"
	EnvPrecision          = "RIVERBED_PRECISION"
	EnvPointLimit         = "RIVERBED_POINT_LIMIT"
	EnvMinElevation       = "RIVERBED_MIN_ELEVATION"
	EnvMaxElevation       = "RIVERBED_MAX_ELEVATION"
	EnvStrictDecode       = "RIVERBED_STRICT_DECODE"
	EnvElevationFatal     = "RIVERBED_ELEVATION_FATAL"
	EnvAuditEnabled       = "RIVERBED_AUDIT_ENABLED"
	EnvAuditOutputFile    = "RIVERBED_AUDIT_OUTPUT_FILE"
	EnvAuditMinLevel      = "RIVERBED_AUDIT_MIN_LEVEL"
	EnvAuditBufferSize    = "RIVERBED_AUDIT_BUFFER_SIZE"
	EnvAuditFlushInterval = "RIVERBED_AUDIT_FLUSH_INTERVAL"
)

// LoadConfigFromEnv builds a Config from RIVERBED_* environment variables
// layered over the defaults. Unset variables keep their defaults; a set
// but malformed variable is a hard error, not a silent fallback.
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{}.WithDefaults()

	intVars := []struct {
		name   string
		target *int
	}{
		{EnvColumnWidth, &cfg.ColumnWidth},
		{EnvValuesPerLine, &cfg.ValuesPerLine},
		{EnvPrecision, &cfg.Precision},
		{EnvPointLimit, &cfg.PointLimit},
		{EnvAuditBufferSize, &cfg.Audit.BufferSize},
	}
	for _, v := range intVars {
		if raw, ok := os.LookupEnv(v.name); ok {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return cfg, errors.New(ErrCodeInvalidConfig, v.name+" is not an integer: "+raw)
			}
			*v.target = n
		}
	}

	floatVars := []struct {
		name   string
		target *float64
	}{
		{EnvMinElevation, &cfg.MinElevation},
		{EnvMaxElevation, &cfg.MaxElevation},
	}
	for _, v := range floatVars {
		if raw, ok := os.LookupEnv(v.name); ok {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return cfg, errors.New(ErrCodeInvalidConfig, v.name+" is not a number: "+raw)
			}
			*v.target = f
		}
	}

	boolVars := []struct {
		name   string
		target *bool
	}{
		{EnvStrictDecode, &cfg.StrictDecode},
		{EnvElevationFatal, &cfg.ElevationFatal},
		{EnvAuditEnabled, &cfg.Audit.Enabled},
	}
	for _, v := range boolVars {
		if raw, ok := os.LookupEnv(v.name); ok {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return cfg, errors.New(ErrCodeInvalidConfig, v.name+" is not a boolean: "+raw)
			}
			*v.target = b
		}
	}

	if raw, ok := os.LookupEnv(EnvAuditOutputFile); ok {
		cfg.Audit.OutputFile = raw
	}
	if raw, ok := os.LookupEnv(EnvAuditMinLevel); ok {
		cfg.Audit.MinLevel = ParseAuditLevel(raw)
	}
	if raw, ok := os.LookupEnv(EnvAuditFlushInterval); ok {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, errors.New(ErrCodeInvalidConfig, EnvAuditFlushInterval+" is not a duration: "+raw)
		}
		cfg.Audit.FlushInterval = d
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
