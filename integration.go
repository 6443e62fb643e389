// integration.go: Unified configuration layer over FlashFlags
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

// Package riverbed combines configuration sources with a fixed precedence:
// defaults, then environment variables, then command-line flags.

package riverbed

import (
	"time"

	flashflags "github.com/agilira/flash-flags"
)

// ConfigManager binds riverbed settings to FlashFlags so batch tools get
// consistent flags, env overrides and defaults from one declaration.
type ConfigManager struct {
	flags   *flashflags.FlagSet
	appName string
}

// NewConfigManager creates a manager with the standard riverbed flag set
// registered.
func NewConfigManager(appName string) *ConfigManager {
	cm := &ConfigManager{
		flags:   flashflags.New(appName),
		appName: appName,
	}

	cm.flags.Int("column-width", DefaultColumnWidth, "Numeric field width in characters")
	cm.flags.Int("values-per-line", DefaultValuesPerLine, "Fields per output line")
	cm.flags.Int("precision", DefaultPrecision, "Decimal places for encoded values")
	cm.flags.Int("point-limit", DefaultPointLimit, "Maximum points per cross section")
	cm.flags.Float64("min-elevation", DefaultMinElevation, "Lower bound of the plausible elevation range")
	cm.flags.Float64("max-elevation", DefaultMaxElevation, "Upper bound of the plausible elevation range")
	cm.flags.Bool("strict-decode", false, "Fail on non-numeric chunks instead of skipping them")
	cm.flags.Bool("elevation-fatal", false, "Escalate elevation range warnings to errors")
	cm.flags.Bool("audit", false, "Enable the audit trail")
	cm.flags.String("audit-output", "", "Audit output file (.jsonl for JSON lines, else SQLite)")
	cm.flags.Duration("audit-flush-interval", 3*time.Second, "Audit buffer flush interval")

	return cm
}

// SetDescription sets the application description for help text.
func (cm *ConfigManager) SetDescription(description string) *ConfigManager {
	cm.flags.SetDescription(description)
	return cm
}

// SetVersion sets the application version for help text.
func (cm *ConfigManager) SetVersion(version string) *ConfigManager {
	cm.flags.SetVersion(version)
	return cm
}

// Parse loads environment overrides and then parses command-line
// arguments, flags winning over environment over defaults.
func (cm *ConfigManager) Parse(args []string) error {
	cm.flags.SetEnvPrefix("RIVERBED")
	return cm.flags.Parse(args)
}

// Config materializes the parsed values into a validated Config.
func (cm *ConfigManager) Config() (Config, error) {
	cfg := Config{
		ColumnWidth:    cm.flags.GetInt("column-width"),
		ValuesPerLine:  cm.flags.GetInt("values-per-line"),
		Precision:      cm.flags.GetInt("precision"),
		PointLimit:     cm.flags.GetInt("point-limit"),
		MinElevation:   cm.flags.GetFloat64("min-elevation"),
		MaxElevation:   cm.flags.GetFloat64("max-elevation"),
		StrictDecode:   cm.flags.GetBool("strict-decode"),
		ElevationFatal: cm.flags.GetBool("elevation-fatal"),
		Audit: AuditConfig{
			Enabled:       cm.flags.GetBool("audit"),
			OutputFile:    cm.flags.GetString("audit-output"),
			FlushInterval: cm.flags.GetDuration("audit-flush-interval"),
		},
	}.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// PrintHelp prints the flag help text.
func (cm *ConfigManager) PrintHelp() {
	cm.flags.PrintHelp()
}
