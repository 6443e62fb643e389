// integration_test.go: Tests for the FlashFlags configuration layer
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package riverbed

import (
	"testing"
	"time"
)

func TestConfigManagerDefaults(t *testing.T) {
	cm := NewConfigManager("riverbed-test")
	if err := cm.Parse(nil); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg, err := cm.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if cfg.ColumnWidth != 8 || cfg.ValuesPerLine != 10 || cfg.Precision != 2 {
		t.Errorf("Expected layout defaults, got %+v", cfg)
	}
	if cfg.Audit.Enabled {
		t.Error("Audit should be disabled by default")
	}
}

func TestConfigManagerFlagOverrides(t *testing.T) {
	cm := NewConfigManager("riverbed-test").
		SetDescription("test run").
		SetVersion("0.0.0")

	args := []string{
		"--precision=3",
		"--point-limit=200",
		"--strict-decode=true",
		"--audit=true",
		"--audit-output=audit.jsonl",
		"--audit-flush-interval=5s",
	}
	if err := cm.Parse(args); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg, err := cm.Config()
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}

	if cfg.Precision != 3 || cfg.PointLimit != 200 || !cfg.StrictDecode {
		t.Errorf("Flag overrides not applied: %+v", cfg)
	}
	if !cfg.Audit.Enabled || cfg.Audit.OutputFile != "audit.jsonl" {
		t.Errorf("Audit flags not applied: %+v", cfg.Audit)
	}
	if cfg.Audit.FlushInterval != 5*time.Second {
		t.Errorf("Expected 5s flush interval, got %v", cfg.Audit.FlushInterval)
	}
}

func TestConfigManagerValidatesResult(t *testing.T) {
	cm := NewConfigManager("riverbed-test")
	if err := cm.Parse([]string{"--min-elevation=100", "--max-elevation=50"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if _, err := cm.Config(); err == nil {
		t.Fatal("Inverted elevation range should fail validation")
	}
}
