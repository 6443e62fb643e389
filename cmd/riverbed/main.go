// riverbed CLI entry point
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/agilira/riverbed"
	"github.com/agilira/riverbed/cmd/cli"
)

func main() {
	cfg, err := riverbed.LoadConfigFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "riverbed: %v\n", err)
		os.Exit(1)
	}

	manager := cli.NewManagerWithConfig(cfg)

	if cfg.Audit.Enabled {
		auditLogger, err := riverbed.NewAuditLogger(cfg.Audit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "riverbed: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = auditLogger.Close() }()
		manager.WithAudit(auditLogger)
	}

	if err := manager.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "riverbed: %v\n", err)
		os.Exit(1)
	}
}
