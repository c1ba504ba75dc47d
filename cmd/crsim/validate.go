// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storj.io/crsim/crsimconfig"
)

// ValidateCommand loads and validates a scenario file without running
// any trial, so a CI pipeline or a human editing a scenario can check
// it cheaply (spec.md §7 taxon 1: "Configuration errors ... detected at
// startup").
func ValidateCommand(log *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "check a scenario file for configuration errors without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := crsimconfig.Load(args[0])
			if err != nil {
				return err
			}
			green := color.New(color.FgGreen)
			green.Fprintf(cmd.OutOrStdout(), "%s: valid (scheme %s, %d trials, %d stripes)\n",
				args[0], cfg.Scheme.Spec, cfg.Trial.Count, cfg.Trial.StripeCount)
			return nil
		},
	}
}
