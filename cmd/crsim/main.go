// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Command crsim runs Monte-Carlo durability/availability simulations
// of rack-scale erasure-coded storage clusters against a YAML scenario
// file (spec.md §1).
package main

import (
	"fmt"
	"os"

	"github.com/alessio/shellescape"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "building logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	root := &cobra.Command{
		Use:   "crsim",
		Short: "Monte-Carlo durability/availability simulator for erasure-coded storage clusters",
	}
	root.AddCommand(RunCommand(log))
	root.AddCommand(ValidateCommand(log))
	root.AddCommand(ReportCommand(log))

	if err := root.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, "crsim: "+err.Error())
		fmt.Fprintln(os.Stderr, "rerun with:", shellescape.QuoteCommand(os.Args))
		os.Exit(1)
	}
}
