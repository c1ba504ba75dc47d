// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storj.io/crsim/crsimconfig"
	"storj.io/crsim/runstore"
)

// ReportCommand prints every recorded run of one scenario from the
// sqlite run-history store, most recent first, so a user can compare
// successive tuning attempts without re-running them.
func ReportCommand(log *zap.Logger) *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "report <scenario-name>",
		Short: "list recorded runs for a scenario from the run-history store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if storePath == "" {
				storePath = crsimconfig.Default().Output.StorePath
			}
			store, err := runstore.Open(cmd.Context(), storePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListByScenario(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no recorded runs for %q\n", args[0])
				return nil
			}
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  trials=%d pdl=%.6g pua=%.6g nomdl=%.6g trc=%.6g anomalous=%d\n",
					rec.StartedAt.Format("2006-01-02T15:04:05"), rec.Trials, rec.PDL, rec.PUA, rec.NOMDL, rec.TRC, rec.AnomalousAvailable)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "path to the sqlite run-history database (default: crsim-runs.db)")
	return cmd
}
