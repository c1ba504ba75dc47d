// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"storj.io/crsim/crsimconfig"
	"storj.io/crsim/resultio"
	"storj.io/crsim/runstore"
	"storj.io/crsim/simulation"
)

// recordResult publishes a fresh CSV file at the configured path holding
// the header and result as one row, and appends one record to the
// sqlite run-history store.
func recordResult(ctx context.Context, cfg crsimconfig.Config, scenarioPath string, result simulation.AggregateResult) error {
	csv, err := resultio.NewCSVWriter(cfg.Output.CSVPath)
	if err != nil {
		return err
	}
	if err := resultio.WriteAggregate(csv, 0, result); err != nil {
		_ = csv.Close()
		return err
	}
	if err := csv.Close(); err != nil {
		return err
	}

	store, err := runstore.Open(ctx, cfg.Output.StorePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	scenario := strings.TrimSuffix(filepath.Base(scenarioPath), filepath.Ext(scenarioPath))
	_, err = store.Insert(ctx, scenario, time.Now(), result)
	return err
}
