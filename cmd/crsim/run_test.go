// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/crsim/crsimconfig"
)

func TestRunScenarioProducesAggregate(t *testing.T) {
	log := zaptest.NewLogger(t)

	cfg := crsimconfig.Default()
	cfg.Topology.Datacenters = 1
	cfg.Topology.RacksPerDC = 4
	cfg.Topology.MachinesPerRack = 3
	cfg.Topology.DisksPerMachine = 2
	cfg.Scheme.Spec = "RS_3_2"
	cfg.Trial.Count = 3
	cfg.Trial.StripeCount = 10
	cfg.Trial.HorizonYears = 1
	require.NoError(t, cfg.Validate())

	result, err := runScenario(context.Background(), log, cfg)
	require.NoError(t, err)
	require.Equal(t, 3, result.Trials)
	require.GreaterOrEqual(t, result.PDL, 0.0)
	require.LessOrEqual(t, result.PDL, 1.0)
}
