// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package crsimconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/crsim/crsimconfig"
)

func TestDefaultValidates(t *testing.T) {
	cfg := crsimconfig.Default()
	require.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schema_version: "1.0.0"
scheme:
  spec: "LRC_10_6_2"
trial:
  count: 50
  horizon_years: 2
`), 0644))

	cfg, err := crsimconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, "LRC_10_6_2", cfg.Scheme.Spec)
	require.Equal(t, 50, cfg.Trial.Count)
	require.Equal(t, 2.0, cfg.Trial.HorizonYears)
	// fields not present in the scenario file keep their default.
	require.Equal(t, 1, cfg.Topology.Datacenters)
}

func TestValidateRejectsUnknownScheme(t *testing.T) {
	cfg := crsimconfig.Default()
	cfg.Scheme.Spec = "NOPE_1_2"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsNewerMajorSchema(t *testing.T) {
	cfg := crsimconfig.Default()
	cfg.SchemaVersion = "2.0.0"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadPlacementEngine(t *testing.T) {
	cfg := crsimconfig.Default()
	cfg.Placement.Engine = "raid"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsIncreasingDetectIntervals(t *testing.T) {
	cfg := crsimconfig.Default()
	cfg.Recovery.DetectIntervalsHours = []float64{1, 2, 0.5}
	require.Error(t, cfg.Validate())
}
