// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package runstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storj.io/crsim/runstore"
	"storj.io/crsim/simulation"
)

func TestInsertAndListByScenario(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := runstore.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	id, err := store.Insert(ctx, "baseline", started, simulation.AggregateResult{Trials: 100, PDL: 0.001, PUA: 0.002, NOMDL: 1.5, TRC: 42})
	require.NoError(t, err)
	require.NotZero(t, id)

	_, err = store.Insert(ctx, "other-scenario", started, simulation.AggregateResult{Trials: 50})
	require.NoError(t, err)

	records, err := store.ListByScenario(ctx, "baseline")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "baseline", records[0].Scenario)
	require.Equal(t, 100, records[0].Trials)
	require.InDelta(t, 0.001, records[0].PDL, 1e-9)
}
