// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package simulation_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/crsim/distribution"
	"storj.io/crsim/drs"
	"storj.io/crsim/eventhandler"
	"storj.io/crsim/rng"
	"storj.io/crsim/simulation"
	"storj.io/crsim/topology"
)

func TestScheduleLiveAtPiecewise(t *testing.T) {
	sched := simulation.Schedule{
		{Start: 0, End: 10, Count: 100, Rate: 0},
		{Start: 10, End: 20, Count: 100, Rate: 5},
	}
	require.Equal(t, 100, sched.LiveAt(5))
	require.Equal(t, 100, sched.LiveAt(10))
	require.Equal(t, 115, sched.LiveAt(13))
}

func TestRunTrialDrainsQueueDeterministically(t *testing.T) {
	scheme, err := drs.NewRS(3, 1)
	require.NoError(t, err)

	buildTree := func() (*topology.Tree, []topology.ID) {
		tr := topology.NewTree(zaptest.NewLogger(t))
		dc := tr.AddNode(tr.RootID, topology.Datacenter)
		var disks []topology.ID
		for i := 0; i < 3; i++ {
			rack := tr.AddNode(dc, topology.Rack)
			machine := tr.AddNode(rack, topology.Machine)
			disk := tr.AddNode(machine, topology.Disk)
			tr.Node(machine).Failure = distribution.Exponential{Mean: 1000}
			tr.Node(machine).Recovery = distribution.Fixed(1)
			disks = append(disks, disk)
		}
		return tr, disks
	}

	run := func(seed int64) eventhandler.Result {
		tr, disks := buildTree()
		cfg := simulation.TrialConfig{
			Scheme:     scheme,
			Tree:       tr,
			Horizon:    100,
			Classify:   topology.DefaultClassifier(500, 0),
			Placements: [][]topology.ID{disks},
			Handler:    eventhandler.Config{QueueDisable: true},
			Seed:       seed,
		}
		result, err := simulation.RunTrial(zaptest.NewLogger(t), cfg)
		require.NoError(t, err)
		return result
	}

	a := run(42)
	b := run(42)
	require.Equal(t, a, b, "fixed seed must reproduce bit-identical results")
}

func TestAggregateAveragesAcrossTrials(t *testing.T) {
	params := simulation.Params{TotalSlices: 10, ChunkSize: 64, K: 6, TotalActiveStorage: 1024, LiveStripeSeconds: 1000}
	agg := simulation.NewAggregate(params)

	agg.Add(eventhandler.Result{UndurableCount: 1})
	agg.Add(eventhandler.Result{UndurableCount: 0})

	result := agg.Result()
	require.Equal(t, 2, result.Trials)
	require.InDelta(t, 0.05, result.PDL, 1e-9) // (1/10 + 0/10) / 2
}

func TestRNGSourceExists(t *testing.T) {
	r := rng.New(1)
	require.NotNil(t, r)
}
