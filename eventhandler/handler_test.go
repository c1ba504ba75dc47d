// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package eventhandler_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/crsim/drs"
	"storj.io/crsim/eventhandler"
	"storj.io/crsim/eventqueue"
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// buildCluster returns a tree with numRacks racks, one machine per rack,
// one disk per machine, and returns the disk IDs in rack order.
func buildCluster(t *testing.T, numRacks int) (*topology.Tree, []topology.ID, []topology.ID) {
	tr := topology.NewTree(zaptest.NewLogger(t))
	dc := tr.AddNode(tr.RootID, topology.Datacenter)
	var machines, disks []topology.ID
	for i := 0; i < numRacks; i++ {
		rack := tr.AddNode(dc, topology.Rack)
		machine := tr.AddNode(rack, topology.Machine)
		disk := tr.AddNode(machine, topology.Disk)
		machines = append(machines, machine)
		disks = append(disks, disk)
	}
	return tr, machines, disks
}

func TestMachinePermanentFailureBecomesLost(t *testing.T) {
	// Boundary scenario 2 replayed through the handler: RS(3,1)
	// replication, all three machines permanently fail in sequence.
	scheme, err := drs.NewRS(3, 1)
	require.NoError(t, err)

	tr, machines, disks := buildCluster(t, 3)
	queue := eventqueue.New()
	cfg := eventhandler.Config{QueueDisable: true}
	h := eventhandler.New(zaptest.NewLogger(t), scheme, tr, rng.New(1), queue, cfg, [][]topology.ID{disks})

	for i, machine := range machines {
		require.NoError(t, h.Handle(eventqueue.Event{
			Time: float64(i), Kind: eventqueue.Failure, Unit: int(machine), Info: eventqueue.Permanent,
		}))
	}

	result := h.Result()
	require.Equal(t, 1, result.UndurableCount)
	require.Len(t, result.Causes, 1)
	require.Equal(t, 0, result.Causes[0].StripeIndex)
	require.True(t, h.Stripes()[0].Lost)
}

func TestMachineTransientRoundTrip(t *testing.T) {
	scheme, err := drs.NewRS(3, 1)
	require.NoError(t, err)

	tr, machines, disks := buildCluster(t, 3)
	queue := eventqueue.New()
	cfg := eventhandler.Config{QueueDisable: true}
	h := eventhandler.New(zaptest.NewLogger(t), scheme, tr, rng.New(1), queue, cfg, [][]topology.ID{disks})

	require.NoError(t, h.Handle(eventqueue.Event{
		Time: 0, Kind: eventqueue.Failure, Unit: int(machines[0]), Info: eventqueue.ShortTransient, NextRecoveryTime: 5,
	}))
	require.Equal(t, drs.Crashed, h.Stripes()[0].State[0])

	require.NoError(t, h.Handle(eventqueue.Event{
		Time: 5, Kind: eventqueue.Recovered, Unit: int(machines[0]), Info: eventqueue.ShortTransient,
	}))
	require.Equal(t, drs.Normal, h.Stripes()[0].State[0])

	result := h.Result()
	require.Equal(t, 0, result.UndurableCount)
	require.Equal(t, 0, result.UnavailableCount)
}

func TestDiskRecoveryRebuildsOnlyAcrossThreshold(t *testing.T) {
	scheme, err := drs.NewRS(5, 3)
	require.NoError(t, err)

	t.Run("crosses threshold: rebuilt eagerly on recovery", func(t *testing.T) {
		tr, _, disks := buildCluster(t, 5)
		queue := eventqueue.New()
		cfg := eventhandler.Config{QueueDisable: true, RecoveryThreshold: 4}
		h := eventhandler.New(zaptest.NewLogger(t), scheme, tr, rng.New(1), queue, cfg, [][]topology.ID{disks})

		require.NoError(t, h.Handle(eventqueue.Event{Time: 0, Kind: eventqueue.Failure, Unit: int(disks[0])}))
		require.Equal(t, drs.Corrupted, h.Stripes()[0].State[0])

		require.NoError(t, h.Handle(eventqueue.Event{Time: 1, Kind: eventqueue.Recovered, Unit: int(disks[0])}))
		require.Equal(t, drs.Normal, h.Stripes()[0].State[0])
		require.Greater(t, h.Result().TRC, 0.0)
	})

	t.Run("below threshold: left corrupted until later crossing", func(t *testing.T) {
		tr, _, disks := buildCluster(t, 5)
		queue := eventqueue.New()
		cfg := eventhandler.Config{QueueDisable: true, RecoveryThreshold: 0}
		h := eventhandler.New(zaptest.NewLogger(t), scheme, tr, rng.New(1), queue, cfg, [][]topology.ID{disks})

		require.NoError(t, h.Handle(eventqueue.Event{Time: 0, Kind: eventqueue.Failure, Unit: int(disks[0])}))
		require.NoError(t, h.Handle(eventqueue.Event{Time: 1, Kind: eventqueue.Recovered, Unit: int(disks[0])}))
		require.Equal(t, drs.Corrupted, h.Stripes()[0].State[0])
		require.Equal(t, 0.0, h.Result().TRC)
	})
}

func TestScrubClearsLatentErrorAndSkipsDuplicateDefect(t *testing.T) {
	scheme, err := drs.NewRS(5, 3)
	require.NoError(t, err)

	tr, _, disks := buildCluster(t, 5)
	queue := eventqueue.New()
	cfg := eventhandler.Config{QueueDisable: true}
	h := eventhandler.New(zaptest.NewLogger(t), scheme, tr, rng.New(1), queue, cfg, [][]topology.ID{disks})

	require.NoError(t, h.Handle(eventqueue.Event{Time: 0, Kind: eventqueue.LatentDefect, Unit: int(disks[0])}))
	require.Equal(t, drs.LatentError, h.Stripes()[0].State[0])
	require.True(t, tr.Node(disks[0]).HasLatentError(0))

	require.NoError(t, h.Handle(eventqueue.Event{Time: 1, Kind: eventqueue.LatentDefect, Unit: int(disks[0])}))
	require.Equal(t, 1, h.Result().LatentErrorsSkipped)

	require.NoError(t, h.Handle(eventqueue.Event{Time: 2, Kind: eventqueue.LatentRecovered, Unit: int(disks[0])}))
	require.Equal(t, drs.Normal, h.Stripes()[0].State[0])
	require.False(t, tr.Node(disks[0]).HasLatentError(0))

	// A second scrub with no outstanding LatentError entries is a no-op.
	require.NoError(t, h.Handle(eventqueue.Event{Time: 3, Kind: eventqueue.LatentRecovered, Unit: int(disks[0])}))
	require.Equal(t, drs.Normal, h.Stripes()[0].State[0])
	require.Equal(t, 1, h.Result().LatentErrorsSkipped)
}

func TestRAFIScenarioSixSchedulesOnSecondConcurrentFailure(t *testing.T) {
	// Boundary scenario 6: detect_intervals = [1.0, 0.5]. One failure at
	// t=0 recovering naturally at t=0.7 schedules nothing (f=1,
	// threshold=1.0, remaining=0.7 < 1.0). A second, concurrent failure
	// at t=0.1 recovering at t=0.9 pushes f to 2 (threshold=0.5); both
	// outstanding deadlines clear that bar, so RAFIRecovered is scheduled
	// for t=0.1+0.5=0.6.
	scheme, err := drs.NewRS(5, 3)
	require.NoError(t, err)

	tr, machines, disks := buildCluster(t, 5)
	queue := eventqueue.New()
	cfg := eventhandler.Config{QueueDisable: true, DetectIntervals: []float64{1.0, 0.5}}
	h := eventhandler.New(zaptest.NewLogger(t), scheme, tr, rng.New(1), queue, cfg, [][]topology.ID{disks})

	require.NoError(t, h.Handle(eventqueue.Event{
		Time: 0, Kind: eventqueue.Failure, Unit: int(machines[0]), Info: eventqueue.ShortTransient, NextRecoveryTime: 0.7,
	}))
	require.Equal(t, 0, queue.Len(), "single failure must not yet schedule a RAFIRecovered")

	require.NoError(t, h.Handle(eventqueue.Event{
		Time: 0.1, Kind: eventqueue.Failure, Unit: int(machines[1]), Info: eventqueue.ShortTransient, NextRecoveryTime: 0.9,
	}))
	require.Equal(t, 1, queue.Len())

	ev, ok := queue.Peek()
	require.True(t, ok)
	require.Equal(t, eventqueue.RAFIRecovered, ev.Kind)
	require.InDelta(t, 0.6, ev.Time, 1e-9)
	require.Equal(t, 0, ev.StripeIndex)
}
