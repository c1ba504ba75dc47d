// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package perturbation_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/crsim/distribution"
	"storj.io/crsim/drs"
	"storj.io/crsim/eventhandler"
	"storj.io/crsim/eventqueue"
	"storj.io/crsim/perturbation"
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

func buildCluster(t *testing.T, numRacks, machinesPerRack, disksPerMachine int) (*topology.Tree, topology.ID) {
	tr := topology.NewTree(zaptest.NewLogger(t))
	dc := tr.AddNode(tr.RootID, topology.Datacenter)
	for i := 0; i < numRacks; i++ {
		rack := tr.AddNode(dc, topology.Rack)
		for j := 0; j < machinesPerRack; j++ {
			machine := tr.AddNode(rack, topology.Machine)
			for k := 0; k < disksPerMachine; k++ {
				tr.AddNode(machine, topology.Disk)
			}
		}
	}
	return tr, dc
}

func TestApplyScalingGrowsTreeAndWiresSamplers(t *testing.T) {
	tr, dc := buildCluster(t, 2, 1, 1)
	require.Len(t, tr.Racks(), 2)

	plan := perturbation.ScalingPlan{
		AddRacks: 1, AddMachinesPerRack: 2, AddDisksPerMachine: 2,
		MachineFailure:  func() distribution.Sampler { return distribution.Fixed(10) },
		MachineRecovery: func() distribution.Sampler { return distribution.Fixed(1) },
	}
	result := perturbation.ApplyScaling(tr, dc, plan)

	require.Len(t, result.Disks, 4)
	require.Len(t, tr.Racks(), 3)
	require.Len(t, tr.Machines(), 4) // 2 original + 2 new
	require.Len(t, tr.Disks(), 6)    // 2 original + 4 new
	for _, disk := range result.Disks {
		machine := tr.Node(tr.Node(disk).Parent)
		require.NotNil(t, machine.Failure)
		require.NotNil(t, machine.Recovery)
	}
}

func TestApplyScalingLoadBalanceMovesChunks(t *testing.T) {
	tr, dc := buildCluster(t, 2, 1, 1)
	for _, id := range tr.Disks() {
		tr.Node(id).Reserve()
		tr.Node(id).Reserve()
	} // 2 disks * 2 chunks = 4 used

	plan := perturbation.ScalingPlan{AddRacks: 2, AddMachinesPerRack: 1, AddDisksPerMachine: 1, LoadBalance: true}
	result := perturbation.ApplyScaling(tr, dc, plan)

	require.Len(t, result.Disks, 2)
	require.Greater(t, result.MigrationCost, 0.0)
	for _, id := range result.Disks {
		require.Greater(t, tr.Node(id).ChunksUsed, 0)
	}
}

func TestApplyUpgradeInjectsRotatingIntervals(t *testing.T) {
	tr, _ := buildCluster(t, 2, 2, 1)
	plan := perturbation.UpgradePlan{Concurrence: 1, Downtime: 2, Interval: 10}

	injected := perturbation.ApplyUpgrade(tr, 25, plan)
	require.Equal(t, 3, injected) // rotations at t=0,10,20

	var total int
	for _, id := range tr.Machines() {
		total += len(tr.Node(id).Injected)
	}
	require.Equal(t, 3, total)
}

func TestApplyCorrelatedFailureSelectsDistinctComponents(t *testing.T) {
	tr, _ := buildCluster(t, 5, 1, 1)
	r := rng.New(3)

	affected := perturbation.ApplyCorrelatedFailure(tr, r, perturbation.CorrelatedFailure{
		Occurrence: 1, Scope: topology.Rack, Count: 3, Duration: 2,
	})
	require.Len(t, affected, 3)

	seen := make(map[topology.ID]bool)
	for _, id := range affected {
		require.False(t, seen[id])
		seen[id] = true
		require.Len(t, tr.Node(id).Injected, 1)
		require.False(t, tr.Node(id).Injected[0].Lost)
	}
}

func TestApplyCorrelatedFailureLostSubsetIsDestructive(t *testing.T) {
	tr, _ := buildCluster(t, 5, 1, 1)
	r := rng.New(3)

	affected := perturbation.ApplyCorrelatedFailure(tr, r, perturbation.CorrelatedFailure{
		Occurrence: 1, Scope: topology.Rack, Count: 3, Duration: 2,
		LostCount: 1, LostFromUnavailableSet: true,
	})
	require.Len(t, affected, 3)

	lostCount := 0
	for _, id := range affected {
		if tr.Node(id).Injected[0].Lost {
			lostCount++
		}
	}
	require.Equal(t, 1, lostCount)
}

func TestBlockFailureFlagsChunksAndAccumulatesLoss(t *testing.T) {
	scheme, err := drs.NewRS(3, 1)
	require.NoError(t, err)

	tr, _, disks := buildStripeCluster(t)
	queue := eventqueue.New()
	h := eventhandler.New(zaptest.NewLogger(t), scheme, tr, rng.New(1), queue, eventhandler.Config{QueueDisable: true}, [][]topology.ID{disks})

	// Probability 1 guarantees every chunk is flagged, so the stripe
	// (RS(3,1), durable count 0) becomes Lost immediately.
	bf := perturbation.BlockFailure{Probability: 1}
	flagged := bf.Apply(h, rng.New(2))

	require.Equal(t, 3, flagged)
	require.True(t, h.Stripes()[0].Lost)
	require.Equal(t, 1, h.Result().UndurableCount)
}

func buildStripeCluster(t *testing.T) (*topology.Tree, []topology.ID, []topology.ID) {
	tr := topology.NewTree(zaptest.NewLogger(t))
	dc := tr.AddNode(tr.RootID, topology.Datacenter)
	var machines, disks []topology.ID
	for i := 0; i < 3; i++ {
		rack := tr.AddNode(dc, topology.Rack)
		machine := tr.AddNode(rack, topology.Machine)
		disk := tr.AddNode(machine, topology.Disk)
		machines = append(machines, machine)
		disks = append(disks, disk)
	}
	return tr, machines, disks
}
