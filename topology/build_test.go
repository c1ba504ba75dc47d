// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package topology_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/crsim/distribution"
	"storj.io/crsim/topology"
)

func TestBuildUniformShapesTree(t *testing.T) {
	tr, disks := topology.BuildUniform(zaptest.NewLogger(t), topology.UniformParams{
		Datacenters:     2,
		RacksPerDC:      3,
		MachinesPerRack: 2,
		DisksPerMachine: 4,
		MachineFailure:  distribution.Fixed(10),
		MachineRecovery: distribution.Fixed(1),
		DiskFailure:     distribution.Fixed(100),
		DiskRecovery:    distribution.Fixed(2),
	})

	require.Len(t, disks, 2*3*2*4)
	require.Len(t, tr.Disks(), len(disks))
	require.Len(t, tr.Machines(), 2*3*2)
	require.Len(t, tr.Racks(), 2*3)

	for _, d := range disks {
		node := tr.Node(d)
		require.NotNil(t, node.Failure)
		require.NotNil(t, node.Recovery)
		rack := tr.Ancestor(d, topology.Rack)
		require.NotEqual(t, topology.None, rack)
	}
}
