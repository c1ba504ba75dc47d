// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package topology_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/crsim/topology"
)

func buildSmallTree(t *testing.T) (*topology.Tree, topology.ID) {
	tr := topology.NewTree(zaptest.NewLogger(t))
	dc := tr.AddNode(tr.RootID, topology.Datacenter)
	rack := tr.AddNode(dc, topology.Rack)
	machine := tr.AddNode(rack, topology.Machine)
	disk := tr.AddNode(machine, topology.Disk)
	return tr, disk
}

func TestTreeAncestor(t *testing.T) {
	tr, disk := buildSmallTree(t)
	rackID := tr.Ancestor(disk, topology.Rack)
	require.NotEqual(t, topology.None, rackID)
	require.Equal(t, topology.Rack, tr.Node(rackID).Kind)

	dcID := tr.Ancestor(disk, topology.Datacenter)
	require.Equal(t, topology.Datacenter, tr.Node(dcID).Kind)

	require.Equal(t, tr.RootID, tr.Ancestor(disk, topology.Root))
}

func TestTreeFiltersByKind(t *testing.T) {
	tr, disk := buildSmallTree(t)
	require.Equal(t, []topology.ID{disk}, tr.Disks())
	require.Len(t, tr.Machines(), 1)
	require.Len(t, tr.Racks(), 1)
}

func TestNodeCapacityTracking(t *testing.T) {
	tr, disk := buildSmallTree(t)
	n := tr.Node(disk)
	n.MaxChunksPerDisk = 2
	require.True(t, n.HasCapacity())
	n.Reserve()
	require.True(t, n.HasCapacity())
	n.Reserve()
	require.False(t, n.HasCapacity())
	n.Release()
	require.True(t, n.HasCapacity())
}

func TestNodeLatentErrorBookkeeping(t *testing.T) {
	tr, disk := buildSmallTree(t)
	n := tr.Node(disk)
	require.False(t, n.HasLatentError(7))
	n.MarkLatentError(7)
	require.True(t, n.HasLatentError(7))
	n.ClearLatentError(7)
	require.False(t, n.HasLatentError(7))
}
