// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package topology

import (
	"go.uber.org/zap"

	"storj.io/crsim/distribution"
)

// UniformParams describes a cluster of identical datacenters, racks,
// machines, and disks, each machine/disk carrying the same sampler
// pair. It is the shape `cmd/crsim` builds from a scenario file; tests
// that need irregular trees build one node at a time with AddNode
// instead.
type UniformParams struct {
	Datacenters     int
	RacksPerDC      int
	MachinesPerRack int
	DisksPerMachine int

	MachineFailure  distribution.Sampler
	MachineRecovery distribution.Sampler

	// DiskFailure/DiskRecovery model a disk's own hardware failure,
	// independent of its parent machine (spec.md §4.2: "disks
	// additionally carry a latent-error generator and a scrub
	// schedule" on top of the same failure/recovery pair every node
	// carries).
	DiskFailure  distribution.Sampler
	DiskRecovery distribution.Sampler

	DiskLatent distribution.Sampler // nil disables latent-error injection
	DiskScrub  distribution.Sampler // nil disables scrubbing

	MaxChunksPerDisk int
}

// BuildUniform constructs a Root -> Datacenter -> Rack -> Machine ->
// Disk tree per UniformParams and returns it along with the disk IDs
// in generation order, ready for a placement engine to consume.
func BuildUniform(log *zap.Logger, p UniformParams) (*Tree, []ID) {
	t := NewTree(log)
	var disks []ID
	for dc := 0; dc < p.Datacenters; dc++ {
		dcID := t.AddNode(t.RootID, Datacenter)
		for rack := 0; rack < p.RacksPerDC; rack++ {
			rackID := t.AddNode(dcID, Rack)
			for m := 0; m < p.MachinesPerRack; m++ {
				machineID := t.AddNode(rackID, Machine)
				mnode := t.Node(machineID)
				mnode.Failure = p.MachineFailure
				mnode.Recovery = p.MachineRecovery
				for d := 0; d < p.DisksPerMachine; d++ {
					diskID := t.AddNode(machineID, Disk)
					dnode := t.Node(diskID)
					dnode.Failure = p.DiskFailure
					dnode.Recovery = p.DiskRecovery
					dnode.MaxChunksPerDisk = p.MaxChunksPerDisk
					dnode.LatentGen = p.DiskLatent
					dnode.ScrubGen = p.DiskScrub
					disks = append(disks, diskID)
				}
			}
		}
	}
	return t, disks
}
