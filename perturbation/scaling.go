// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package perturbation implements the Perturbation Layer (spec.md
// §4.7): system scaling, rolling upgrade, correlated failure, and block
// failure, all materialized as topology mutations and injected failure
// intervals before (or, for block failure, immediately at) simulation
// start.
package perturbation

import (
	"math"

	"storj.io/crsim/distribution"
	"storj.io/crsim/topology"
)

// ScalingStyle enumerates the rollout discipline for adding capacity
// (original_source/Configuration.py's unlabeled 0..3 `style`
// enumeration, named here per SPEC_FULL.md §5's supplemented "Scaling
// load-balance TRC accounting" feature).
type ScalingStyle int

// Styles.
const (
	// ScaleImmediate adds every new component in one step.
	ScaleImmediate ScalingStyle = iota
	// ScaleBatched is reserved for a caller-driven multi-step rollout:
	// ApplyScaling performs one step; the caller invokes it once per batch.
	ScaleBatched
	// ScaleRateLimited is reserved the same way, for a caller that paces
	// successive ApplyScaling calls itself.
	ScaleRateLimited
	// ScaleManual performs the addition once with no further rollout
	// bookkeeping; scheduling is entirely up to the caller.
	ScaleManual
)

// SamplerFactory builds one independent Sampler per call, matching the
// per-node generator wiring the rest of the topology package does
// (spec.md §4.2: "each node carries an event-generator pair").
type SamplerFactory func() distribution.Sampler

// ScalingPlan describes one system-scaling event (spec.md §4.7).
type ScalingPlan struct {
	Start float64
	Style ScalingStyle

	AddRacks           int
	AddMachinesPerRack int
	AddDisksPerMachine int
	MaxChunksPerDisk   int

	LoadBalance bool

	MachineFailure, MachineRecovery SamplerFactory
	LatentGen, ScrubGen             SamplerFactory
}

// ScalingResult is the outcome of one ApplyScaling call.
type ScalingResult struct {
	Disks []topology.ID
	// MigrationCost is the chunk-equivalent cost of load-balance
	// migration, to be charged into TRC by the caller (spec.md §4.7:
	// "counted into TRC") via eventhandler.Handler.AddTRC.
	MigrationCost float64
}

// ApplyScaling grows tree under dc by plan's rack/machine/disk counts,
// wiring each new node's generators, and — if requested — moves
// ≈ additions/total of the existing chunk population onto the new
// disks so the added capacity is immediately exercised rather than
// sitting idle until the next placement round.
func ApplyScaling(tree *topology.Tree, dc topology.ID, plan ScalingPlan) ScalingResult {
	existingDisks := tree.Disks()

	var added []topology.ID
	for i := 0; i < plan.AddRacks; i++ {
		rack := tree.AddNode(dc, topology.Rack)
		for m := 0; m < plan.AddMachinesPerRack; m++ {
			machine := tree.AddNode(rack, topology.Machine)
			mn := tree.Node(machine)
			if plan.MachineFailure != nil {
				mn.Failure = plan.MachineFailure()
			}
			if plan.MachineRecovery != nil {
				mn.Recovery = plan.MachineRecovery()
			}
			for d := 0; d < plan.AddDisksPerMachine; d++ {
				disk := tree.AddNode(machine, topology.Disk)
				dn := tree.Node(disk)
				dn.MaxChunksPerDisk = plan.MaxChunksPerDisk
				if plan.LatentGen != nil {
					dn.LatentGen = plan.LatentGen()
				}
				if plan.ScrubGen != nil {
					dn.ScrubGen = plan.ScrubGen()
				}
				added = append(added, disk)
			}
		}
	}

	result := ScalingResult{Disks: added}
	if plan.LoadBalance && len(added) > 0 {
		result.MigrationCost = loadBalance(tree, existingDisks, added)
	}
	return result
}

// loadBalance moves ≈ len(added)/(len(existing)+len(added)) of the
// chunks currently reserved on existing disks onto the new ones, one
// disk at a time, round-robining the destination. It stops as soon as
// the target count is reached or the new disks run out of capacity,
// whichever comes first.
func loadBalance(tree *topology.Tree, existing, added []topology.ID) float64 {
	if len(existing) == 0 || len(added) == 0 {
		return 0
	}
	var totalUsed int
	for _, id := range existing {
		totalUsed += tree.Node(id).ChunksUsed
	}
	target := int(math.Round(float64(len(added)) / float64(len(existing)+len(added)) * float64(totalUsed)))

	moved := 0
	addedIdx := 0
outer:
	for _, srcID := range existing {
		src := tree.Node(srcID)
		for src.ChunksUsed > 0 {
			if moved >= target {
				break outer
			}
			placed := false
			for attempt := 0; attempt < len(added); attempt++ {
				dst := tree.Node(added[addedIdx%len(added)])
				addedIdx++
				if dst.HasCapacity() {
					src.Release()
					dst.Reserve()
					moved++
					placed = true
					break
				}
			}
			if !placed {
				break outer
			}
		}
	}
	return float64(moved)
}
