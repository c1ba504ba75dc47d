// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package main

import (
	"go.uber.org/zap"

	"storj.io/crsim/crsimconfig"
	"storj.io/crsim/distribution"
	"storj.io/crsim/eventhandler"
	"storj.io/crsim/placement"
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// buildTree constructs a fresh uniform cluster tree from cfg's topology
// section. Every trial calls this again so each gets its own
// independent set of failure/recovery samplers, even though all trials
// place the same stripes over trees of identical shape.
func buildTree(log *zap.Logger, cfg crsimconfig.Config) (*topology.Tree, []topology.ID) {
	return topology.BuildUniform(log, topology.UniformParams{
		Datacenters:     cfg.Topology.Datacenters,
		RacksPerDC:      cfg.Topology.RacksPerDC,
		MachinesPerRack: cfg.Topology.MachinesPerRack,
		DisksPerMachine: cfg.Topology.DisksPerMachine,

		MachineFailure:  distribution.Exponential{Mean: cfg.Topology.MachineFailureMeanHours},
		MachineRecovery: distribution.Exponential{Mean: cfg.Topology.MachineRecoveryMeanHours},

		DiskFailure:  distribution.Exponential{Mean: cfg.Topology.DiskFailureMeanHours},
		DiskRecovery: distribution.Exponential{Mean: cfg.Topology.DiskRecoveryMeanHours},

		DiskLatent: distribution.Exponential{Mean: cfg.Topology.DiskLatentErrorMeanHours},
		DiskScrub:  distribution.Fixed(cfg.Topology.ScrubIntervalHours),

		MaxChunksPerDisk: 0,
	})
}

// buildEngine constructs the placement engine cfg.Placement names,
// wrapping it in the rack-quota overlay when Hierarchical is set. n is
// the scheme's stripe width (scheme.N()).
func buildEngine(cfg crsimconfig.Config, tree *topology.Tree, r *rng.Source, n int) placement.Engine {
	var engine placement.Engine
	switch cfg.Placement.Engine {
	case "pss":
		engine = placement.NewPSS(tree, n, r)
	case "copyset":
		scatter := cfg.Placement.ScatterWidth
		if scatter <= 0 {
			scatter = n - 1
		}
		engine = placement.NewCopySet(tree, n, scatter, r)
	default:
		engine = placement.NewSSS(tree, n)
	}

	if cfg.Placement.Hierarchical {
		engine = placement.NewHierarchical(engine, tree, n, cfg.Placement.SpanRacks)
	}
	return engine
}

// toHandlerConfig translates the scenario's hour-based recovery tuning
// into eventhandler.Config.
func toHandlerConfig(cfg crsimconfig.Config) eventhandler.Config {
	return eventhandler.Config{
		RecoveryThreshold:             cfg.Recovery.Threshold,
		AvailabilityCountsForRecovery: cfg.Recovery.AvailabilityCountsForRecovery,
		LazyOnlyAvailable:             cfg.Recovery.LazyOnlyAvailable,
		MaxDegradedSlices:             cfg.Recovery.MaxDegradedFraction,
		InstallmentSize:               cfg.Recovery.InstallmentSize,
		QueueDisable:                  cfg.Contention.Disable,
		NominalRepairDuration:         cfg.Recovery.NominalRepairHours,
		Hierarchical:                  cfg.Placement.Hierarchical,
		Racks:                         cfg.Placement.SpanRacks,
		RecoveryProbability: eventhandler.StepRecoveryProbability(
			cfg.Recovery.AvailabilityToDurabilityThresholdHours,
			cfg.Recovery.RecoveryProbabilities,
		),
		EagerBandwidthCap: cfg.Recovery.EagerBandwidthCap,
		DetectIntervals:   cfg.Recovery.DetectIntervalsHours,
	}
}
