// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package crsimconfig

import (
	"github.com/blang/semver"

	"storj.io/crsim/drs"
)

// Validate checks the cross-field constraints a scenario file must
// satisfy before a trial can run (spec.md §7 taxon 1, Configuration
// errors — "detected at startup ... the run aborts before any trial
// executes").
func (c *Config) Validate() error {
	supported, err := semver.Parse(SupportedSchemaVersion)
	if err != nil {
		return Error.Wrap(err)
	}
	declared, err := semver.Parse(c.SchemaVersion)
	if err != nil {
		return Error.New("schema_version %q is not valid semver: %v", c.SchemaVersion, err)
	}
	if declared.Major > supported.Major {
		return Error.New("scenario schema_version %s is newer than this binary supports (%s); upgrade crsim", declared, supported)
	}

	if _, err := drs.Parse(c.Scheme.Spec); err != nil {
		return Error.New("scheme.spec: %v", err)
	}

	if c.Topology.Datacenters <= 0 {
		return Error.New("topology.datacenters must be positive")
	}
	if c.Topology.RacksPerDC <= 0 {
		return Error.New("topology.racks_per_dc must be positive")
	}
	if c.Topology.MachinesPerRack <= 0 {
		return Error.New("topology.machines_per_rack must be positive")
	}
	if c.Topology.DisksPerMachine <= 0 {
		return Error.New("topology.disks_per_machine must be positive")
	}
	if c.Topology.MachineFailureMeanHours <= 0 {
		return Error.New("topology.machine_failure_mean_hours must be positive")
	}
	if c.Topology.PermanentFailureProbability < 0 || c.Topology.PermanentFailureProbability > 1 {
		return Error.New("topology.permanent_failure_probability must be in [0,1]")
	}

	if c.Recovery.Threshold < 0 {
		return Error.New("recovery.threshold must be non-negative")
	}
	if c.Recovery.LazyOnlyAvailable && c.Recovery.MaxDegradedFraction <= 0 {
		return Error.New("recovery.max_degraded_fraction must be positive when lazy_only_available is set")
	}
	for i, d := range c.Recovery.DetectIntervalsHours {
		if d < 0 {
			return Error.New("recovery.detect_intervals_hours[%d] must be non-negative", i)
		}
		if i > 0 && d > c.Recovery.DetectIntervalsHours[i-1] {
			return Error.New("recovery.detect_intervals_hours must be non-increasing")
		}
	}
	if len(c.Recovery.AvailabilityToDurabilityThresholdHours) != len(c.Recovery.RecoveryProbabilities) {
		return Error.New("recovery.availability_to_durability_threshold_hours and recovery.recovery_probabilities must have the same length")
	}
	for i, p := range c.Recovery.RecoveryProbabilities {
		if p < 0 || p > 1 {
			return Error.New("recovery.recovery_probabilities[%d] must be in [0,1]", i)
		}
	}

	switch c.Placement.Engine {
	case "sss", "pss", "copyset":
	default:
		return Error.New("placement.engine %q: must be sss, pss, or copyset", c.Placement.Engine)
	}
	if c.Placement.Hierarchical && c.Placement.SpanRacks <= 0 {
		return Error.New("placement.span_racks must be positive when hierarchical is set")
	}
	if c.Placement.ScatterWidth < 0 {
		return Error.New("placement.scatter_width must be non-negative")
	}

	if c.Trial.Count <= 0 {
		return Error.New("trial.count must be positive")
	}
	if c.Trial.HorizonYears <= 0 {
		return Error.New("trial.horizon_years must be positive")
	}
	if c.Trial.StripeCount <= 0 {
		return Error.New("trial.stripe_count must be positive")
	}

	return nil
}
