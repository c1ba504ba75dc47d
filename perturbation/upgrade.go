// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package perturbation

import "storj.io/crsim/topology"

// UpgradePlan describes a rolling upgrade (spec.md §4.7): every
// Interval hours, Concurrence machines are taken offline for Downtime
// hours, cycling through the machine population so every machine is
// eventually rotated through at roughly the same rate.
type UpgradePlan struct {
	Concurrence int
	Downtime    float64
	Interval    float64
}

// ApplyUpgrade injects Concurrence transient FailureIntervals per
// rotation over [0, horizon), taking the next machines in order and
// wrapping around the machine list, modeled as injected transient intervals
// (spec.md §4.7: "model as injected transient intervals on each
// machine"). Returns the number of intervals injected.
func ApplyUpgrade(tree *topology.Tree, horizon float64, plan UpgradePlan) int {
	machines := tree.Machines()
	if len(machines) == 0 || plan.Concurrence <= 0 || plan.Interval <= 0 {
		return 0
	}

	injected := 0
	cursor := 0
	for t := 0.0; t < horizon; t += plan.Interval {
		for i := 0; i < plan.Concurrence; i++ {
			machine := machines[cursor%len(machines)]
			tree.Node(machine).Inject(topology.FailureInterval{Start: t, End: t + plan.Downtime})
			cursor++
			injected++
		}
	}
	return injected
}
