// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package perturbation

import (
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// CorrelatedFailure describes one scheduled correlated-failure event
// (spec.md §4.7): Count components of Scope are selected uniformly
// without replacement and get an injected unavailability interval;
// optionally a LostCount subset — either drawn from that same selected
// set, or sampled independently — instead gets a destructive interval.
type CorrelatedFailure struct {
	Occurrence float64
	Scope      topology.Kind
	Count      int
	Duration   float64

	LostCount              int
	LostFromUnavailableSet bool
}

// ApplyCorrelatedFailure injects the configured intervals onto tree and
// returns every node ID affected.
func ApplyCorrelatedFailure(tree *topology.Tree, r *rng.Source, cf CorrelatedFailure) []topology.ID {
	candidates := nodesOfKind(tree, cf.Scope)
	if cf.Count <= 0 || len(candidates) == 0 {
		return nil
	}
	count := cf.Count
	if count > len(candidates) {
		count = len(candidates)
	}
	perm := r.Perm(len(candidates))
	selected := make([]topology.ID, count)
	for i := 0; i < count; i++ {
		selected[i] = candidates[perm[i]]
	}

	lost := make(map[topology.ID]bool)
	if cf.LostCount > 0 {
		if cf.LostFromUnavailableSet {
			n := cf.LostCount
			if n > len(selected) {
				n = len(selected)
			}
			for i := 0; i < n; i++ {
				lost[selected[i]] = true
			}
		} else {
			n := cf.LostCount
			if n > len(candidates) {
				n = len(candidates)
			}
			independentPerm := r.Perm(len(candidates))
			for i := 0; i < n; i++ {
				lost[candidates[independentPerm[i]]] = true
			}
		}
	}

	alreadySelected := make(map[topology.ID]bool, len(selected))
	for _, id := range selected {
		alreadySelected[id] = true
	}

	for _, id := range selected {
		tree.Node(id).Inject(topology.FailureInterval{
			Start: cf.Occurrence,
			End:   cf.Occurrence + cf.Duration,
			Lost:  lost[id],
		})
	}
	// An independently-sampled lost component outside the unavailable
	// set still needs its own destructive interval and a place in the
	// returned affected set.
	for id := range lost {
		if alreadySelected[id] {
			continue
		}
		tree.Node(id).Inject(topology.FailureInterval{Start: cf.Occurrence, End: cf.Occurrence + cf.Duration, Lost: true})
		selected = append(selected, id)
	}
	return selected
}

func nodesOfKind(tree *topology.Tree, kind topology.Kind) []topology.ID {
	switch kind {
	case topology.Rack:
		return tree.Racks()
	case topology.Machine:
		return tree.Machines()
	case topology.Disk:
		return tree.Disks()
	default:
		return nil
	}
}
