// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package placement implements the Placement Engine (spec.md §4.3): SSS,
// PSS, and CopySet stripe-to-disk mappings, with an optional hierarchical
// rack-quota overlay and capacity-aware candidate filtering.
package placement

import (
	"github.com/zeebo/errs"

	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// Error is the class wrapping every placement-domain failure.
var Error = errs.Class("placement")

// maxRetries bounds candidate-group construction attempts before a
// stripe placement is declared a failure (spec.md §4.3: "Repeats ... up
// to 100 retries").
const maxRetries = 100

// Group is the ordered set of disks hosting one stripe's n chunks.
type Group []topology.ID

// Engine maps one stripe to a Group of disks. Implementations never
// mutate disk capacity themselves; Place (capacity.go) does that once a
// group is accepted, so a rejected candidate group never leaves stray
// reservations behind.
type Engine interface {
	PlaceGroup(r *rng.Source) (Group, error)
}

func distinctDisks(group Group) bool {
	seen := make(map[topology.ID]struct{}, len(group))
	for _, id := range group {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

func distinctRacks(tree *topology.Tree, group Group) bool {
	seen := make(map[topology.ID]struct{}, len(group))
	for _, id := range group {
		rack := tree.Ancestor(id, topology.Rack)
		if _, ok := seen[rack]; ok {
			return false
		}
		seen[rack] = struct{}{}
	}
	return true
}

func groupHasCapacity(tree *topology.Tree, group Group) bool {
	for _, id := range group {
		if !tree.Node(id).HasCapacity() {
			return false
		}
	}
	return true
}

func availableDisks(tree *topology.Tree, disks []topology.ID) []topology.ID {
	out := make([]topology.ID, 0, len(disks))
	for _, id := range disks {
		if tree.Node(id).HasCapacity() {
			out = append(out, id)
		}
	}
	return out
}
