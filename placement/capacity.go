// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package placement

import (
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// Place asks e for a candidate group and, if accepted, reserves one
// chunk slot on every disk in it (spec.md §4.3 "Capacity policy"). This
// is the only place capacity is consumed, so an engine (or the
// Hierarchical overlay) that rejects a candidate never needs to unwind a
// reservation.
func Place(e Engine, tree *topology.Tree, r *rng.Source) (Group, error) {
	group, err := e.PlaceGroup(r)
	if err != nil {
		return nil, err
	}
	for _, id := range group {
		tree.Node(id).Reserve()
	}
	return group, nil
}
