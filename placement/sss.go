// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package placement

import (
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// SSS is the fully-random "spread" placement (spec.md §4.3): n disks
// drawn uniformly at random per stripe, one chunk per disk, and (for
// n <= 15) one chunk per rack.
type SSS struct {
	tree *topology.Tree
	n    int
	all  []topology.ID
}

// NewSSS returns an SSS engine spreading stripes of n chunks across
// every disk in tree.
func NewSSS(tree *topology.Tree, n int) *SSS {
	return &SSS{tree: tree, n: n, all: tree.Disks()}
}

func (s *SSS) PlaceGroup(r *rng.Source) (Group, error) {
	requireDistinctRacks := s.n <= 15
	for attempt := 0; attempt < maxRetries; attempt++ {
		candidates := availableDisks(s.tree, s.all)
		if len(candidates) < s.n {
			return nil, Error.New("SSS: not enough disks with free capacity (need %d, have %d)", s.n, len(candidates))
		}
		perm := r.Perm(len(candidates))
		group := make(Group, s.n)
		for i := 0; i < s.n; i++ {
			group[i] = candidates[perm[i]]
		}
		if requireDistinctRacks && !distinctRacks(s.tree, group) {
			continue
		}
		return group, nil
	}
	return nil, Error.New("SSS: exhausted %d retries constructing a valid group", maxRetries)
}
