// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package placement

import (
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// PSS is the partitioned placement (spec.md §4.3): disks are carved
// once into disjoint groups of n, each spanning n distinct racks; every
// stripe is assigned to a uniformly random group from that fixed pool,
// and a group that can no longer satisfy capacity is dropped from it.
type PSS struct {
	tree   *topology.Tree
	n      int
	groups []Group
}

// NewPSS partitions tree's disks into groups of n distinct-rack disks,
// consuming r to randomize both rack order and within-rack disk order
// so the partition is reproducible under a fixed seed.
func NewPSS(tree *topology.Tree, n int, r *rng.Source) *PSS {
	return &PSS{tree: tree, n: n, groups: buildRackPartition(tree, n, r)}
}

func buildRackPartition(tree *topology.Tree, n int, r *rng.Source) []Group {
	racks := tree.Racks()
	buckets := make(map[topology.ID][]topology.ID, len(racks))
	for _, rack := range racks {
		var disks []topology.ID
		for _, machine := range tree.Node(rack).Children {
			disks = append(disks, tree.Node(machine).Children...)
		}
		perm := r.Perm(len(disks))
		shuffled := make([]topology.ID, len(disks))
		for i, p := range perm {
			shuffled[i] = disks[p]
		}
		buckets[rack] = shuffled
	}

	rackOrderSeed := append([]topology.ID(nil), racks...)
	var groups []Group
	for {
		perm := r.Perm(len(rackOrderSeed))
		var group Group
		for _, idx := range perm {
			rack := rackOrderSeed[idx]
			if len(buckets[rack]) == 0 {
				continue
			}
			group = append(group, buckets[rack][0])
			buckets[rack] = buckets[rack][1:]
			if len(group) == n {
				break
			}
		}
		if len(group) < n {
			break
		}
		groups = append(groups, group)
	}
	return groups
}

func (p *PSS) PlaceGroup(r *rng.Source) (Group, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		live := p.liveIndices()
		if len(live) == 0 {
			return nil, Error.New("PSS: no groups left in the partition pool")
		}
		idx := live[r.Intn(len(live))]
		group := p.groups[idx]
		if !groupHasCapacity(p.tree, group) {
			p.groups[idx] = nil
			continue
		}
		return group, nil
	}
	return nil, Error.New("PSS: exhausted %d retries finding a group with capacity", maxRetries)
}

func (p *PSS) liveIndices() []int {
	var out []int
	for i, g := range p.groups {
		if g != nil {
			out = append(out, i)
		}
	}
	return out
}
