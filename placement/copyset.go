// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package placement

import (
	"math"

	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// CopySet is the bounded-scatter placement (spec.md §4.3): machines are
// grouped into fixed "copysets" of scatter width s; each stripe picks
// one copyset, then n machines within it, then one disk per machine.
//
// The two degenerate cases named in spec.md are implemented by
// delegating outright to the engine they coincide with, rather than by
// re-deriving their behavior from the general construction: at
// s = n-1 CopySet must be "observationally identical to PSS on the same
// seed" (spec.md §8 boundary scenario 5), which is only guaranteed by
// running the same code, not a parallel implementation that happens to
// agree. Likewise s = #machines-1 degenerates to SSS.
type CopySet struct {
	tree     *topology.Tree
	n, s     int
	delegate Engine // set when this instance is a degenerate case
	copysets []Group
}

// NewCopySet builds a CopySet engine over tree with group size n and
// scatter width s (n-1 <= s <= #machines-1).
func NewCopySet(tree *topology.Tree, n, s int, r *rng.Source) *CopySet {
	machines := tree.Machines()
	cs := &CopySet{tree: tree, n: n, s: s}

	switch {
	case s == n-1:
		cs.delegate = NewPSS(tree, n, r)
		return cs
	case s == len(machines)-1:
		cs.delegate = NewSSS(tree, n)
		return cs
	}

	load := int(math.Ceil(float64(s) / float64(n-1)))
	cs.copysets = buildCopysets(machines, s, load, r)
	return cs
}

func buildCopysets(machines []topology.ID, s, load int, r *rng.Source) []Group {
	var copysets []Group
	for pass := 0; pass < load; pass++ {
		perm := r.Perm(len(machines))
		for start := 0; start+s <= len(perm); start += s {
			group := make(Group, s)
			for i := 0; i < s; i++ {
				group[i] = machines[perm[start+i]]
			}
			copysets = append(copysets, group)
		}
	}
	return copysets
}

func (c *CopySet) PlaceGroup(r *rng.Source) (Group, error) {
	if c.delegate != nil {
		return c.delegate.PlaceGroup(r)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		live := c.liveCopysets()
		if len(live) == 0 {
			return nil, Error.New("CopySet: no copysets left in the pool")
		}
		copyset := c.copysets[live[r.Intn(len(live))]]

		perm := r.Perm(len(copyset))
		machines := make([]topology.ID, c.n)
		for i := 0; i < c.n; i++ {
			machines[i] = copyset[perm[i]]
		}

		group, ok := pickOneDiskPerMachine(c.tree, machines, r)
		if !ok {
			continue
		}
		return group, nil
	}
	return nil, Error.New("CopySet: exhausted %d retries constructing a valid group", maxRetries)
}

func (c *CopySet) liveCopysets() []int {
	var out []int
	for i, cs := range c.copysets {
		withCapacity := 0
		for _, m := range cs {
			if len(availableDisks(c.tree, c.tree.Node(m).Children)) > 0 {
				withCapacity++
			}
		}
		if withCapacity >= c.n {
			out = append(out, i)
		}
	}
	return out
}

func pickOneDiskPerMachine(tree *topology.Tree, machines []topology.ID, r *rng.Source) (Group, bool) {
	group := make(Group, 0, len(machines))
	for _, m := range machines {
		disks := availableDisks(tree, tree.Node(m).Children)
		if len(disks) == 0 {
			return nil, false
		}
		group = append(group, disks[r.Intn(len(disks))])
	}
	return group, true
}
