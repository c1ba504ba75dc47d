// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package placement

import (
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

// Hierarchical wraps another Engine and rejects any candidate group
// whose rack distribution does not span exactly racks racks with
// per-rack quotas differing by at most one (spec.md §4.3's hierarchical
// variant). It never reserves capacity itself, so a rejected candidate
// costs nothing to retry.
type Hierarchical struct {
	inner  Engine
	tree   *topology.Tree
	racks  int
	quotas map[int]int // quota value -> how many racks may hold it
}

// NewHierarchical wraps inner, requiring every accepted group to span
// exactly racks racks with quotas q1..qr (sum n, |qi-qj| <= 1).
func NewHierarchical(inner Engine, tree *topology.Tree, n, racks int) *Hierarchical {
	base := n / racks
	extra := n % racks
	quotas := map[int]int{base: racks - extra}
	if extra > 0 {
		quotas[base+1] = extra
	}
	return &Hierarchical{inner: inner, tree: tree, racks: racks, quotas: quotas}
}

func (h *Hierarchical) PlaceGroup(r *rng.Source) (Group, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		group, err := h.inner.PlaceGroup(r)
		if err != nil {
			return nil, err
		}
		if h.satisfiesQuotas(group) {
			return group, nil
		}
	}
	return nil, Error.New("Hierarchical: exhausted %d retries satisfying rack quotas", maxRetries)
}

func (h *Hierarchical) satisfiesQuotas(group Group) bool {
	counts := make(map[topology.ID]int)
	for _, id := range group {
		rack := h.tree.Ancestor(id, topology.Rack)
		counts[rack]++
	}
	if len(counts) != h.racks {
		return false
	}
	seen := make(map[int]int)
	for _, count := range counts {
		seen[count]++
	}
	for count, racks := range seen {
		if h.quotas[count] != racks {
			return false
		}
	}
	return true
}
