// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package drs

import (
	"fmt"
	"math"
)

// DRC is a hierarchical Data Redundancy Code parameterized by the rack
// spread r; its repair cost formula accounts for cross-rack aggregation
// instead of per-chunk bandwidth, so RepairTraffic always returns ORC
// regardless of the placement's actual hierarchy.
type DRC struct {
	n, k, r int
}

var _ Scheme = (*DRC)(nil)

// NewDRC builds a DRC(n,k,r) scheme; 0 < r <= n.
func NewDRC(n, k, r int) (*DRC, error) {
	if k <= 0 || n <= 0 || k > n {
		return nil, Error.New("DRC: invalid parameters n=%d k=%d", n, k)
	}
	if r <= 0 || r > n {
		return nil, Error.New("DRC: r=%d must be in (0, n=%d]", r, n)
	}
	return &DRC{n: n, k: k, r: r}, nil
}

// Name implements Scheme.
func (s *DRC) Name() string { return fmt.Sprintf("DRC(%d,%d,%d)", s.n, s.k, s.r) }

// N implements Scheme.
func (s *DRC) N() int { return s.n }

// K implements Scheme.
func (s *DRC) K() int { return s.k }

// IsMDS implements Scheme.
func (s *DRC) IsMDS() bool { return true }

// RC implements Scheme.
func (s *DRC) RC() float64 { return float64(s.k) }

// ORC implements Scheme.
func (s *DRC) ORC() float64 {
	r := float64(s.r)
	q := math.Floor(float64(s.k) * r / float64(s.n))
	orc := (r - 1) / (r - q)
	return math.Round(orc*1e5) / 1e5
}

// IsRepairable implements Scheme.
func (s *DRC) IsRepairable(state Vector) bool {
	return reducedRepairable(state, s.k)
}

// SingleRepair implements Scheme.
func (s *DRC) SingleRepair(state Vector, index int) float64 {
	if state.DurableCount() >= s.n-1 {
		return s.ORC()
	}
	return float64(s.k)
}

// ParallelRepair implements Scheme.
func (s *DRC) ParallelRepair(state Vector, onlyLost bool) float64 {
	m := lossesToRepair(state, onlyLost)
	if m == 0 {
		return 0
	}
	if state.DurableCount() >= s.n-1 && m == 1 {
		return s.ORC()
	}
	return float64(m) + float64(s.k) - 1
}

// RepairTraffic implements Scheme: DRC always reports its optimal
// cost as the traffic figure, since the scheme itself already models
// cross-rack aggregation.
func (s *DRC) RepairTraffic(hierarchical bool, racks int) float64 {
	return s.ORC()
}
