// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package drs

import "fmt"

// Doubler is a structural MDS variant parameterized by r (a spread
// factor with no effect on repair cost); original_source's DOUBLER only
// overrides parameter validation and otherwise falls through to the
// base scheme's plain MDS repair costs, so ORC equals RC here.
type Doubler struct {
	n, k, r int
}

var _ Scheme = (*Doubler)(nil)

// NewDoubler builds a Doubler(n,k,r) scheme; r must be non-negative.
func NewDoubler(n, k, r int) (*Doubler, error) {
	if k <= 0 || n <= 0 || k > n {
		return nil, Error.New("DOUBLER: invalid parameters n=%d k=%d", n, k)
	}
	if r < 0 {
		return nil, Error.New("DOUBLER: r must be non-negative, got %d", r)
	}
	return &Doubler{n: n, k: k, r: r}, nil
}

// Name implements Scheme.
func (s *Doubler) Name() string { return fmt.Sprintf("DOUBLER(%d,%d,%d)", s.n, s.k, s.r) }

// N implements Scheme.
func (s *Doubler) N() int { return s.n }

// K implements Scheme.
func (s *Doubler) K() int { return s.k }

// IsMDS implements Scheme.
func (s *Doubler) IsMDS() bool { return true }

// RC implements Scheme.
func (s *Doubler) RC() float64 { return float64(s.k) }

// ORC implements Scheme.
func (s *Doubler) ORC() float64 { return float64(s.k) }

// IsRepairable implements Scheme.
func (s *Doubler) IsRepairable(state Vector) bool {
	return reducedRepairable(state, s.k)
}

// SingleRepair implements Scheme.
func (s *Doubler) SingleRepair(state Vector, index int) float64 {
	return float64(s.k)
}

// ParallelRepair implements Scheme.
func (s *Doubler) ParallelRepair(state Vector, onlyLost bool) float64 {
	m := lossesToRepair(state, onlyLost)
	if m == 0 {
		return 0
	}
	return float64(m + s.k - 1)
}

// RepairTraffic implements Scheme.
func (s *Doubler) RepairTraffic(hierarchical bool, racks int) float64 {
	return s.ORC()
}
