// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package drs

import (
	"fmt"

	"github.com/vivint/infectious"
)

// RS is the Reed-Solomon (or plain replication, when k=1) redundancy
// scheme: MDS, repairable whenever the durable count is at least k.
type RS struct {
	n, k int
}

var _ Scheme = (*RS)(nil)

// NewRS builds an RS(n,k) scheme. It validates that (k, n) is a
// constructible Reed-Solomon code using infectious's own constructor,
// rather than reimplementing Galois-field bounds checking; no byte is
// ever encoded or decoded through it (the Non-goal on byte-exact codec
// arithmetic is unaffected).
func NewRS(n, k int) (*RS, error) {
	if k <= 0 || n <= 0 || k > n {
		return nil, Error.New("RS: invalid parameters n=%d k=%d", n, k)
	}
	if k > 1 {
		if _, err := infectious.NewFEC(k, n); err != nil {
			return nil, Error.Wrap(err)
		}
	}
	return &RS{n: n, k: k}, nil
}

// Name implements Scheme.
func (s *RS) Name() string { return fmt.Sprintf("RS(%d,%d)", s.n, s.k) }

// N implements Scheme.
func (s *RS) N() int { return s.n }

// K implements Scheme.
func (s *RS) K() int { return s.k }

// IsMDS implements Scheme.
func (s *RS) IsMDS() bool { return true }

// RC implements Scheme.
func (s *RS) RC() float64 { return float64(s.k) }

// ORC implements Scheme.
func (s *RS) ORC() float64 { return float64(s.k) }

// IsRepairable implements Scheme.
func (s *RS) IsRepairable(state Vector) bool {
	return reducedRepairable(state, s.k)
}

// SingleRepair implements Scheme: MDS codes always cost k to rebuild one
// chunk, regardless of which position.
func (s *RS) SingleRepair(state Vector, index int) float64 {
	return float64(s.k)
}

// ParallelRepair implements Scheme: rebuilding m losses in one MDS pass
// costs m + k - 1 (one shared read fan-in of k, plus m-1 additional
// writes beyond the first).
func (s *RS) ParallelRepair(state Vector, onlyLost bool) float64 {
	m := lossesToRepair(state, onlyLost)
	if m == 0 {
		return 0
	}
	return float64(m + s.k - 1)
}

// RepairTraffic implements Scheme.
func (s *RS) RepairTraffic(hierarchical bool, racks int) float64 {
	return s.ORC()
}

// lossesToRepair counts the chunks a parallel repair pass will rebuild:
// Corrupted and LatentError always, plus Crashed unless onlyLost.
func lossesToRepair(state Vector, onlyLost bool) int {
	n := 0
	for _, c := range state {
		switch {
		case c.Lost():
			n++
		case c == Crashed && !onlyLost:
			n++
		}
	}
	return n
}
