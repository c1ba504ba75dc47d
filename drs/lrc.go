// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package drs

import "fmt"

// LRC is a Locally Repairable Code: k data chunks split into l local
// groups of b = k/l chunks, each with one local parity (m0=1), plus
// m1 = n - k - l global parities. Non-MDS.
type LRC struct {
	n, k, l int
	b, m1   int
}

var _ Scheme = (*LRC)(nil)

// NewLRC builds an LRC(n,k,l) scheme. Only local parity count 1 per
// group is supported, matching original_source/simulator/drs/LRC.py's
// "only works when local parity is 1 (m0 = 1)" constraint.
func NewLRC(n, k, l int) (*LRC, error) {
	if l <= 0 || k <= 0 || n <= 0 {
		return nil, Error.New("LRC: invalid parameters n=%d k=%d l=%d", n, k, l)
	}
	if k%l != 0 {
		return nil, Error.New("LRC: k=%d must be divisible by l=%d", k, l)
	}
	b := k / l
	m1 := n - k - l
	if m1 < 0 {
		return nil, Error.New("LRC: n=%d too small for k=%d l=%d", n, k, l)
	}
	return &LRC{n: n, k: k, l: l, b: b, m1: m1}, nil
}

// Name implements Scheme.
func (s *LRC) Name() string { return fmt.Sprintf("LRC(%d,%d,%d)", s.n, s.k, s.l) }

// N implements Scheme.
func (s *LRC) N() int { return s.n }

// K implements Scheme.
func (s *LRC) K() int { return s.k }

// IsMDS implements Scheme.
func (s *LRC) IsMDS() bool { return false }

// RC implements Scheme.
func (s *LRC) RC() float64 { return float64(s.k) }

// ORC implements Scheme.
func (s *LRC) ORC() float64 { return float64(s.k) / float64(s.l) }

// localGroup returns the data positions [0,b) and the one local parity
// position (b) of local group g, evaluated against state.
func (s *LRC) localGroup(state Vector, g int) Vector {
	out := make(Vector, 0, s.b+1)
	out = append(out, state[g*s.b:(g+1)*s.b]...)
	out = append(out, state[s.k+g])
	return out
}

func countLostReduced(v Vector) int {
	n := 0
	for _, c := range v {
		if c.Lost() {
			n++
		}
	}
	return n
}

// IsRepairable implements Scheme per spec.md §4.1's LRC rule: durable
// count at least k, and the equations reachable from surviving local
// parities plus global parities cover the losses that local repair
// cannot resolve. Local groups here are independent of one another (a
// single level of locality), so the fixpoint spec.md describes converges
// in one pass: apply rule (i) to every local group, then rule (ii) to
// the global-parity group once.
func (s *LRC) IsRepairable(state Vector) bool {
	if len(state) != s.n {
		return false
	}
	if !reducedRepairable(state, s.k) {
		return false
	}
	if countLostReduced(state) == 0 {
		return true
	}

	availEquations := 0
	lossAmount := 0
	for g := 0; g < s.l; g++ {
		group := s.localGroup(state, g)
		lost := countLostReduced(group)
		if lost <= 1 {
			continue // rule (i): locally recoverable, contributes nothing further
		}
		availEquations++ // the group's one local parity becomes a spare equation
		lossAmount += lost
	}

	globalParity := state[s.n-s.m1:]
	availEquations += s.m1
	lossAmount += countLostReduced(globalParity)

	return availEquations >= lossAmount
}

// localizes reports whether index's local group has at most one loss,
// i.e. a local-parity-only repair suffices (ORC applies).
func (s *LRC) localizes(state Vector, index int) bool {
	g := s.groupOf(index)
	return countLostReduced(s.localGroup(state, g)) <= 1
}

// groupOf returns which local group (or the global-parity group, -1)
// owns position index.
func (s *LRC) groupOf(index int) int {
	switch {
	case index < s.k:
		return index / s.b
	case index < s.k+s.l:
		return index - s.k
	default:
		return -1
	}
}

// SingleRepair implements Scheme: ORC when the target's local group has
// at most one loss (m0=1), else the global-repair cost RC.
func (s *LRC) SingleRepair(state Vector, index int) float64 {
	if s.groupOf(index) >= 0 && s.localizes(state, index) {
		return s.ORC()
	}
	return s.RC()
}

// ParallelRepair implements Scheme: ORC when exactly one loss localizes,
// else RC + losses - 1.
func (s *LRC) ParallelRepair(state Vector, onlyLost bool) float64 {
	m := lossesToRepair(state, onlyLost)
	if m == 0 {
		return 0
	}
	if m == 1 {
		for i, c := range state {
			if c.Lost() || (c == Crashed && !onlyLost) {
				if s.groupOf(i) >= 0 && s.localizes(state, i) {
					return s.ORC()
				}
				return s.RC()
			}
		}
	}
	return s.RC() + float64(m) - 1
}

// RepairTraffic implements Scheme.
func (s *LRC) RepairTraffic(hierarchical bool, racks int) float64 {
	return s.ORC()
}
