// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package drs

import "fmt"

// XORBAS is an LRC variant where all local and global parities together
// form one additional "implied parity" group: a single lost parity can
// be reconstructed from its sibling parities before the ordinary LRC
// repairability test runs, and any single failure anywhere in the
// stripe recovers at optimal cost.
type XORBAS struct {
	LRC
}

var _ Scheme = (*XORBAS)(nil)

// NewXORBAS builds an XORBAS(n,k,l) scheme.
func NewXORBAS(n, k, l int) (*XORBAS, error) {
	lrc, err := NewLRC(n, k, l)
	if err != nil {
		return nil, err
	}
	return &XORBAS{LRC: *lrc}, nil
}

// Name implements Scheme.
func (s *XORBAS) Name() string { return fmt.Sprintf("XORBAS(%d,%d,%d)", s.n, s.k, s.l) }

// parityGroup returns every local+global parity position: [k, n).
func (s *XORBAS) parityGroup(state Vector) Vector {
	return state[s.k:]
}

// closeImpliedParity returns a copy of state where, if exactly one
// parity position is lost, that position is treated as Normal: the
// other parities reconstruct it via the implied-parity closure rule
// before the underlying LRC repairability test considers it.
func (s *XORBAS) closeImpliedParity(state Vector) Vector {
	parity := s.parityGroup(state)
	if countLostReduced(parity) != 1 {
		return state
	}
	closed := state.Clone()
	for i, c := range parity {
		if c.Lost() {
			closed[s.k+i] = Normal
			break
		}
	}
	return closed
}

// IsRepairable implements Scheme.
func (s *XORBAS) IsRepairable(state Vector) bool {
	return s.LRC.IsRepairable(s.closeImpliedParity(state))
}

// SingleRepair implements Scheme: ORC whenever the target's local group,
// OR the whole-parity closure group, has at most one loss.
func (s *XORBAS) SingleRepair(state Vector, index int) float64 {
	if s.groupOf(index) >= 0 && s.localizes(state, index) {
		return s.ORC()
	}
	if countLostReduced(s.parityGroup(state)) <= 1 {
		return s.ORC()
	}
	return s.RC()
}

// ParallelRepair implements Scheme: any single failure recovers at
// optimal cost due to the parity closure; otherwise RC + losses - 1.
func (s *XORBAS) ParallelRepair(state Vector, onlyLost bool) float64 {
	m := lossesToRepair(state, onlyLost)
	if m == 0 {
		return 0
	}
	if m == 1 {
		return s.ORC()
	}
	return s.RC() + float64(m) - 1
}
