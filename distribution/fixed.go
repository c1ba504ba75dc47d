// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package distribution

import "storj.io/crsim/rng"

// Fixed always returns the same value. It exists for the deterministic
// boundary-scenario tests named in spec.md §8, where a natural-failure
// generator must draw a literal, pre-agreed interval.
type Fixed float64

var _ Sampler = Fixed(0)

// Sample implements Sampler.
func (f Fixed) Sample(r *rng.Source) float64 { return float64(f) }

// Sequence cycles deterministically through a fixed list of values,
// repeating the last one once exhausted. Useful for boundary scenarios
// that need a short, literal sequence of draws rather than one constant.
type Sequence struct {
	values []float64
	next   int
}

var _ Sampler = (*Sequence)(nil)

// NewSequence returns a Sampler that yields values in order.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Sample implements Sampler.
func (s *Sequence) Sample(r *rng.Source) float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return v
}
