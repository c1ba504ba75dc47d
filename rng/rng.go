// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package rng provides the single seedable random source the whole
// simulation shares, per spec.md's DESIGN NOTES §9: "all stochastic
// decisions route through a single seedable generator held by the
// simulation; generators in the topology take it by reference."
package rng

import "math/rand"

// Source is the shared generator. It is not safe for concurrent use,
// which is fine: the event loop that owns it is single-threaded
// cooperative (spec.md §5).
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded deterministically from seed. The same
// seed always produces the same sequence of draws (spec.md §8's
// "Placement determinism" law).
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a pseudo-random number in [0.0, 1.0).
func (s *Source) Float64() float64 { return s.r.Float64() }

// Intn returns a pseudo-random number in [0, n).
func (s *Source) Intn(n int) int { return s.r.Intn(n) }

// Perm returns a pseudo-random permutation of [0, n).
func (s *Source) Perm(n int) []int { return s.r.Perm(n) }

// ExpFloat64 returns an exponentially distributed value with rate 1.
func (s *Source) ExpFloat64() float64 { return s.r.ExpFloat64() }

// Shuffle pseudo-randomizes the order of n elements via swap(i, j).
func (s *Source) Shuffle(n int, swap func(i, j int)) { s.r.Shuffle(n, swap) }
