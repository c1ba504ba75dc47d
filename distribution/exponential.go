// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package distribution

import "storj.io/crsim/rng"

// Exponential draws from an exponential distribution with the given
// mean, via math/rand's ExpFloat64 (rate 1) scaled by the mean. It is a
// thin stand-in for the real Weibull/gamma generators that spec.md §1
// names as an out-of-scope external collaborator — production callers
// are expected to supply their own Sampler.
type Exponential struct {
	Mean float64
}

var _ Sampler = Exponential{}

// Sample implements Sampler.
func (e Exponential) Sample(r *rng.Source) float64 {
	if e.Mean <= 0 {
		return 0
	}
	return r.ExpFloat64() * e.Mean
}
