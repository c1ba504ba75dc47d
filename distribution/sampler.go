// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package distribution defines the interface the topology's failure,
// recovery, latent-error, and scrub generators depend on. The raw
// Weibull/exponential/gamma random-variate generators named in spec.md
// §1 are external collaborators: this package only depends on their
// interface, and ships two stand-ins (Fixed and Exponential) for
// testing, not a replacement for the real generators.
package distribution

import "storj.io/crsim/rng"

// Sampler draws a single non-negative time-to-event value, in hours,
// using the shared rng.Source.
type Sampler interface {
	// Sample returns the next draw from the distribution.
	Sample(r *rng.Source) float64
}
