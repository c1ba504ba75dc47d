// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package topology_test

import (
	"storj.io/crsim/distribution"
	"storj.io/crsim/rng"
)

func fixedSampler(v float64) distribution.Sampler { return distribution.Fixed(v) }

func newDeterministicRNG() *rng.Source { return rng.New(42) }
