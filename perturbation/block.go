// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package perturbation

import (
	"storj.io/crsim/eventhandler"
	"storj.io/crsim/rng"
)

// BlockFailure flags individual chunks as pre-corrupt at placement time
// (spec.md §4.7): each chunk independently has Probability chance of
// starting the run already Corrupted.
type BlockFailure struct {
	Probability float64
}

// Apply marks each of h's stripe positions pre-corrupt per the
// configured probability, settling each affected stripe through h so
// Lost/unavailability accounting reflects any pre-corrupted stripe from
// the very first event. Returns the number of chunks flagged.
func (b BlockFailure) Apply(h *eventhandler.Handler, r *rng.Source) int {
	if b.Probability <= 0 {
		return 0
	}
	flagged := 0
	for _, s := range h.Stripes() {
		for pos := range s.State {
			if r.Float64() < b.Probability {
				h.ApplyBlockCorruption(s.Index, pos)
				flagged++
			}
		}
	}
	return flagged
}
