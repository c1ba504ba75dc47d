// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package eventhandler

import "storj.io/crsim/contention"

// Cause records why one stripe became undurable (spec.md §8 boundary
// scenario 2: "one entry appended to undurable list with cause").
type Cause struct {
	StripeIndex int
	Reason      string
}

// Result is the process-wide accumulator driven by a Handler over one
// trial. It is a plain value: the handler mutates it through a pointer
// it alone holds, so there is never a second live reference to alias
// (spec.md DESIGN NOTES §9, "forbid hidden aliasing").
type Result struct {
	UndurableCount int
	Causes         []Cause

	UnavailableCount   int
	UnavailableSeconds float64

	TRC float64

	LatentErrorsSkipped int

	// AnomalousAvailable counts a Recovered event that finds its chunk
	// already Normal instead of the Crashed/Corrupted state it expected
	// — a timeout-boundary race between the original failure's recovery
	// deadline and some other path (eager recovery, a second concurrent
	// failure's rebuild) already having restored the chunk.
	AnomalousAvailable int

	Queue contention.Stats
}

func (r *Result) markUndurable(stripeIndex int, reason string) {
	r.UndurableCount++
	r.Causes = append(r.Causes, Cause{StripeIndex: stripeIndex, Reason: reason})
}

func (r *Result) openUnavailability() { r.UnavailableCount++ }

func (r *Result) closeUnavailability(duration float64) {
	if duration > 0 {
		r.UnavailableSeconds += duration
	}
}

func (r *Result) addTRC(cost float64) { r.TRC += cost }

func (r *Result) markAnomalousAvailable() { r.AnomalousAvailable++ }
