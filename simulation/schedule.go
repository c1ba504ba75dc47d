// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package simulation wires the Topology Tree, Placement Engine, Event
// Queue, Bandwidth Contention model, and Event Handler into one
// end-to-end trial (spec.md §2), and owns the Total-Slices Schedule and
// Result aggregation across trials (spec.md §3, §9 "Global result
// accumulator").
package simulation

import "math"

// ScheduleEntry is one piece of the Total-Slices Schedule (spec.md §3):
// within [Start, End), the live stripe count at time t is
// Count + Rate*(t-Start), rounded up.
type ScheduleEntry struct {
	Start, End float64
	Count      int
	Rate       float64
}

// Schedule is the piecewise-linear live-stripe-count table produced by
// a scaling plan. A nil/empty Schedule means a constant stripe count
// for the whole horizon: LiveAt returns 0 for it, and
// LiveStripeSeconds falls back to the caller's static count.
type Schedule []ScheduleEntry

// LiveAt returns the live stripe count at time t, rounded up to the
// nearest whole stripe. Times after the last covering interval hold at
// that interval's value at its own end.
func (s Schedule) LiveAt(t float64) int {
	for _, e := range s {
		if t >= e.Start && t < e.End {
			return int(math.Ceil(float64(e.Count) + e.Rate*(t-e.Start)))
		}
	}
	if len(s) == 0 {
		return 0
	}
	last := s[len(s)-1]
	return int(math.Ceil(float64(last.Count) + last.Rate*(last.End-last.Start)))
}

// LiveStripeSeconds integrates LiveAt over [0, horizon) at the given
// step, for PUA's denominator (Σ live_stripes(t)·dt). A nil Schedule
// degenerates to the constant staticCount·horizon product.
func (s Schedule) LiveStripeSeconds(horizon, step float64, staticCount int) float64 {
	if len(s) == 0 {
		return float64(staticCount) * horizon
	}
	var total float64
	for t := 0.0; t < horizon; t += step {
		dt := step
		if t+dt > horizon {
			dt = horizon - t
		}
		total += float64(s.LiveAt(t)) * dt
	}
	return total
}
