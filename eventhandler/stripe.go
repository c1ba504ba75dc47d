// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package eventhandler

import (
	"storj.io/crsim/drs"
	"storj.io/crsim/topology"
)

// Interval is one closed unavailability window, [Start, End).
type Interval struct {
	Start, End float64
}

// Stripe is the per-stripe mutable state the handler drives (spec.md
// §3's "Stripe (slice)").
type Stripe struct {
	Index     int
	Placement []topology.ID // position i -> disk id, len == n
	State     drs.Vector

	Lost bool

	Unavailable     []Interval
	unavailableOpen bool
	unavailableFrom float64

	// degraded is true whenever the stripe currently sits at or below
	// the lazy-recovery threshold, for the global degraded-count tally
	// that drives Config.LazyOnlyAvailable.
	degraded bool

	// hasLoss/firstLossAt track how long the stripe has continuously
	// carried at least one non-Normal chunk, for Config.RecoveryProbability's
	// time-since-failure argument (spec.md §4.4). Reset once every
	// position is back to Normal.
	hasLoss     bool
	firstLossAt float64
}

// noteSettled updates hasLoss/firstLossAt from the stripe's current
// state; called from settle after every mutation.
func (s *Stripe) noteSettled(now float64) {
	lossy := false
	for _, c := range s.State {
		if c != drs.Normal {
			lossy = true
			break
		}
	}
	if lossy && !s.hasLoss {
		s.hasLoss = true
		s.firstLossAt = now
	} else if !lossy {
		s.hasLoss = false
	}
}

func newStripe(index int, placement []topology.ID, n int) *Stripe {
	return &Stripe{
		Index:     index,
		Placement: placement,
		State:     make(drs.Vector, n),
	}
}

// reduced returns the state vector unchanged: drs.Scheme methods already
// count Corrupted and LatentError as lost and everything else as durable
// (spec.md §8's invariant relating state(s)=Lost to DRS.is_repairable).
func (s *Stripe) reduced() drs.Vector { return s.State }

func (s *Stripe) openUnavailable(now float64) {
	if !s.unavailableOpen {
		s.unavailableOpen = true
		s.unavailableFrom = now
	}
}

func (s *Stripe) closeUnavailable(now float64) (duration float64, closed bool) {
	if !s.unavailableOpen {
		return 0, false
	}
	s.unavailableOpen = false
	s.Unavailable = append(s.Unavailable, Interval{Start: s.unavailableFrom, End: now})
	return now - s.unavailableFrom, true
}

// positionOf returns the placement position of disk within the stripe,
// or -1 if the stripe does not touch that disk.
func (s *Stripe) positionOf(disk topology.ID) int {
	for i, id := range s.Placement {
		if id == disk {
			return i
		}
	}
	return -1
}
