// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package eventhandler

import (
	"storj.io/crsim/drs"
	"storj.io/crsim/eventqueue"
	"storj.io/crsim/topology"
)

// rafiTracker implements the RAFI adaptive recovery variant (spec.md
// §4.6): a per-stripe failed-chunk set and a per-failure-count detection
// interval. h.rafi is nil when RAFI is disabled; every method on it is
// written to tolerate a nil receiver so call sites don't need a guard.
type rafiTracker struct {
	states map[int]*rafiStripe
}

type rafiStripe struct {
	// deadlines holds, for each outstanding failure on this stripe, the
	// time at which it is expected to recover naturally. A failure with
	// no natural recovery (a permanent loss or a latent error) is
	// recorded with a deadline far beyond the simulation horizon, so it
	// always exceeds the detection threshold.
	deadlines []float64

	scheduled    bool
	scheduledFor float64
}

func newRAFITracker() *rafiTracker {
	return &rafiTracker{states: make(map[int]*rafiStripe)}
}

func (t *rafiTracker) clear(stripeIndex int) {
	if t == nil {
		return
	}
	delete(t.states, stripeIndex)
}

// rafiNoteFailure records a new outstanding failure on s with the given
// expected natural-recovery deadline and re-evaluates whether the
// stripe should enter (or escalate within) the RAFI set.
func (h *Handler) rafiNoteFailure(s *Stripe, deadline float64) {
	if h.rafi == nil {
		return
	}
	st := h.rafi.states[s.Index]
	if st == nil {
		st = &rafiStripe{}
		h.rafi.states[s.Index] = st
	}
	st.deadlines = append(st.deadlines, deadline)
	h.rafiRecompute(s.Index, st)
}

// rafiNoteRecovery removes one outstanding failure (the earliest
// recorded) from s's RAFI record, per "natural recovery of a
// contributing failure clears the stripe's entry" -- when the last
// failure clears, the entry is dropped outright.
func (h *Handler) rafiNoteRecovery(s *Stripe) {
	if h.rafi == nil {
		return
	}
	st := h.rafi.states[s.Index]
	if st == nil || len(st.deadlines) == 0 {
		return
	}
	st.deadlines = st.deadlines[1:]
	if len(st.deadlines) == 0 {
		delete(h.rafi.states, s.Index)
		return
	}
	h.rafiRecompute(s.Index, st)
}

func (h *Handler) rafiRecompute(stripeIndex int, st *rafiStripe) {
	f := len(st.deadlines)
	if f == 0 {
		return
	}
	threshold := h.cfg.detectInterval(f)

	now := h.now
	allExceed := true
	for _, d := range st.deadlines {
		if d-now < threshold {
			allExceed = false
			break
		}
	}
	if !allExceed {
		st.scheduled = false
		return
	}

	fireAt := now + threshold
	st.scheduled = true
	st.scheduledFor = fireAt
	h.queue.Push(eventqueue.Event{Time: fireAt, Kind: eventqueue.RAFIRecovered, StripeIndex: stripeIndex})
}

func (h *Handler) handleRAFIRecovered(ev eventqueue.Event, now float64) {
	if h.rafi == nil {
		return
	}
	st := h.rafi.states[ev.StripeIndex]
	if st == nil || !st.scheduled || st.scheduledFor != ev.Time {
		return // stale: superseded by escalation or already cleared
	}
	st.scheduled = false

	s := h.stripes[ev.StripeIndex]
	if s.Lost {
		return
	}
	if !h.scheme.IsRepairable(s.State) {
		return
	}
	cost := h.scheme.ParallelRepair(s.State, true)
	for pos, state := range s.State {
		if state.Lost() {
			s.State[pos] = drs.Normal
			h.tree.Node(s.Placement[pos]).ClearLatentError(s.Index)
		}
	}
	h.rafi.clear(s.Index)
	h.chargeTRC(cost)
	h.settle(s, topology.None, now)
}
