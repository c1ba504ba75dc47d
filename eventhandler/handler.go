// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package eventhandler implements the core state machine (spec.md
// §4.4): it dequeues events, transitions per-stripe chunk state, and
// accumulates the Result metrics. The RAFI overlay (spec.md §4.6) and
// eager recovery (spec.md §4.4) live alongside it in the same package
// since both hang off the same stripe/disk bookkeeping.
package eventhandler

import (
	"fmt"

	"go.uber.org/zap"

	"storj.io/crsim/contention"
	"storj.io/crsim/drs"
	"storj.io/crsim/eventqueue"
	"storj.io/crsim/rng"
	"storj.io/crsim/topology"
)

type diskPlacement struct {
	stripe   int
	position int
}

// Handler drives one trial's stripe population through its event
// sequence to produce a Result.
type Handler struct {
	log    *zap.Logger
	scheme drs.Scheme
	tree   *topology.Tree
	r      *rng.Source
	queue  *eventqueue.Queue
	cfg    Config
	result *Result

	stripes   []*Stripe
	diskIndex map[topology.ID][]diskPlacement

	contention *contention.Model
	diskProjected map[topology.ID]float64

	currentRecoveryBandwidth float64
	degradedCount            int

	rafi *rafiTracker
	now  float64
}

// New builds a Handler for the given placement (one Group per stripe,
// position i -> disk).
func New(log *zap.Logger, scheme drs.Scheme, tree *topology.Tree, r *rng.Source, queue *eventqueue.Queue, cfg Config, placements [][]topology.ID) *Handler {
	h := &Handler{
		log:           log,
		scheme:        scheme,
		tree:          tree,
		r:             r,
		queue:         queue,
		cfg:           cfg,
		result:        &Result{},
		diskIndex:     make(map[topology.ID][]diskPlacement),
		diskProjected: make(map[topology.ID]float64),
	}
	if !cfg.QueueDisable {
		h.contention = contention.New()
	}
	if len(cfg.DetectIntervals) > 0 {
		h.rafi = newRAFITracker()
	}

	h.stripes = make([]*Stripe, len(placements))
	for i, placement := range placements {
		s := newStripe(i, placement, len(placement))
		for pos := range s.State {
			s.State[pos] = drs.Normal
		}
		h.stripes[i] = s
		for pos, disk := range placement {
			h.diskIndex[disk] = append(h.diskIndex[disk], diskPlacement{stripe: i, position: pos})
		}
	}
	return h
}

// Result returns the accumulator built so far. Safe to call mid-run for
// progress reporting; the handler keeps the only live pointer otherwise.
func (h *Handler) Result() Result {
	snapshot := *h.result
	if h.contention != nil {
		snapshot.Queue = h.contention.Stats()
	}
	return snapshot
}

// Stripes exposes the stripe population for inspection (e.g. the
// perturbation layer re-placing stripes on scaling).
func (h *Handler) Stripes() []*Stripe { return h.stripes }

// Handle dequeues side effects for one event. now is ev.Time.
func (h *Handler) Handle(ev eventqueue.Event) error {
	if ev.Ignore {
		return nil
	}
	now := ev.Time
	h.now = now
	node := h.tree.Node(topology.ID(ev.Unit))

	switch ev.Kind {
	case eventqueue.Failure:
		return h.handleFailure(node, ev, now)
	case eventqueue.Recovered:
		return h.handleRecovered(node, ev, now)
	case eventqueue.LatentDefect:
		h.handleLatentDefect(node, now)
	case eventqueue.LatentRecovered:
		h.handleScrub(node, now)
	case eventqueue.EagerRecoveryStart:
		h.handleEagerStart(node, ev, now)
	case eventqueue.EagerRecoveryInstallment:
		h.handleEagerInstallment(ev, now)
	case eventqueue.RAFIRecovered:
		h.handleRAFIRecovered(ev, now)
	}
	return nil
}

func (h *Handler) handleFailure(node *topology.Node, ev eventqueue.Event, now float64) error {
	switch node.Kind {
	case topology.Machine:
		switch ev.Info {
		case eventqueue.Permanent:
			h.machinePermanentFailure(node, now)
		case eventqueue.ShortTransient, eventqueue.LongTransient:
			h.machineTransientFailure(node, ev, now)
		}
	case topology.Disk:
		h.diskFailure(node.ID, now)
	}
	return nil
}

func (h *Handler) handleRecovered(node *topology.Node, ev eventqueue.Event, now float64) error {
	switch node.Kind {
	case topology.Machine:
		switch ev.Info {
		case eventqueue.Permanent:
			if h.deferThroughContention(node, ev, now) {
				return nil
			}
			h.recoverDisks(node.Children, now)
		case eventqueue.ShortTransient, eventqueue.LongTransient:
			h.machineRecovered(node, now)
		case eventqueue.QueuedReissue:
			h.recoverDisks(node.Children, now)
		}
	case topology.Disk:
		if ev.Info == eventqueue.QueuedReissue {
			h.recoverDisks([]topology.ID{node.ID}, now)
			return nil
		}
		if h.deferThroughContention(node, ev, now) {
			return nil
		}
		h.diskRecovered(node.ID, now)
	}
	return nil
}

// deferThroughContention implements spec.md §4.5: a disk/node recovery
// completion is re-materialized as a queued request against the
// per-rack FIFO model, and a Recovered(..., info=4) is re-emitted at the
// request's effective completion time to bypass requeueing on the
// second pass. Returns true if the event was deferred (the caller must
// not apply the recovery now).
func (h *Handler) deferThroughContention(node *topology.Node, ev eventqueue.Event, now float64) bool {
	if h.contention == nil {
		return false
	}
	racks := h.crossRackParticipants(node)
	completion := h.contention.Enqueue(contentionRequest(now, racks, h.cfg.NominalRepairDuration))
	h.queue.Push(eventqueue.Event{Time: completion, Kind: eventqueue.Recovered, Unit: int(node.ID), Info: eventqueue.QueuedReissue})
	return true
}

func contentionRequest(now float64, racks []topology.ID, duration float64) contention.Request {
	return contention.Request{StartTime: now, Racks: racks, Duration: duration}
}

// crossRackParticipants returns the racks a repair for node draws
// helpers from: d distinct racks for regenerating codes, k otherwise
// (spec.md §4.5).
func (h *Handler) crossRackParticipants(node *topology.Node) []topology.ID {
	count := h.scheme.K()
	if msr, ok := h.scheme.(*drs.MSR); ok {
		count = msr.D()
	}
	racks := h.tree.Racks()
	if count > len(racks) {
		count = len(racks)
	}
	self := h.tree.Ancestor(node.ID, topology.Rack)
	out := make([]topology.ID, 0, count)
	out = append(out, self)
	for _, r := range racks {
		if len(out) >= count {
			break
		}
		if r != self {
			out = append(out, r)
		}
	}
	return out
}

// machinePermanentFailure implements spec.md §4.4's "On Failure(machine,
// info=3)": every stripe touching the machine's disks corrupts the
// position, and a stripe that is no longer repairable becomes Lost.
func (h *Handler) machinePermanentFailure(node *topology.Node, now float64) {
	for _, disk := range node.Children {
		h.corruptDisk(disk, now)
	}
}

func (h *Handler) diskFailure(disk topology.ID, now float64) {
	h.corruptDisk(disk, now)

	var projected float64
	for _, dp := range h.diskIndex[disk] {
		s := h.stripes[dp.stripe]
		if s.Lost {
			continue
		}
		if h.crossesThreshold(s) {
			projected += h.scheme.SingleRepair(s.State, dp.position)
		}
	}
	h.diskProjected[disk] = projected
	h.currentRecoveryBandwidth += projected
}

func (h *Handler) corruptDisk(disk topology.ID, now float64) {
	for _, dp := range h.diskIndex[disk] {
		s := h.stripes[dp.stripe]
		if s.Lost {
			continue
		}
		if s.State[dp.position] != drs.Corrupted {
			s.State[dp.position] = drs.Corrupted
			h.rafiNoteFailure(s, now+1e18)
		}
		h.settle(s, disk, now)
	}
}

func (h *Handler) machineTransientFailure(node *topology.Node, ev eventqueue.Event, now float64) {
	for _, disk := range node.Children {
		for _, dp := range h.diskIndex[disk] {
			s := h.stripes[dp.stripe]
			if s.Lost {
				continue
			}
			if s.State[dp.position] == drs.Normal {
				s.State[dp.position] = drs.Crashed
				h.rafiNoteFailure(s, ev.NextRecoveryTime)
			}
			h.settle(s, disk, now)
		}
	}
	if ev.Info == eventqueue.LongTransient {
		h.queue.Push(eventqueue.Event{Time: now, Kind: eventqueue.EagerRecoveryStart, Unit: int(node.ID), NextRecoveryTime: ev.NextRecoveryTime})
	}
}

func (h *Handler) machineRecovered(node *topology.Node, now float64) {
	for _, disk := range node.Children {
		for _, dp := range h.diskIndex[disk] {
			s := h.stripes[dp.stripe]
			if s.Lost {
				continue
			}
			switch s.State[dp.position] {
			case drs.Crashed:
				s.State[dp.position] = drs.Normal
				h.rafiNoteRecovery(s)
			case drs.Normal:
				h.result.markAnomalousAvailable()
				h.log.Warn("anomalous available", zap.Int("stripe", s.Index), zap.Int("position", dp.position))
			}
			h.settle(s, disk, now)
		}
	}
}

// recoverDisks implements "On Recovered(disk | machine, info=3)": every
// stripe whose degradation crosses the lazy-recovery threshold gets
// rebuilt now; everything else is left Corrupted until a later event
// crosses the threshold.
func (h *Handler) recoverDisks(disks []topology.ID, now float64) {
	for _, disk := range disks {
		h.diskRecovered(disk, now)
	}
}

func (h *Handler) diskRecovered(disk topology.ID, now float64) {
	h.currentRecoveryBandwidth -= h.diskProjected[disk]
	if h.currentRecoveryBandwidth < 0 {
		h.currentRecoveryBandwidth = 0
	}
	delete(h.diskProjected, disk)

	for _, dp := range h.diskIndex[disk] {
		s := h.stripes[dp.stripe]
		if s.Lost {
			continue
		}
		if s.State[dp.position] != drs.Corrupted {
			if s.State[dp.position] == drs.Normal {
				h.result.markAnomalousAvailable()
				h.log.Warn("anomalous available", zap.Int("stripe", s.Index), zap.Int("position", dp.position))
			}
			continue
		}
		if !h.crossesThreshold(s) && !h.recoveryProbabilityFires(s, now) {
			continue
		}
		h.rebuildAll(s, now)
	}
}

// rebuildAll performs a full parallel_repair over every currently lost
// position of s, per spec.md §4.4's recovery events.
func (h *Handler) rebuildAll(s *Stripe, now float64) {
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

// ApplyBlockCorruption marks the chunk at stripeIndex/position Corrupted
// before any event has run (spec.md §4.7's block failure), settling the
// stripe immediately so Lost/unavailability accounting reflects it from
// t=0.
func (h *Handler) ApplyBlockCorruption(stripeIndex, position int) {
	s := h.stripes[stripeIndex]
	if s.Lost || s.State[position] == drs.Corrupted {
		return
	}
	s.State[position] = drs.Corrupted
	h.rafiNoteFailure(s, 1e18)
	h.settle(s, s.Placement[position], 0)
}

// AddTRC charges an external repair-cost-equivalent directly, bypassing
// the DRS traffic-ratio scaling chargeTRC applies. Used by the
// perturbation layer's scaling load-balance migration (spec.md §4.7:
// "counted into TRC").
func (h *Handler) AddTRC(cost float64) {
	h.result.addTRC(cost)
}

func (h *Handler) chargeTRC(cost float64) {
	ratio := h.scheme.RepairTraffic(h.cfg.Hierarchical, h.cfg.Racks)
	if orc := h.scheme.ORC(); orc > 0 {
		ratio /= orc
	}
	h.result.addTRC(cost * ratio)
}

func (h *Handler) handleLatentDefect(node *topology.Node, now float64) {
	candidates := h.diskIndex[node.ID]
	if len(candidates) == 0 {
		return
	}
	dp := candidates[h.r.Intn(len(candidates))]
	s := h.stripes[dp.stripe]
	if s.Lost {
		return
	}
	switch s.State[dp.position] {
	case drs.Corrupted, drs.LatentError:
		h.result.LatentErrorsSkipped++
		return
	}
	s.State[dp.position] = drs.LatentError
	node.MarkLatentError(s.Index)
	h.rafiNoteFailure(s, now+1e18)
	h.settle(s, node.ID, now)
}

func (h *Handler) handleScrub(node *topology.Node, now float64) {
	for stripeIndex := range node.LSE {
		s := h.stripes[stripeIndex]
		pos := s.positionOf(node.ID)
		if s.Lost || pos < 0 || s.State[pos] != drs.LatentError {
			node.ClearLatentError(stripeIndex)
			continue
		}
		if !h.scheme.IsRepairable(s.State) {
			continue
		}
		cost := h.scheme.SingleRepair(s.State, pos)
		s.State[pos] = drs.Normal
		node.ClearLatentError(stripeIndex)
		h.rafiNoteRecovery(s)
		h.chargeTRC(cost)
		h.settle(s, node.ID, now)
	}
}

// settle recomputes the durability (Lost) and availability (interval
// open/close) bookkeeping for s after a state mutation.
func (h *Handler) settle(s *Stripe, disk topology.ID, now float64) {
	if s.Lost {
		return
	}
	s.noteSettled(now)

	readable := s.State.AvailableCount() >= h.scheme.K()
	wasDegraded := s.degraded
	s.degraded = h.crossesThreshold(s)
	if s.degraded && !wasDegraded {
		h.degradedCount++
	} else if !s.degraded && wasDegraded {
		h.degradedCount--
	}

	if !readable {
		if !s.unavailableOpen {
			s.openUnavailable(now)
			h.result.openUnavailability()
		}
	} else if dur, closed := s.closeUnavailable(now); closed {
		h.result.closeUnavailability(dur)
	}

	if !h.scheme.IsRepairable(s.State) {
		s.Lost = true
		cause := "topology failure"
		if disk != topology.None {
			cause = fmt.Sprintf("disk %d", int(disk))
		}
		if dur, closed := s.closeUnavailable(now); closed {
			h.result.closeUnavailability(dur)
		}
		h.result.markUndurable(s.Index, cause)
	}
}

// baseThreshold returns T_eff without the probabilistic recovery-
// probability bump: the base recovery_threshold unless the global
// degraded count has pushed the system into pure availability-based
// lazy rebuild, in which case T_eff relaxes to n-1.
func (h *Handler) baseThreshold(s *Stripe) int {
	tEff := h.cfg.RecoveryThreshold
	if h.cfg.LazyOnlyAvailable && float64(h.degradedCount) > h.cfg.MaxDegradedSlices*float64(len(h.stripes)) {
		tEff = len(s.Placement) - 1
	}
	return tEff
}

// crossesThreshold implements the lazy-recovery threshold predicate
// (spec.md §4.4) against baseThreshold.
func (h *Handler) crossesThreshold(s *Stripe) bool {
	count := s.State.DurableCount()
	if h.cfg.AvailabilityCountsForRecovery {
		count = s.State.AvailableCount()
	}
	return count <= h.baseThreshold(s)
}

// recoveryProbabilityFires implements spec.md §4.4's probabilistic
// T_eff bump (originally `getAvailableLazyThreshold`): even when a
// stripe sits above the base threshold, a scheduled recovery firing at
// now may still rebuild it, drawn against
// Config.RecoveryProbability(time since the stripe first degraded).
// Only consulted at an actual scheduled-recovery decision, never from
// settle's per-mutation bookkeeping, so the draw happens once per
// firing rather than once per state change.
func (h *Handler) recoveryProbabilityFires(s *Stripe, now float64) bool {
	if h.cfg.RecoveryProbability == nil || !s.hasLoss {
		return false
	}
	elapsed := now - s.firstLossAt
	return h.r.Float64() < h.cfg.RecoveryProbability(elapsed)
}
