// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package eventhandler

import (
	"math"

	"storj.io/crsim/drs"
	"storj.io/crsim/eventqueue"
	"storj.io/crsim/topology"
)

// handleEagerStart implements spec.md §4.4's "On EagerRecoveryStart
// (machine)": it computes a bandwidth budget for the remaining transient
// window (available bandwidth times remaining time, in chunks) and
// schedules one EagerRecoveryInstallment per affected chunk up to that
// budget, spaced evenly across the window in batches of
// Config.InstallmentSize; chunks beyond the budget are not scheduled.
func (h *Handler) handleEagerStart(node *topology.Node, ev eventqueue.Event, now float64) {
	available := h.cfg.EagerBandwidthCap - h.currentRecoveryBandwidth
	remaining := ev.NextRecoveryTime - now
	if available <= 0 || remaining <= 0 {
		return
	}

	var targets []eventqueue.Event
	for _, disk := range node.Children {
		for _, dp := range h.diskIndex[disk] {
			s := h.stripes[dp.stripe]
			if s.Lost || s.State[dp.position] != drs.Crashed {
				continue
			}
			targets = append(targets, eventqueue.Event{Unit: int(disk), StripeIndex: dp.stripe})
		}
	}
	budget := int(math.Floor(available * remaining))
	if len(targets) > budget {
		targets = targets[:budget]
	}
	if len(targets) == 0 {
		return
	}

	installmentSize := h.cfg.InstallmentSize
	if installmentSize <= 0 {
		installmentSize = 1
	}
	installments := int(math.Ceil(float64(len(targets)) / float64(installmentSize)))
	spacing := remaining / float64(installments)

	for i, target := range targets {
		batch := i / installmentSize
		target.Time = now + float64(batch+1)*spacing
		target.Kind = eventqueue.EagerRecoveryInstallment
		h.queue.Push(target)
	}
}

// handleEagerInstallment speculatively rebuilds one stripe's crashed
// chunk ahead of the machine's natural recovery, so the eventual
// Recovered event has nothing left to restore on that position.
func (h *Handler) handleEagerInstallment(ev eventqueue.Event, now float64) {
	s := h.stripes[ev.StripeIndex]
	if s.Lost {
		return
	}
	disk := topology.ID(ev.Unit)
	pos := s.positionOf(disk)
	if pos < 0 || s.State[pos] != drs.Crashed {
		return
	}
	if !h.scheme.IsRepairable(s.State) {
		return
	}
	cost := h.scheme.SingleRepair(s.State, pos)
	s.State[pos] = drs.Normal
	h.rafiNoteRecovery(s)
	h.chargeTRC(cost)
	h.settle(s, topology.None, now)
}
