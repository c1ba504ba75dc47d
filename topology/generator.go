// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package topology

import (
	"storj.io/crsim/eventqueue"
	"storj.io/crsim/rng"
)

// MachineClassifier assigns the machine-failure `info` discriminant
// (spec.md §4.2) to a drawn failure of the given duration.
type MachineClassifier func(r *rng.Source, duration float64) eventqueue.Info

// DefaultClassifier builds the classifier spec.md §5 describes: a
// machine's fail_timeout separates short- from long-transient failures,
// and permanentProbability is the chance any given failure is instead a
// permanent node loss.
func DefaultClassifier(failTimeout, permanentProbability float64) MachineClassifier {
	return func(r *rng.Source, duration float64) eventqueue.Info {
		if permanentProbability > 0 && r.Float64() < permanentProbability {
			return eventqueue.Permanent
		}
		if duration <= failTimeout {
			return eventqueue.ShortTransient
		}
		return eventqueue.LongTransient
	}
}

// Generate walks the whole tree and produces every node's natural
// (Failure, Recovered) pair sequence over [0, horizon), disk-specific
// LatentDefect/LatentRecovered events, and any injected failure
// intervals that never overlapped a natural window (spec.md §4.2).
func Generate(t *Tree, horizon float64, r *rng.Source, classify MachineClassifier) []eventqueue.Event {
	var events []eventqueue.Event
	t.Walk(func(n *Node) {
		events = append(events, generateNode(n, horizon, r, classify)...)
	})
	return events
}

func generateNode(n *Node, horizon float64, r *rng.Source, classify MachineClassifier) []eventqueue.Event {
	if n.Kind == Root || n.Failure == nil || n.Recovery == nil {
		return nil
	}

	var events []eventqueue.Event
	cursor := 0.0
	for cursor < horizon {
		failAt := cursor + n.Failure.Sample(r)
		if failAt >= horizon {
			break
		}
		recoverAt := failAt + n.Recovery.Sample(r)

		lost := false
		if snapStart, snapEnd, snapLost, ok := n.snapOrNil(failAt, recoverAt); ok {
			failAt, recoverAt, lost = snapStart, snapEnd, snapLost
		}

		info := machineInfo(n, r, classify, lost, recoverAt-failAt)
		events = append(events,
			eventqueue.Event{Time: failAt, Kind: eventqueue.Failure, Unit: int(n.ID), Info: info, NextRecoveryTime: recoverAt},
			eventqueue.Event{Time: recoverAt, Kind: eventqueue.Recovered, Unit: int(n.ID), Info: info},
		)
		n.LastFailureTime = failAt
		cursor = recoverAt
	}

	for _, iv := range n.unconsumedNonOverlapping() {
		info := machineInfo(n, r, classify, iv.Lost, iv.End-iv.Start)
		events = append(events,
			eventqueue.Event{Time: iv.Start, Kind: eventqueue.Failure, Unit: int(n.ID), Info: info, NextRecoveryTime: iv.End},
			eventqueue.Event{Time: iv.End, Kind: eventqueue.Recovered, Unit: int(n.ID), Info: info},
		)
	}

	if n.Kind == Disk {
		events = append(events, generateDiskEvents(n, horizon, r)...)
	}
	return events
}

func machineInfo(n *Node, r *rng.Source, classify MachineClassifier, lost bool, duration float64) eventqueue.Info {
	if n.Kind != Machine {
		return eventqueue.NoInfo
	}
	if lost {
		return eventqueue.Permanent
	}
	return classify(r, duration)
}

// generateDiskEvents draws LatentDefect events from the disk's latent
// generator and LatentRecovered (scrub) events from its scrub
// generator, independently of the disk's failure windows; the handler
// itself treats a defect landing on an already-lost chunk as a no-op
// (spec.md §4.4), so no reconciliation against failure windows is
// needed here.
func generateDiskEvents(n *Node, horizon float64, r *rng.Source) []eventqueue.Event {
	var events []eventqueue.Event
	if n.LatentGen != nil {
		for cursor := n.LatentGen.Sample(r); cursor < horizon; cursor += n.LatentGen.Sample(r) {
			events = append(events, eventqueue.Event{Time: cursor, Kind: eventqueue.LatentDefect, Unit: int(n.ID)})
		}
	}
	if n.ScrubGen != nil {
		for cursor := n.ScrubGen.Sample(r); cursor < horizon; cursor += n.ScrubGen.Sample(r) {
			events = append(events, eventqueue.Event{Time: cursor, Kind: eventqueue.LatentRecovered, Unit: int(n.ID)})
		}
	}
	return events
}
