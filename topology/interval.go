// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package topology

// FailureInterval is an externally scheduled outage injected onto a
// node before simulation start (spec.md §3, §4.2, §4.7). Lost marks a
// destructive interval (chunks become Corrupted) vs. a transient one
// (chunks become Crashed).
type FailureInterval struct {
	Start, End float64
	Lost       bool
}

// Inject appends a failure interval to node, to be consumed the first
// time it overlaps a natural failure window generated for that node
// (spec.md §3's Lifecycles: "Failure intervals: injected before
// simulation start, consumed by the generating node the first time they
// overlap a natural failure window").
func (n *Node) Inject(iv FailureInterval) {
	n.Injected = append(n.Injected, iv)
	n.injectedConsumed = append(n.injectedConsumed, false)
}

// overlaps reports whether [start,end) intersects iv.
func overlaps(start, end float64, iv FailureInterval) bool {
	return start < iv.End && iv.Start < end
}

// snapOrNil finds the first not-yet-consumed injected interval that
// overlaps [start, end), marks it consumed, and returns a window
// outward-snapped to cover it (spec.md §4.2: "the window's boundaries
// snap outward to cover the injected interval"). It returns ok=false if
// no unconsumed injected interval overlaps.
func (n *Node) snapOrNil(start, end float64) (snappedStart, snappedEnd float64, lost bool, ok bool) {
	for i := range n.Injected {
		if n.injectedConsumed[i] {
			continue
		}
		iv := n.Injected[i]
		if !overlaps(start, end, iv) {
			continue
		}
		n.injectedConsumed[i] = true
		if iv.Start < start {
			start = iv.Start
		}
		if iv.End > end {
			end = iv.End
		}
		return start, end, iv.Lost, true
	}
	return start, end, false, false
}

// unconsumedNonOverlapping returns every remaining injected interval
// that never overlapped a natural failure window, for emission as
// additional (Failure, Recovered) pairs once generation completes.
func (n *Node) unconsumedNonOverlapping() []FailureInterval {
	var out []FailureInterval
	for i, iv := range n.Injected {
		if !n.injectedConsumed[i] {
			out = append(out, iv)
		}
	}
	return out
}
