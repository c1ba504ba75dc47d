// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package drs implements the Data Redundancy Scheme family: pure
// functions over a stripe's chunk-state vector that decide repairability
// and repair cost for RS, LRC, XORBAS, MSR, DRC, and DOUBLER codes.
package drs

import (
	"github.com/zeebo/errs"
)

// Error is the error class for invalid scheme parameters.
var Error = errs.Class("drs")

// State is a chunk-state value for one position in a stripe.
type State int

// Chunk states, as named in spec.md §3.
const (
	Normal State = iota
	Crashed
	Corrupted
	LatentError
)

// Lost reports whether a single chunk state counts as lost for
// repairability purposes (Corrupted and LatentError both do).
func (s State) Lost() bool {
	return s == Corrupted || s == LatentError
}

// Available reports whether a chunk is both durable and accessible now.
func (s State) Available() bool {
	return s == Normal
}

// Durable reports whether a chunk still holds its data, even if the data
// is temporarily inaccessible (Crashed).
func (s State) Durable() bool {
	return s == Normal || s == Crashed
}

// Vector is the per-chunk state of one stripe, length n.
type Vector []State

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// AvailableCount returns the count of Normal chunks.
func (v Vector) AvailableCount() int {
	n := 0
	for _, s := range v {
		if s.Available() {
			n++
		}
	}
	return n
}

// DurableCount returns the count of Normal+Crashed chunks.
func (v Vector) DurableCount() int {
	n := 0
	for _, s := range v {
		if s.Durable() {
			n++
		}
	}
	return n
}

// LostCount returns the count of Corrupted+LatentError chunks.
func (v Vector) LostCount() int {
	n := 0
	for _, s := range v {
		if s.Lost() {
			n++
		}
	}
	return n
}

// Scheme is a Data Redundancy Scheme: a pure function over a stripe's
// chunk-state vector. Implementations must not retain the Vector passed
// to any method.
type Scheme interface {
	// Name returns a human-readable scheme identifier, e.g. "RS(14,10)".
	Name() string

	// N is the stripe width (total chunks).
	N() int

	// K is the number of chunks sufficient to reconstruct the data.
	K() int

	// IsMDS reports whether the scheme is Maximum Distance Separable
	// (repairable whenever the durable count is at least K).
	IsMDS() bool

	// RC is the normal (non-optimal) repair cost, in chunk-equivalents.
	RC() float64

	// ORC is the scheme's optimal repair cost, in chunk-equivalents.
	ORC() float64

	// IsRepairable reports whether state can still be reconstructed.
	IsRepairable(state Vector) bool

	// SingleRepair returns the cost, in chunk-equivalents, of rebuilding
	// exactly the chunk at index.
	SingleRepair(state Vector, index int) float64

	// ParallelRepair returns the cost of rebuilding every Corrupted and
	// LatentError chunk in one pass (and Crashed too, unless onlyLost).
	ParallelRepair(state Vector, onlyLost bool) float64

	// RepairTraffic returns the repair-cost-to-bandwidth ratio charged
	// per repaired chunk. hierarchical/racks describe the placement the
	// stripe lives under; most schemes ignore them and just return ORC.
	RepairTraffic(hierarchical bool, racks int) float64
}

// reducedRepairable maps {Corrupted, LatentError} -> lost and everything
// else -> normal, then asks whether at least k survive. This is the
// shared MDS repairability test (spec.md §8's "reduced_state" law) used
// by RS, MSR, and DRC.
func reducedRepairable(state Vector, k int) bool {
	return state.DurableCount() >= k
}
