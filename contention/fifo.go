// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Package contention implements the Bandwidth Contention model (spec.md
// §4.5): a per-rack FIFO that serializes repair traffic crossing the
// same rack set, advancing a queued request's completion time to the
// latest moment its whole rack set is free.
package contention

import "storj.io/crsim/topology"

// Request is one queued recovery: it occupies every rack in Racks for
// Duration, starting no earlier than StartTime.
type Request struct {
	StartTime float64
	Racks     []topology.ID
	Duration  float64
}

// Model tracks, per rack, the time at which it next becomes free.
type Model struct {
	busyUntil map[topology.ID]float64
	stats     Stats
}

// New returns an empty contention model.
func New() *Model {
	return &Model{busyUntil: make(map[topology.ID]float64)}
}

// Enqueue admits req and returns its effective completion time: the
// latest moment at which every rack in req.Racks is serviceable, plus
// req.Duration (spec.md §4.5, "advances the request's effective
// completion time to the latest moment at which its rack set is
// serviceable given earlier requests in-flight").
func (m *Model) Enqueue(req Request) float64 {
	ready := req.StartTime
	for _, rack := range req.Racks {
		if busy, ok := m.busyUntil[rack]; ok && busy > ready {
			ready = busy
		}
	}
	completion := ready + req.Duration
	for _, rack := range req.Racks {
		m.busyUntil[rack] = completion
	}

	wait := ready - req.StartTime
	if wait > 0 {
		m.stats.record(wait)
	}
	return completion
}

// Stats returns a snapshot of queue-wait statistics gathered so far.
func (m *Model) Stats() Stats { return m.stats }
