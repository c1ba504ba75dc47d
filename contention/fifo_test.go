// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package contention_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/crsim/contention"
	"storj.io/crsim/topology"
)

func TestEnqueueNoContentionRunsImmediately(t *testing.T) {
	m := contention.New()
	completion := m.Enqueue(contention.Request{StartTime: 10, Racks: []topology.ID{1, 2}, Duration: 5})
	require.Equal(t, 15.0, completion)
	require.Equal(t, 0, m.Stats().Queued())
}

func TestEnqueueSerializesSharedRack(t *testing.T) {
	m := contention.New()
	first := m.Enqueue(contention.Request{StartTime: 0, Racks: []topology.ID{1}, Duration: 10})
	require.Equal(t, 10.0, first)

	second := m.Enqueue(contention.Request{StartTime: 2, Racks: []topology.ID{1}, Duration: 4})
	require.Equal(t, 14.0, second)
	require.Equal(t, 1, m.Stats().Queued())
	require.InDelta(t, 8.0, m.Stats().MeanWait(), 1e-9)
}

func TestEnqueueDisjointRacksDoNotContend(t *testing.T) {
	m := contention.New()
	m.Enqueue(contention.Request{StartTime: 0, Racks: []topology.ID{1}, Duration: 10})
	second := m.Enqueue(contention.Request{StartTime: 1, Racks: []topology.ID{2}, Duration: 3})
	require.Equal(t, 4.0, second)
	require.Equal(t, 0, m.Stats().Queued())
}
