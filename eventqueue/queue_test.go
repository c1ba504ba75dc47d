// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package eventqueue_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"storj.io/crsim/eventqueue"
)

func TestQueueOrdersByTimeThenInsertion(t *testing.T) {
	q := eventqueue.New()
	q.Push(eventqueue.Event{Time: 5, Unit: 1})
	q.Push(eventqueue.Event{Time: 1, Unit: 2})
	q.Push(eventqueue.Event{Time: 1, Unit: 3})
	q.Push(eventqueue.Event{Time: 3, Unit: 4})

	var order []int
	for q.Len() > 0 {
		ev, ok := q.Pop()
		require.True(t, ok)
		order = append(order, ev.Unit)
	}

	require.Equal(t, []int{2, 3, 4, 1}, order)
}

func TestQueueEmptyPop(t *testing.T) {
	q := eventqueue.New()
	_, ok := q.Pop()
	require.False(t, ok)
}
