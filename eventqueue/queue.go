// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

package eventqueue

import "container/heap"

// Queue is a stable min-heap of Events, ordered by (Time, Seq). Seq is
// assigned at Push time in insertion order, so ties at the same
// timestamp resolve deterministically to insertion order, per spec.md
// §5.
type Queue struct {
	items  eventHeap
	nextSeq uint64
}

// New returns an empty Queue.
func New() *Queue {
	q := &Queue{}
	heap.Init(&q.items)
	return q
}

// Push inserts ev, stamping it with the next insertion sequence number.
func (q *Queue) Push(ev Event) {
	ev.Seq = q.nextSeq
	q.nextSeq++
	heap.Push(&q.items, ev)
}

// Pop removes and returns the earliest event. ok is false if the queue
// is empty.
func (q *Queue) Pop() (ev Event, ok bool) {
	if q.items.Len() == 0 {
		return Event{}, false
	}
	return heap.Pop(&q.items).(Event), true
}

// Len returns the number of pending events.
func (q *Queue) Len() int { return q.items.Len() }

// Peek returns the earliest event without removing it.
func (q *Queue) Peek() (ev Event, ok bool) {
	if q.items.Len() == 0 {
		return Event{}, false
	}
	return q.items[0], true
}

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	return h[i].Seq < h[j].Seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
