// Package queue buffers records while the destination client is unavailable.
package queue

import (
	"container/list"
	"sync"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/event"
)

// DefaultCapacity is the number of records held before the oldest is evicted.
const DefaultCapacity = 10

// Pending is a thread-safe bounded FIFO of records. When full, Enqueue
// evicts the oldest record; the newest is never dropped.
type Pending struct {
	mu       sync.Mutex
	list     *list.List
	capacity int
}

// NewPending creates a queue holding at most capacity records.
// A capacity below 1 uses DefaultCapacity.
func NewPending(capacity int) *Pending {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Pending{list: list.New(), capacity: capacity}
}

// Capacity returns the queue bound.
func (q *Pending) Capacity() int {
	return q.capacity
}

// Enqueue appends rec at the tail. If the queue then exceeds its capacity
// the head is removed and returned with evicted=true.
func (q *Pending) Enqueue(rec *event.Record) (*event.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.PushBack(rec)
	if q.list.Len() <= q.capacity {
		return nil, false
	}
	front := q.list.Front()
	q.list.Remove(front)
	return front.Value.(*event.Record), true
}

// Dequeue removes and returns the head record.
// It returns false if the queue is empty.
func (q *Pending) Dequeue() (*event.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.list.Len() == 0 {
		return nil, false
	}
	front := q.list.Front()
	q.list.Remove(front)
	return front.Value.(*event.Record), true
}

// DrainAll removes records head to tail, passing each to sink, until the
// queue is empty. Emptiness is re-checked after every removal, so records
// enqueued by sink or by other goroutines during the drain are drained too.
// The lock is not held while sink runs. Returns the number drained.
func (q *Pending) DrainAll(sink func(*event.Record)) int {
	n := 0
	for {
		rec, ok := q.Dequeue()
		if !ok {
			return n
		}
		sink(rec)
		n++
	}
}

// IsEmpty reports whether the queue has no records.
func (q *Pending) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len() == 0
}

// Len returns the number of records currently queued.
func (q *Pending) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len()
}

// Clear removes all records.
func (q *Pending) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.Init()
}

// Snapshot returns the queued records in order without removing them.
func (q *Pending) Snapshot() []*event.Record {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*event.Record, 0, q.list.Len())
	for e := q.list.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*event.Record))
	}
	return out
}
