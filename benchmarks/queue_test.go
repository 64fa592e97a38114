package benchmarks

import (
	"testing"

	"github.com/randalmurphal/kitbridge/pkg/kitbridge/event"
	"github.com/randalmurphal/kitbridge/pkg/kitbridge/queue"
)

func benchRecord(b *testing.B) *event.Record {
	b.Helper()
	rec, err := event.NewRecord("page", "user", map[string]string{"tier": "gold"})
	if err != nil {
		b.Fatal(err)
	}
	return rec
}

// BenchmarkPending_Enqueue enqueues below capacity.
func BenchmarkPending_Enqueue(b *testing.B) {
	rec := benchRecord(b)
	q := queue.NewPending(b.N + 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Enqueue(rec)
	}
}

// BenchmarkPending_EnqueueEvicting enqueues into a full queue.
func BenchmarkPending_EnqueueEvicting(b *testing.B) {
	rec := benchRecord(b)
	q := queue.NewPending(queue.DefaultCapacity)
	for i := 0; i < queue.DefaultCapacity; i++ {
		q.Enqueue(rec)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Enqueue(rec)
	}
}

// BenchmarkPending_DrainAll fills and drains the default capacity.
func BenchmarkPending_DrainAll(b *testing.B) {
	rec := benchRecord(b)
	q := queue.NewPending(queue.DefaultCapacity)
	sink := func(*event.Record) {}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < queue.DefaultCapacity; j++ {
			q.Enqueue(rec)
		}
		q.DrainAll(sink)
	}
}
