package queue

import (
	"testing"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
)

func TestMemQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewMemQueue(4)

	f1 := &domain.Frame{Seq: 1}
	f2 := &domain.Frame{Seq: 2}

	if !q.Enqueue(f1) || !q.Enqueue(f2) {
		t.Fatalf("expected successful enqueue")
	}

	batch := q.DequeueBatch(1)
	if len(batch) != 1 || batch[0].Seq != 1 {
		t.Fatalf("unexpected first batch: %+v", batch)
	}

	remaining := q.DequeueBatch(10)
	if len(remaining) != 1 || remaining[0].Seq != 2 {
		t.Fatalf("unexpected second batch: %+v", remaining)
	}

	if q.Len() != 0 {
		t.Fatalf("queue should be empty, got %d", q.Len())
	}
	if q.DequeueBatch(1) != nil {
		t.Fatalf("expected nil batch from empty queue")
	}
}

func TestMemQueueCapacity(t *testing.T) {
	q := NewMemQueue(2)

	if !q.Enqueue(&domain.Frame{Seq: 1}) || !q.Enqueue(&domain.Frame{Seq: 2}) {
		t.Fatalf("expected enqueue within capacity")
	}
	if q.Enqueue(&domain.Frame{Seq: 3}) {
		t.Fatalf("enqueue should fail when capacity exceeded")
	}

	q.DequeueBatch(1)
	if !q.Enqueue(&domain.Frame{Seq: 4}) {
		t.Fatalf("expected enqueue to succeed after dequeue")
	}
	got := q.DequeueBatch(0)
	if len(got) != 2 || got[0].Seq != 2 || got[1].Seq != 4 {
		t.Fatalf("expected frames 2 and 4 in order, got %+v", got)
	}
}
