package queue

import (
	"sync"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// MemQueue is a bounded in-memory frame queue that preserves tick order.
type MemQueue struct {
	mu   sync.Mutex
	data []*domain.Frame
	cap  int
}

func NewMemQueue(capacity int) *MemQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemQueue{
		data: make([]*domain.Frame, 0, capacity),
		cap:  capacity,
	}
}

func (q *MemQueue) Enqueue(f *domain.Frame) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) >= q.cap {
		return false
	}
	q.data = append(q.data, f)
	return true
}

func (q *MemQueue) DequeueBatch(max int) []*domain.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return nil
	}
	if max <= 0 || max > len(q.data) {
		max = len(q.data)
	}
	out := make([]*domain.Frame, max)
	copy(out, q.data[:max])
	clear(q.data[:max])
	q.data = append(q.data[:0], q.data[max:]...)
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

var _ ports.FrameQueue = (*MemQueue)(nil)
