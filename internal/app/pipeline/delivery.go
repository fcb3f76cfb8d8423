package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/queue"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// ErrDispatcherClosed is returned when subscribing after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Dispatcher fans every published frame out to its subscribers. Each
// subscriber has its own bounded FIFO and pump goroutine, so a slow consumer
// only ever delays itself; frames reach every subscriber in tick order.
type Dispatcher struct {
	pol ports.Policy
	obs ports.Observability

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

type subscription struct {
	sub    ports.Subscriber
	q      ports.FrameQueue
	wake   chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

func NewDispatcher(pol ports.Policy, obs ports.Observability) *Dispatcher {
	return &Dispatcher{
		pol:  pol,
		obs:  obs,
		subs: make(map[*subscription]struct{}),
	}
}

// Subscribe attaches sub and returns a function that detaches it after the
// frames already queued for it have been delivered.
func (d *Dispatcher) Subscribe(sub ports.Subscriber) (func(), error) {
	if sub == nil {
		return nil, fmt.Errorf("subscriber is nil")
	}
	s := &subscription{
		sub:    sub,
		q:      queue.NewMemQueue(d.pol.MaxQueueLen),
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrDispatcherClosed
	}
	d.subs[s] = struct{}{}
	n := len(d.subs)
	d.mu.Unlock()

	d.obs.SetGauge("smartforge_subscribers", float64(n))
	d.obs.LogInfo("subscriber_attached", ports.Field{Key: "subscriber", Value: sub.Name()})

	go d.pump(s)

	return func() { d.detach(s) }, nil
}

// Publish queues f for every subscriber according to the delivery policy.
func (d *Dispatcher) Publish(f *domain.Frame) {
	d.mu.Lock()
	subs := make([]*subscription, 0, len(d.subs))
	for s := range d.subs {
		subs = append(subs, s)
	}
	d.mu.Unlock()

	for _, s := range subs {
		if !enqueueWithPolicy(s.q, f, d.pol, d.obs) {
			d.obs.IncCounter("smartforge_frames_dropped_total", 1)
			d.obs.LogWarn("frame_dropped",
				ports.Field{Key: "subscriber", Value: s.sub.Name()},
				ports.Field{Key: "seq", Value: f.Seq})
			continue
		}
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

// Close drains and stops every subscriber, respecting ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	subs := make([]*subscription, 0, len(d.subs))
	for s := range d.subs {
		subs = append(subs, s)
	}
	d.subs = make(map[*subscription]struct{})
	d.mu.Unlock()

	d.obs.SetGauge("smartforge_subscribers", 0)
	for _, s := range subs {
		s.stop()
	}
	for _, s := range subs {
		select {
		case <-s.doneCh:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Len reports the number of attached subscribers.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

func (d *Dispatcher) detach(s *subscription) {
	d.mu.Lock()
	delete(d.subs, s)
	n := len(d.subs)
	d.mu.Unlock()

	d.obs.SetGauge("smartforge_subscribers", float64(n))
	s.stop()
	<-s.doneCh
}

func (s *subscription) stop() {
	s.once.Do(func() { close(s.stopCh) })
}

func (d *Dispatcher) pump(s *subscription) {
	defer close(s.doneCh)
	idle := d.pol.IdleSleep
	if idle <= 0 {
		idle = 5 * time.Millisecond
	}

	for {
		batch := s.q.DequeueBatch(d.pol.MaxBatchSize)
		if len(batch) == 0 {
			select {
			case <-s.stopCh:
				if s.q.Len() == 0 {
					return
				}
			case <-s.wake:
			case <-time.After(idle):
			}
			continue
		}

		for _, f := range batch {
			if err := s.sub.Deliver(f); err != nil {
				d.obs.LogError("subscriber_deliver_failed", err,
					ports.Field{Key: "subscriber", Value: s.sub.Name()},
					ports.Field{Key: "seq", Value: f.Seq})
			}
		}
	}
}

func enqueueWithPolicy(q ports.FrameQueue, f *domain.Frame, pol ports.Policy, obs ports.Observability) bool {
	sleep := pol.IdleSleep
	if sleep <= 0 {
		sleep = 5 * time.Millisecond
	}
	var deadline time.Time
	if pol.BlockTimeout > 0 {
		deadline = time.Now().Add(pol.BlockTimeout)
	}

	for {
		if ok := q.Enqueue(f); ok {
			return true
		}

		switch pol.OnQueueFull {
		case "block":
			if !deadline.IsZero() && time.Now().After(deadline) {
				obs.LogError("queue_block_timeout", fmt.Errorf("queue stayed full for %s", pol.BlockTimeout))
				return false
			}
			time.Sleep(sleep)
		case "drop":
			return false
		default:
			obs.LogError("queue_policy_invalid", fmt.Errorf("policy=%s", pol.OnQueueFull))
			return false
		}
	}
}
