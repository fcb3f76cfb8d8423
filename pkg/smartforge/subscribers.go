package smartforge

import (
	"errors"
	"fmt"
	"sync"
)

// ErrChannelSubscriberClosed is returned when a channel subscriber receives a
// frame after being closed.
var ErrChannelSubscriberClosed = errors.New("smartforge: channel subscriber closed")

// FrameHandler is invoked once per tick, in tick order.
type FrameHandler func(*Frame) error

// NewCallbackSubscriber adapts a FrameHandler into a Subscriber so callers can
// plug arbitrary functions without defining structs.
func NewCallbackSubscriber(name string, fn FrameHandler) Subscriber {
	if name == "" {
		name = "callback"
	}
	return &callbackSubscriber{name: name, fn: fn}
}

// NewChannelSubscriber exposes frames via a channel; it returns the
// subscriber, the read-only channel, and a close function that the caller
// should invoke during shutdown. A full channel only stalls this subscriber.
func NewChannelSubscriber(name string, buffer int) (Subscriber, <-chan *Frame, func()) {
	if name == "" {
		name = "channel"
	}
	if buffer < 0 {
		buffer = 0
	}
	s := &channelSubscriber{
		name:   name,
		ch:     make(chan *Frame, buffer),
		closed: make(chan struct{}),
	}
	return s, s.ch, s.close
}

type callbackSubscriber struct {
	name string
	fn   FrameHandler
}

func (s *callbackSubscriber) Deliver(f *Frame) error {
	if s.fn == nil {
		return fmt.Errorf("callback subscriber %q: nil handler", s.name)
	}
	if f == nil {
		return nil
	}
	return s.fn(f)
}

func (s *callbackSubscriber) Name() string { return s.name }

type channelSubscriber struct {
	name   string
	ch     chan *Frame
	closed chan struct{}
	mu     sync.RWMutex
	once   sync.Once
}

func (s *channelSubscriber) Deliver(f *Frame) error {
	if f == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	select {
	case <-s.closed:
		return ErrChannelSubscriberClosed
	default:
	}

	select {
	case <-s.closed:
		return ErrChannelSubscriberClosed
	case s.ch <- f:
		return nil
	}
}

func (s *channelSubscriber) Name() string { return s.name }

func (s *channelSubscriber) close() {
	s.once.Do(func() {
		close(s.closed)
		// wait for in-flight sends before closing the data channel
		s.mu.Lock()
		close(s.ch)
		s.mu.Unlock()
	})
}
