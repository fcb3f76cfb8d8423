package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// Message is the envelope written to dashboard connections.
type Message struct {
	Type      string        `json:"type"`
	Frame     *domain.Frame `json:"frame"`
	Timestamp time.Time     `json:"timestamp"`
}

// Hub keeps the connected dashboards and fans every frame out to them.
// It is attached to the dispatcher as an ordinary subscriber.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu  sync.RWMutex
	obs ports.Observability

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(ctx context.Context, obs ports.Observability) *Hub {
	hubCtx, cancel := context.WithCancel(ctx)
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		obs:        obs,
		ctx:        hubCtx,
		cancel:     cancel,
	}
}

// Run serves register, unregister and broadcast requests until Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.obs.SetGauge("smartforge_stream_clients", float64(n))
			h.obs.LogInfo("stream_client_connected", ports.Field{Key: "client_id", Value: client.id})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.obs.SetGauge("smartforge_stream_clients", float64(n))

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// slow dashboard, drop the connection
					close(client.send)
					delete(h.clients, client)
					h.obs.LogWarn("stream_client_evicted", ports.Field{Key: "client_id", Value: client.id})
				}
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.obs.SetGauge("smartforge_stream_clients", float64(n))
		}
	}
}

func (h *Hub) Stop() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.obs.SetGauge("smartforge_stream_clients", 0)
}

// Deliver encodes the frame and queues it for every connected dashboard.
func (h *Hub) Deliver(f *domain.Frame) error {
	data, err := json.Marshal(Message{Type: "frame", Frame: f, Timestamp: f.Timestamp})
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
		return nil
	case <-h.ctx.Done():
		return h.ctx.Err()
	}
}

func (h *Hub) Name() string { return "websocket-hub" }

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var _ ports.Subscriber = (*Hub)(nil)
