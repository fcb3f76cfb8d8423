package stream

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client is one dashboard connection. Dashboards only listen; anything they
// send is read and discarded so control frames keep flowing.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	id   string
}

func NewClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, 16),
		hub:  hub,
		id:   id,
	}
}

func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.obs.LogWarn("stream_client_read_error",
					ports.Field{Key: "client_id", Value: c.id},
					ports.Field{Key: "error", Value: err.Error()})
			}
			return
		}
	}
}

// WritePump writes one frame per websocket message and pings the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
