package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Client is one websocket connection for an authenticated account.
type Client struct {
	AccountID int64

	conn *websocket.Conn
	send chan Event

	mu     sync.Mutex // guards closed and sends on the channel
	closed bool
}

func NewClient(accountID int64, conn *websocket.Conn) *Client {
	return &Client{
		AccountID: accountID,
		conn:      conn,
		send:      make(chan Event, 16),
	}
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// trySend queues an event for the write pump. Returns false when the
// client is already closed or its buffer is full. The mutex keeps the
// send from racing close on disconnect.
func (c *Client) trySend(ev Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

// ReadPump discards inbound frames (the stream is server → client only)
// and keeps the pong deadline fresh. Returns when the peer disconnects.
func (c *Client) ReadPump(hub *Hub) {
	defer hub.Unregister(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// WritePump serializes queued events onto the connection and pings the
// peer to keep intermediaries from closing it.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
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
