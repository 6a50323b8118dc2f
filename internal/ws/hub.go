// Package ws pushes reward events (practice accruals, withdrawals,
// cycle completions) to connected UI clients, keyed by account.
package ws

import (
	"sync"

	"vibelingo_backend/internal/logger"
)

type Hub struct {
	mu      sync.RWMutex
	clients map[int64][]*Client // account id → open connections
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64][]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.AccountID] = append(h.clients[c.AccountID], c)
	h.mu.Unlock()

	logger.Debug("ws client connected", "account_id", c.AccountID)
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	conns := h.clients[c.AccountID]
	for i, other := range conns {
		if other == c {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(h.clients, c.AccountID)
	} else {
		h.clients[c.AccountID] = conns
	}
	h.mu.Unlock()

	c.close()
}

// Notify sends an event to every open connection of the account.
// Slow clients are dropped rather than blocking the caller.
func (h *Hub) Notify(accountID int64, event string, payload any) {
	h.mu.RLock()
	conns := append([]*Client(nil), h.clients[accountID]...)
	h.mu.RUnlock()

	ev := Event{Type: event, Payload: payload}
	for _, c := range conns {
		if !c.trySend(ev) {
			logger.Warn("ws client slow or gone, dropping", "account_id", accountID)
			h.Unregister(c)
		}
	}
}
