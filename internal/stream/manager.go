// Package stream fans decoded trade events out to WebSocket subscribers
// while a capture is being parsed.
package stream

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// TradeMsg is the JSON payload broadcast for one reconstructed trade.
type TradeMsg struct {
	Ticker      string `json:"ticker"`
	StockLocate uint16 `json:"stockLocate"`
	Price       string `json:"price"` // 4-decimal string
	Shares      uint32 `json:"shares"`
	Timestamp   uint64 `json:"timestamp"` // nanoseconds since midnight
}

// Manager handles client registration, subscriptions, and trade fan-out.
type Manager struct {
	mu         sync.RWMutex
	clients    map[uint64]*Client
	bufferSize int
}

// NewManager creates a stream manager.
func NewManager(bufferSize int) *Manager {
	return &Manager{
		clients:    make(map[uint64]*Client),
		bufferSize: bufferSize,
	}
}

// Register adds a new client. Returns the client for further use.
func (m *Manager) Register(conn *websocket.Conn) *Client {
	c := NewClient(conn, m.bufferSize)

	m.mu.Lock()
	m.clients[c.ID] = c
	m.mu.Unlock()

	log.Printf("client %d connected (%s)", c.ID, conn.RemoteAddr())
	return c
}

// Unregister removes a client.
func (m *Manager) Unregister(c *Client) {
	m.mu.Lock()
	delete(m.clients, c.ID)
	m.mu.Unlock()

	c.Close()
	log.Printf("client %d disconnected", c.ID)
}

// Broadcast sends one trade to all subscribed clients.
// The payload is encoded once and fanned out.
func (m *Manager) Broadcast(t TradeMsg) {
	var data []byte
	var once sync.Once

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.clients {
		if !c.IsSubscribed(t.Ticker) {
			continue
		}
		once.Do(func() {
			data, _ = json.Marshal(t)
		})
		if !c.Send(data) {
			// buffer full, trade dropped for this client
		}
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
