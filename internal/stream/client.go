package stream

import (
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// Client represents a connected WebSocket client.
type Client struct {
	ID   uint64
	Conn *websocket.Conn

	mu         sync.RWMutex
	tickers    map[string]bool // subscribed tickers
	allTickers bool

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once

	// stats
	Dropped uint64
}

var clientIDCounter uint64

// NewClient creates a new client wrapping a WebSocket connection.
func NewClient(conn *websocket.Conn, bufferSize int) *Client {
	return &Client{
		ID:      atomic.AddUint64(&clientIDCounter, 1),
		Conn:    conn,
		tickers: make(map[string]bool),
		sendCh:  make(chan []byte, bufferSize),
		done:    make(chan struct{}),
	}
}

// Subscribe adds tickers to the client's subscription.
func (c *Client) Subscribe(tickers []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tickers {
		c.tickers[t] = true
	}
}

// SubscribeAll subscribes the client to every security.
func (c *Client) SubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allTickers = true
}

// Unsubscribe removes tickers from the client's subscription.
func (c *Client) Unsubscribe(tickers []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tickers {
		delete(c.tickers, t)
	}
}

// IsSubscribed checks if the client is subscribed to a ticker.
func (c *Client) IsSubscribed(ticker string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.allTickers {
		return true
	}
	return c.tickers[ticker]
}

// Send enqueues data to be sent to the client.
// Returns false if the buffer is full (message dropped).
func (c *Client) Send(data []byte) bool {
	select {
	case c.sendCh <- data:
		return true
	default:
		atomic.AddUint64(&c.Dropped, 1)
		return false
	}
}

// SendCh returns the send channel for the write pump.
func (c *Client) SendCh() <-chan []byte {
	return c.sendCh
}

// Done returns a channel that is closed when the client is disconnected.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close terminates the client connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.Conn.Close()
	})
}
