package stream

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// controlMessage represents a client → server control message.
type controlMessage struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols,omitempty"`
}

// Handler creates the HTTP handler for WebSocket upgrades.
func Handler(mgr *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("websocket upgrade error: %v", err)
			return
		}

		client := mgr.Register(conn)

		go writePump(client)
		go readPump(client, mgr)
	}
}

// readPump processes incoming control messages from the client.
func readPump(c *Client, mgr *Manager) {
	defer mgr.Unregister(c)

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("client %d read error: %v", c.ID, err)
			}
			return
		}

		var ctrl controlMessage
		if err := json.Unmarshal(message, &ctrl); err != nil {
			log.Printf("client %d invalid message: %v", c.ID, err)
			continue
		}

		handleControl(c, &ctrl)
	}
}

// handleControl processes a parsed control message. Subscriptions are by
// ticker string; "*" subscribes to every security.
func handleControl(c *Client, ctrl *controlMessage) {
	switch ctrl.Action {
	case "subscribe":
		all := false
		for _, s := range ctrl.Symbols {
			if s == "*" {
				all = true
			}
		}
		if all {
			c.SubscribeAll()
			log.Printf("client %d subscribed to all securities", c.ID)
		} else if len(ctrl.Symbols) > 0 {
			c.Subscribe(ctrl.Symbols)
			log.Printf("client %d subscribed to %v", c.ID, ctrl.Symbols)
		}

	case "unsubscribe":
		if len(ctrl.Symbols) > 0 {
			c.Unsubscribe(ctrl.Symbols)
			log.Printf("client %d unsubscribed from %v", c.ID, ctrl.Symbols)
		}

	default:
		log.Printf("client %d unknown action: %s", c.ID, ctrl.Action)
	}
}

// writePump sends messages from the send channel to the WebSocket.
func writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case data, ok := <-c.SendCh():
			if !ok {
				return
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.Done():
			return
		}
	}
}
