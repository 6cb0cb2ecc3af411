package dashboard

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Command is a client to server message
type Command struct {
	Command    string   `json:"command"`
	RequestIDs []string `json:"request_ids"`
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan events.StatusUpdate
	remote string

	// nil means every request. Only touched by the hub loop.
	filter map[string]struct{}
}

func (c *client) setFilter(requestIDs []string) {
	if len(requestIDs) == 0 {
		c.filter = nil
		return
	}
	c.filter = make(map[string]struct{}, len(requestIDs))
	for _, id := range requestIDs {
		c.filter[id] = struct{}{}
	}
}

func (c *client) wants(update events.StatusUpdate) bool {
	if c.filter == nil {
		return true
	}
	_, ok := c.filter[update.RequestID]
	return ok
}

func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debugw("Dashboard client read failed", "remote", c.remote, "error", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.log.Debugw("Ignoring malformed dashboard command", "remote", c.remote, "error", err)
			continue
		}
		if cmd.Command == "subscribe" {
			c.hub.requestSubscription(subscription{client: c, requestIDs: cmd.RequestIDs})
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case update, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(update); err != nil {
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
