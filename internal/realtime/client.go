package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wiz0007/WeChat-server/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one authenticated long-lived connection. AccountID is resolved
// at handshake time and fixed for the connection's life.
type Client struct {
	AccountID uint

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[uint]struct{} // guarded by hub.mu
	logger *zap.Logger
}

// Command is a client-to-server room request.
type Command struct {
	Type   string `json:"type"`
	ChatID uint   `json:"chat_id"`
}

func newClient(hub *Hub, conn *websocket.Conn, accountID uint, logger *zap.Logger) *Client {
	return &Client{
		AccountID: accountID,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		rooms:     make(map[uint]struct{}),
		logger:    logger,
	}
}

// readPump consumes join/leave commands from the connection until it
// closes, then detaches the client from every room.
func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		close(c.send)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error",
					zap.Uint("account_id", c.AccountID),
					zap.Error(err))
			}
			return
		}
		c.handleCommand(data)
	}
}

func (c *Client) handleCommand(data []byte) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.sendError("malformed command")
		return
	}

	switch cmd.Type {
	case "join":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.hub.Join(ctx, c, cmd.ChatID); err != nil {
			if err == domain.ErrNotParticipant {
				c.sendError("not a participant of this chat")
				return
			}
			c.logger.Error("join failed",
				zap.Uint("account_id", c.AccountID),
				zap.Uint("chat_id", cmd.ChatID),
				zap.Error(err))
			c.sendError("join failed")
		}
	case "leave":
		c.hub.Leave(c, cmd.ChatID)
	default:
		c.sendError("unknown command type")
	}
}

func (c *Client) sendError(msg string) {
	data, err := json.Marshal(Event{Type: "error", Error: msg})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writePump drains the send channel to the connection and keeps it alive
// with periodic pings. All writes happen on this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
