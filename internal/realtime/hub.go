package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/wiz0007/WeChat-server/domain"
)

// Event is the envelope delivered to room members. Data mirrors the
// persisted Message shape so clients can render it without a round trip.
type Event struct {
	Type  string          `json:"type"`
	Data  *domain.Message `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Hub maintains the mapping from authenticated connections to joined rooms
// (one room id = one chat id) and fans events out to room members. It
// implements domain.Broadcaster.
//
// A single mutex guards both the room index and each client's room set.
// Publish enqueues to every member while holding it, so per-room delivery
// order equals the order Publish calls arrive in.
type Hub struct {
	mu       sync.Mutex
	rooms    map[uint]map[*Client]struct{}
	chatRepo domain.ChatRepository
	logger   *zap.Logger
}

// NewHub creates a new hub
func NewHub(chatRepo domain.ChatRepository, logger *zap.Logger) *Hub {
	return &Hub{
		rooms:    make(map[uint]map[*Client]struct{}),
		chatRepo: chatRepo,
		logger:   logger,
	}
}

// Join adds the connection to the chat's room. The connection's account
// must be a participant of the chat; a join for someone else's chat is
// refused.
func (h *Hub) Join(ctx context.Context, c *Client, chatID uint) error {
	ok, err := h.chatRepo.IsParticipant(ctx, chatID, c.AccountID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotParticipant
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.rooms[chatID]; !exists {
		h.rooms[chatID] = make(map[*Client]struct{})
	}
	h.rooms[chatID][c] = struct{}{}
	c.rooms[chatID] = struct{}{}

	h.logger.Debug("room joined",
		zap.Uint("account_id", c.AccountID),
		zap.Uint("chat_id", chatID))
	return nil
}

// Leave removes the connection from the room; idempotent if not a member.
func (h *Hub) Leave(c *Client, chatID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, chatID)
}

// Disconnect removes the connection from every room it had joined.
func (h *Hub) Disconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for chatID := range c.rooms {
		h.removeLocked(c, chatID)
	}
}

func (h *Hub) removeLocked(c *Client, chatID uint) {
	if members, ok := h.rooms[chatID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, chatID)
		}
	}
	delete(c.rooms, chatID)
}

// Publish implements domain.Broadcaster. Every connection joined to the
// room receives the event, including the sender's own other connections,
// which keeps multiple devices in sync. Slow consumers are dropped rather
// than allowed to stall the room.
func (h *Hub) Publish(chatID uint, message *domain.Message) {
	data, err := json.Marshal(Event{Type: "message", Data: message})
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[chatID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("client send buffer full, dropping connection",
				zap.Uint("account_id", c.AccountID),
				zap.Uint("chat_id", chatID))
			go c.conn.Close()
		}
	}
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(chatID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[chatID])
}
