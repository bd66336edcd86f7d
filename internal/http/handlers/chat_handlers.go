package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wiz0007/WeChat-server/domain"
)

// ChatHandlers handles chat and message HTTP requests
type ChatHandlers struct {
	chatSvc domain.ChatService
}

// NewChatHandlers creates new chat handlers
func NewChatHandlers(chatSvc domain.ChatService) *ChatHandlers {
	return &ChatHandlers{chatSvc: chatSvc}
}

// AccessChatRequest represents a get-or-create chat request
type AccessChatRequest struct {
	AccountID uint `json:"account_id" binding:"required"`
}

// SendMessageRequest represents a message send request. The attachment
// reference is opaque to the core; uploads happen elsewhere.
type SendMessageRequest struct {
	ChatID   uint   `json:"chat_id" binding:"required"`
	Text     string `json:"text"`
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
}

// ListAccounts returns every account except the caller, for starting chats
func (h *ChatHandlers) ListAccounts(c *gin.Context) {
	accountID, ok := AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account ID not found in context"})
		return
	}

	accounts, err := h.chatSvc.ListAccounts(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list accounts"})
		return
	}

	out := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, gin.H{
			"id":     a.ID,
			"name":   a.Name,
			"email":  a.Email,
			"avatar": a.Avatar,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// AccessChat gets or creates the chat between the caller and a peer
func (h *ChatHandlers) AccessChat(c *gin.Context) {
	accountID, ok := AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account ID not found in context"})
		return
	}

	var req AccessChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chat, err := h.chatSvc.GetOrCreateChat(c.Request.Context(), accountID, req.AccountID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, domain.ErrNotParticipant):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot open a chat with yourself"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to access chat"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": chat})
}

// History returns the chat's messages in persistence order
func (h *ChatHandlers) History(c *gin.Context) {
	accountID, ok := AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account ID not found in context"})
		return
	}

	chatID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid chat id"})
		return
	}
	_ = accountID

	messages, err := h.chatSvc.History(c.Request.Context(), chatID)
	if err != nil {
		if errors.Is(err, domain.ErrChatNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": messages})
}

// SendMessage persists a message and broadcasts it to the chat's room
func (h *ChatHandlers) SendMessage(c *gin.Context) {
	accountID, ok := AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account ID not found in context"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.chatSvc.SendMessage(c.Request.Context(), req.ChatID, accountID, req.Text, req.FileURL, req.FileName)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrChatNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		case errors.Is(err, domain.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this chat"})
		case errors.Is(err, domain.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message needs text or an attachment"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": message})
}

// MarkRead records that the caller has read a message
func (h *ChatHandlers) MarkRead(c *gin.Context) {
	accountID, ok := AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account ID not found in context"})
		return
	}

	messageID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message id"})
		return
	}

	message, err := h.chatSvc.MarkRead(c.Request.Context(), messageID, accountID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		case errors.Is(err, domain.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this chat"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark message read"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": message})
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
