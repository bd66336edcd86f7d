package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wiz0007/WeChat-server/domain"
	"github.com/wiz0007/WeChat-server/internal/mocks"
)

func performAuthedJSON(t *testing.T, handler gin.HandlerFunc, accountID uint, body interface{}, params gin.Params) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	if accountID != 0 {
		c.Set("account_id", accountID)
	}
	handler(c)
	return w
}

func TestChatHandlers_ListAccounts(t *testing.T) {
	chatSvc := mocks.NewMockChatService()
	chatSvc.ListAccountsFunc = func(ctx context.Context, requesterID uint) ([]*domain.Account, error) {
		if requesterID != 1 {
			t.Errorf("requester = %d, want 1", requesterID)
		}
		return []*domain.Account{
			{ID: 2, Name: "Other", Email: "other@example.com"},
		}, nil
	}
	h := NewChatHandlers(chatSvc)

	w := performAuthedJSON(t, h.ListAccounts, 1, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	data, ok := body["data"].([]interface{})
	if !ok || len(data) != 1 {
		t.Errorf("data = %v, want one account", body["data"])
	}
}

func TestChatHandlers_AccessChat(t *testing.T) {
	tests := []struct {
		name       string
		accountID  uint
		body       interface{}
		svcErr     error
		wantStatus int
	}{
		{
			name:       "success",
			accountID:  1,
			body:       AccessChatRequest{AccountID: 2},
			wantStatus: http.StatusOK,
		},
		{
			name:       "self chat",
			accountID:  1,
			body:       AccessChatRequest{AccountID: 1},
			svcErr:     domain.ErrNotParticipant,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown peer",
			accountID:  1,
			body:       AccessChatRequest{AccountID: 99},
			svcErr:     domain.ErrAccountNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unauthenticated",
			accountID:  0,
			body:       AccessChatRequest{AccountID: 2},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing peer id",
			accountID:  1,
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatSvc := mocks.NewMockChatService()
			if tt.svcErr != nil {
				chatSvc.GetOrCreateChatFunc = func(ctx context.Context, requesterID, peerID uint) (*domain.Chat, error) {
					return nil, tt.svcErr
				}
			}
			h := NewChatHandlers(chatSvc)

			w := performAuthedJSON(t, h.AccessChat, tt.accountID, tt.body, nil)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestChatHandlers_History(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		chatSvc := mocks.NewMockChatService()
		chatSvc.HistoryFunc = func(ctx context.Context, chatID uint) ([]*domain.Message, error) {
			return []*domain.Message{
				{ID: 1, ChatID: chatID, SenderID: 1, Text: "first"},
				{ID: 2, ChatID: chatID, SenderID: 2, Text: "second"},
			}, nil
		}
		h := NewChatHandlers(chatSvc)

		w := performAuthedJSON(t, h.History, 1, nil, gin.Params{{Key: "id", Value: "5"}})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
		}
		body := decodeBody(t, w)
		data := body["data"].([]interface{})
		if len(data) != 2 {
			t.Errorf("messages = %d, want 2", len(data))
		}
	})

	t.Run("unknown chat", func(t *testing.T) {
		chatSvc := mocks.NewMockChatService()
		chatSvc.HistoryFunc = func(ctx context.Context, chatID uint) ([]*domain.Message, error) {
			return nil, domain.ErrChatNotFound
		}
		h := NewChatHandlers(chatSvc)

		w := performAuthedJSON(t, h.History, 1, nil, gin.Params{{Key: "id", Value: "99"}})
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("bad chat id", func(t *testing.T) {
		h := NewChatHandlers(mocks.NewMockChatService())
		w := performAuthedJSON(t, h.History, 1, nil, gin.Params{{Key: "id", Value: "abc"}})
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestChatHandlers_SendMessage(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		svcErr     error
		wantStatus int
	}{
		{
			name:       "success",
			body:       SendMessageRequest{ChatID: 5, Text: "hello"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty message",
			body:       SendMessageRequest{ChatID: 5},
			svcErr:     domain.ErrEmptyMessage,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not a participant",
			body:       SendMessageRequest{ChatID: 5, Text: "hello"},
			svcErr:     domain.ErrNotParticipant,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown chat",
			body:       SendMessageRequest{ChatID: 99, Text: "hello"},
			svcErr:     domain.ErrChatNotFound,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatSvc := mocks.NewMockChatService()
			if tt.svcErr != nil {
				chatSvc.SendMessageFunc = func(ctx context.Context, chatID, senderID uint, text, fileURL, fileName string) (*domain.Message, error) {
					return nil, tt.svcErr
				}
			}
			h := NewChatHandlers(chatSvc)

			w := performAuthedJSON(t, h.SendMessage, 1, tt.body, nil)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	t.Run("sender comes from the token, not the payload", func(t *testing.T) {
		chatSvc := mocks.NewMockChatService()
		var gotSender uint
		chatSvc.SendMessageFunc = func(ctx context.Context, chatID, senderID uint, text, fileURL, fileName string) (*domain.Message, error) {
			gotSender = senderID
			return &domain.Message{ID: 1, ChatID: chatID, SenderID: senderID, Text: text}, nil
		}
		h := NewChatHandlers(chatSvc)

		w := performAuthedJSON(t, h.SendMessage, 7, SendMessageRequest{ChatID: 5, Text: "hello"}, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if gotSender != 7 {
			t.Errorf("sender = %d, want authenticated account 7", gotSender)
		}
	})
}

func TestChatHandlers_MarkRead(t *testing.T) {
	tests := []struct {
		name       string
		param      string
		svcErr     error
		wantStatus int
	}{
		{"success", "3", nil, http.StatusOK},
		{"unknown message", "99", domain.ErrMessageNotFound, http.StatusNotFound},
		{"not a participant", "3", domain.ErrNotParticipant, http.StatusForbidden},
		{"bad message id", "abc", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatSvc := mocks.NewMockChatService()
			if tt.svcErr != nil {
				chatSvc.MarkReadFunc = func(ctx context.Context, messageID, accountID uint) (*domain.Message, error) {
					return nil, tt.svcErr
				}
			}
			h := NewChatHandlers(chatSvc)

			w := performAuthedJSON(t, h.MarkRead, 2, nil, gin.Params{{Key: "id", Value: tt.param}})
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
