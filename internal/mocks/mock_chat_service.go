package mocks

import (
	"context"

	"github.com/wiz0007/WeChat-server/domain"
)

// MockChatService implements domain.ChatService for testing
type MockChatService struct {
	ListAccountsFunc    func(ctx context.Context, requesterID uint) ([]*domain.Account, error)
	GetOrCreateChatFunc func(ctx context.Context, requesterID, peerID uint) (*domain.Chat, error)
	HistoryFunc         func(ctx context.Context, chatID uint) ([]*domain.Message, error)
	SendMessageFunc     func(ctx context.Context, chatID, senderID uint, text, fileURL, fileName string) (*domain.Message, error)
	MarkReadFunc        func(ctx context.Context, messageID, accountID uint) (*domain.Message, error)
}

// NewMockChatService creates a new MockChatService with default behaviors
func NewMockChatService() *MockChatService {
	return &MockChatService{}
}

func (m *MockChatService) ListAccounts(ctx context.Context, requesterID uint) ([]*domain.Account, error) {
	if m.ListAccountsFunc != nil {
		return m.ListAccountsFunc(ctx, requesterID)
	}
	return nil, nil
}

func (m *MockChatService) GetOrCreateChat(ctx context.Context, requesterID, peerID uint) (*domain.Chat, error) {
	if m.GetOrCreateChatFunc != nil {
		return m.GetOrCreateChatFunc(ctx, requesterID, peerID)
	}
	a, b := requesterID, peerID
	if a > b {
		a, b = b, a
	}
	return &domain.Chat{ID: 1, ParticipantA: a, ParticipantB: b}, nil
}

func (m *MockChatService) History(ctx context.Context, chatID uint) ([]*domain.Message, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, chatID)
	}
	return nil, nil
}

func (m *MockChatService) SendMessage(ctx context.Context, chatID, senderID uint, text, fileURL, fileName string) (*domain.Message, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatID, senderID, text, fileURL, fileName)
	}
	return &domain.Message{ID: 1, ChatID: chatID, SenderID: senderID, Text: text, FileURL: fileURL, FileName: fileName, ReadBy: []uint{senderID}}, nil
}

func (m *MockChatService) MarkRead(ctx context.Context, messageID, accountID uint) (*domain.Message, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, messageID, accountID)
	}
	return &domain.Message{ID: messageID, ReadBy: []uint{accountID}}, nil
}
