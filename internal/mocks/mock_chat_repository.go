package mocks

import (
	"context"

	"github.com/wiz0007/WeChat-server/domain"
)

// MockChatRepository implements domain.ChatRepository for testing
type MockChatRepository struct {
	FindOrCreateFunc      func(ctx context.Context, accountA, accountB uint) (*domain.Chat, error)
	FindByIDFunc          func(ctx context.Context, id uint) (*domain.Chat, error)
	FindByParticipantFunc func(ctx context.Context, accountID uint) ([]*domain.Chat, error)
	UpdateLastMessageFunc func(ctx context.Context, chatID, messageID uint) error
	IsParticipantFunc     func(ctx context.Context, chatID, accountID uint) (bool, error)
}

// NewMockChatRepository creates a new MockChatRepository with default behaviors
func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{}
}

func (m *MockChatRepository) FindOrCreate(ctx context.Context, accountA, accountB uint) (*domain.Chat, error) {
	if m.FindOrCreateFunc != nil {
		return m.FindOrCreateFunc(ctx, accountA, accountB)
	}
	if accountA > accountB {
		accountA, accountB = accountB, accountA
	}
	return &domain.Chat{ID: 1, ParticipantA: accountA, ParticipantB: accountB}, nil
}

func (m *MockChatRepository) FindByID(ctx context.Context, id uint) (*domain.Chat, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrChatNotFound
}

func (m *MockChatRepository) FindByParticipant(ctx context.Context, accountID uint) ([]*domain.Chat, error) {
	if m.FindByParticipantFunc != nil {
		return m.FindByParticipantFunc(ctx, accountID)
	}
	return nil, nil
}

func (m *MockChatRepository) UpdateLastMessage(ctx context.Context, chatID, messageID uint) error {
	if m.UpdateLastMessageFunc != nil {
		return m.UpdateLastMessageFunc(ctx, chatID, messageID)
	}
	return nil
}

func (m *MockChatRepository) IsParticipant(ctx context.Context, chatID, accountID uint) (bool, error) {
	if m.IsParticipantFunc != nil {
		return m.IsParticipantFunc(ctx, chatID, accountID)
	}
	return true, nil
}
