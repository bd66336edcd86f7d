package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/wiz0007/WeChat-server/domain"
)

// MockMessageRepository implements domain.MessageRepository for testing.
// The default behavior is an in-memory append-only store so ordering tests
// can run against it without a database.
type MockMessageRepository struct {
	CreateFunc           func(ctx context.Context, message *domain.Message) error
	FindByChatSortedFunc func(ctx context.Context, chatID uint) ([]*domain.Message, error)
	FindByIDFunc         func(ctx context.Context, id uint) (*domain.Message, error)
	MarkReadFunc         func(ctx context.Context, messageID, accountID uint) (*domain.Message, error)

	mu       sync.Mutex
	nextID   uint
	messages []*domain.Message
}

// NewMockMessageRepository creates a new MockMessageRepository with default behaviors
func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, message)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	message.ID = m.nextID
	message.CreatedAt = time.Now()
	stored := *message
	m.messages = append(m.messages, &stored)
	return nil
}

func (m *MockMessageRepository) FindByChatSorted(ctx context.Context, chatID uint) ([]*domain.Message, error) {
	if m.FindByChatSortedFunc != nil {
		return m.FindByChatSortedFunc(ctx, chatID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Message
	for _, msg := range m.messages {
		if msg.ChatID == chatID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *MockMessageRepository) FindByID(ctx context.Context, id uint) (*domain.Message, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, messageID, accountID uint) (*domain.Message, error) {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, messageID, accountID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID != messageID {
			continue
		}
		for _, id := range msg.ReadBy {
			if id == accountID {
				return msg, nil
			}
		}
		msg.ReadBy = append(msg.ReadBy, accountID)
		return msg, nil
	}
	return nil, domain.ErrMessageNotFound
}
