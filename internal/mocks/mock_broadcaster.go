package mocks

import (
	"sync"

	"github.com/wiz0007/WeChat-server/domain"
)

// MockBroadcaster implements domain.Broadcaster for testing, recording
// published messages in call order.
type MockBroadcaster struct {
	PublishFunc func(chatID uint, message *domain.Message)

	mu        sync.Mutex
	Published []*domain.Message
}

// NewMockBroadcaster creates a new MockBroadcaster
func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{}
}

func (m *MockBroadcaster) Publish(chatID uint, message *domain.Message) {
	m.mu.Lock()
	stored := *message
	m.Published = append(m.Published, &stored)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		m.PublishFunc(chatID, message)
	}
}
