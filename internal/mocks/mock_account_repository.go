package mocks

import (
	"context"

	"github.com/wiz0007/WeChat-server/domain"
)

// MockAccountRepository implements domain.AccountRepository for testing
type MockAccountRepository struct {
	CreateFunc         func(ctx context.Context, account *domain.Account) error
	FindByEmailFunc    func(ctx context.Context, email string) (*domain.Account, error)
	FindByIDFunc       func(ctx context.Context, id uint) (*domain.Account, error)
	FindAllExceptFunc  func(ctx context.Context, id uint) ([]*domain.Account, error)
	UpdateFunc         func(ctx context.Context, account *domain.Account) error
	MarkVerifiedFunc   func(ctx context.Context, accountID uint) error
	UpdatePasswordFunc func(ctx context.Context, accountID uint, passwordHash string) error
}

// NewMockAccountRepository creates a new MockAccountRepository with default behaviors
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	return nil
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) FindAllExcept(ctx context.Context, id uint) ([]*domain.Account, error) {
	if m.FindAllExceptFunc != nil {
		return m.FindAllExceptFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAccountRepository) Update(ctx context.Context, account *domain.Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, account)
	}
	return nil
}

func (m *MockAccountRepository) MarkVerified(ctx context.Context, accountID uint) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, accountID)
	}
	return nil
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, accountID uint, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, accountID, passwordHash)
	}
	return nil
}
