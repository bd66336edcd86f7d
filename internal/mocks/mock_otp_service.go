package mocks

import (
	"context"
	"time"

	"github.com/wiz0007/WeChat-server/domain"
)

// MockOTPService implements domain.OTPService for testing
type MockOTPService struct {
	IssueFunc  func(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallenge, error)
	ResendFunc func(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallenge, error)
	VerifyFunc func(ctx context.Context, email string, purpose domain.OTPPurpose, code string) error
}

// NewMockOTPService creates a new MockOTPService with default behaviors
func NewMockOTPService() *MockOTPService {
	return &MockOTPService{}
}

func (m *MockOTPService) Issue(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallenge, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(ctx, email, purpose)
	}
	return defaultChallenge(email, purpose), nil
}

func (m *MockOTPService) Resend(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallenge, error) {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, email, purpose)
	}
	return defaultChallenge(email, purpose), nil
}

func (m *MockOTPService) Verify(ctx context.Context, email string, purpose domain.OTPPurpose, code string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, email, purpose, code)
	}
	return nil
}

func defaultChallenge(email string, purpose domain.OTPPurpose) *domain.OTPChallenge {
	now := time.Now()
	return &domain.OTPChallenge{
		Email:     email,
		Purpose:   purpose,
		Code:      "123456",
		IssuedAt:  now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
}
