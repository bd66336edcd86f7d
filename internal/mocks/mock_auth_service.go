package mocks

import (
	"context"

	"github.com/wiz0007/WeChat-server/domain"
)

// MockAuthService implements domain.AuthService for testing
type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, name, username, email, password string) (*domain.Account, error)
	VerifyOTPFunc            func(ctx context.Context, email string, purpose domain.OTPPurpose, code string) error
	ResendOTPFunc            func(ctx context.Context, email string) error
	LoginFunc                func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	GoogleLoginFunc          func(ctx context.Context, email, name, googleID string) (*domain.AuthResult, error)
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ResetPasswordFunc        func(ctx context.Context, accountID uint, rawToken, newPassword string) error
	GetProfileFunc           func(ctx context.Context, accountID uint) (*domain.Account, error)
}

// NewMockAuthService creates a new MockAuthService with default behaviors
func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, name, username, email, password string) (*domain.Account, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, name, username, email, password)
	}
	return &domain.Account{ID: 1, Name: name, Username: username, Email: email}, nil
}

func (m *MockAuthService) VerifyOTP(ctx context.Context, email string, purpose domain.OTPPurpose, code string) error {
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, purpose, code)
	}
	return nil
}

func (m *MockAuthService) ResendOTP(ctx context.Context, email string) error {
	if m.ResendOTPFunc != nil {
		return m.ResendOTPFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return &domain.AuthResult{
		Account:     &domain.Account{ID: 1, Email: email, IsVerified: true},
		AccessToken: "token-1",
		ExpiresIn:   3600,
	}, nil
}

func (m *MockAuthService) GoogleLogin(ctx context.Context, email, name, googleID string) (*domain.AuthResult, error) {
	if m.GoogleLoginFunc != nil {
		return m.GoogleLoginFunc(ctx, email, name, googleID)
	}
	return &domain.AuthResult{
		Account:     &domain.Account{ID: 1, Name: name, Email: email, GoogleID: googleID, IsVerified: true},
		AccessToken: "token-1",
		ExpiresIn:   3600,
	}, nil
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if m.RequestPasswordResetFunc != nil {
		return m.RequestPasswordResetFunc(ctx, email)
	}
	return nil
}

func (m *MockAuthService) ResetPassword(ctx context.Context, accountID uint, rawToken, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, accountID, rawToken, newPassword)
	}
	return nil
}

func (m *MockAuthService) GetProfile(ctx context.Context, accountID uint) (*domain.Account, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, accountID)
	}
	return &domain.Account{ID: accountID, Email: "test@example.com"}, nil
}
