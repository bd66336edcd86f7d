package mocks

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wiz0007/WeChat-server/domain"
)

// MockTokenService implements domain.TokenService for testing
type MockTokenService struct {
	GenerateFunc func(accountID uint) (string, error)
	ValidateFunc func(token string) (*domain.TokenClaims, error)
}

// NewMockTokenService creates a new MockTokenService with default behaviors.
// The default tokens are transparent ("token-<id>") so tests can assert on
// them without real signing.
func NewMockTokenService() *MockTokenService {
	return &MockTokenService{}
}

func (m *MockTokenService) Generate(accountID uint) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(accountID)
	}
	return fmt.Sprintf("token-%d", accountID), nil
}

func (m *MockTokenService) Validate(token string) (*domain.TokenClaims, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(token)
	}
	raw, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	now := time.Now()
	return &domain.TokenClaims{
		AccountID: uint(id),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}, nil
}
