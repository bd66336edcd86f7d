package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/wiz0007/WeChat-server/domain"
)

// PasswordServiceImpl hashes account passwords with bcrypt.
type PasswordServiceImpl struct {
	cost int
}

// NewPasswordService creates a password service using the given bcrypt cost.
// Costs outside the range bcrypt accepts fall back to bcrypt.DefaultCost,
// so callers may pass 0 to mean "the default".
func NewPasswordService(cost int) domain.PasswordService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordServiceImpl{cost: cost}
}

// Hash implements domain.PasswordService
func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify implements domain.PasswordService
func (p *PasswordServiceImpl) Verify(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
