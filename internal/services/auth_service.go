package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wiz0007/WeChat-server/domain"
)

// federatedPasswordSentinel marks accounts created via Google login; it is
// never a valid bcrypt hash so password login always fails for them.
const federatedPasswordSentinel = "GOOGLE"

// AuthServiceImpl implements domain.AuthService
type AuthServiceImpl struct {
	accountRepo     domain.AccountRepository
	passwordSvc     domain.PasswordService
	tokenSvc        domain.TokenService
	otpSvc          domain.OTPService
	notificationSvc domain.NotificationService
	redisClient     *redis.Client
	config          AuthConfig
	logger          *zap.Logger
}

type AuthConfig struct {
	SessionTTL time.Duration
	ResetTTL   time.Duration
	ClientURL  string
}

// NewAuthService creates a new auth service
func NewAuthService(
	accountRepo domain.AccountRepository,
	passwordSvc domain.PasswordService,
	tokenSvc domain.TokenService,
	otpSvc domain.OTPService,
	notificationSvc domain.NotificationService,
	redisClient *redis.Client,
	config AuthConfig,
	logger *zap.Logger,
) domain.AuthService {
	return &AuthServiceImpl{
		accountRepo:     accountRepo,
		passwordSvc:     passwordSvc,
		tokenSvc:        tokenSvc,
		otpSvc:          otpSvc,
		notificationSvc: notificationSvc,
		redisClient:     redisClient,
		config:          config,
		logger:          logger,
	}
}

// Register implements domain.AuthService. A prior unverified registration
// for the same email is resumed rather than rejected; only a verified
// account blocks re-registration.
func (s *AuthServiceImpl) Register(ctx context.Context, name, username, email, password string) (*domain.Account, error) {
	hashedPassword, err := s.passwordSvc.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.accountRepo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if account.IsVerified {
			return nil, domain.ErrAccountExists
		}
		account.Name = name
		account.Username = username
		account.PasswordHash = hashedPassword
		if err := s.accountRepo.Update(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to update account: %w", err)
		}
	case errors.Is(err, domain.ErrAccountNotFound):
		account = &domain.Account{
			Name:         name,
			Username:     username,
			Email:        email,
			PasswordHash: hashedPassword,
		}
		if err := s.accountRepo.Create(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	default:
		return nil, err
	}

	// The account exists either way; a notifier failure must not undo it.
	if _, err := s.otpSvc.Issue(ctx, email, domain.PurposeRegister); err != nil {
		if errors.Is(err, domain.ErrNotificationFailed) {
			return account, err
		}
		return nil, fmt.Errorf("failed to issue OTP: %w", err)
	}

	return account, nil
}

// VerifyOTP implements domain.AuthService. Side effects are purpose
// specific: register/verify mark the account verified, login applies no
// mutation (the caller proceeds to the session issuer), reset is gated by
// the separately issued reset token rather than the OTP.
func (s *AuthServiceImpl) VerifyOTP(ctx context.Context, email string, purpose domain.OTPPurpose, code string) error {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := s.otpSvc.Verify(ctx, email, purpose, code); err != nil {
		return err
	}

	switch purpose {
	case domain.PurposeRegister, domain.PurposeVerify:
		if err := s.accountRepo.MarkVerified(ctx, account.ID); err != nil {
			return fmt.Errorf("failed to mark account verified: %w", err)
		}
		s.logger.Info("account verified", zap.Uint("account_id", account.ID), zap.String("email", email))
	}
	return nil
}

// ResendOTP implements domain.AuthService
func (s *AuthServiceImpl) ResendOTP(ctx context.Context, email string) error {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if account.IsVerified {
		return domain.ErrAlreadyVerified
	}

	_, err = s.otpSvc.Resend(ctx, email, domain.PurposeRegister)
	return err
}

// Login implements domain.AuthService
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !account.IsVerified {
		return nil, domain.ErrAccountNotVerified
	}

	if !s.passwordSvc.Verify(account.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issueSession(account)
}

// GoogleLogin implements domain.AuthService. A first federated login
// creates a pre-verified account with no usable password credential.
func (s *AuthServiceImpl) GoogleLogin(ctx context.Context, email, name, googleID string) (*domain.AuthResult, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrAccountNotFound) {
		account = &domain.Account{
			Name:         name,
			Username:     usernameFromEmail(email),
			Email:        email,
			GoogleID:     googleID,
			PasswordHash: federatedPasswordSentinel,
			IsVerified:   true,
		}
		if err := s.accountRepo.Create(ctx, account); errors.Is(err, domain.ErrAccountExists) {
			// Lost a race with a concurrent first login; use the row the
			// winner inserted.
			account, err = s.accountRepo.FindByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, fmt.Errorf("failed to create federated account: %w", err)
		} else {
			s.logger.Info("federated account created", zap.Uint("account_id", account.ID), zap.String("email", email))
		}
	} else if err != nil {
		return nil, err
	}

	return s.issueSession(account)
}

// RequestPasswordReset implements domain.AuthService. Only a one-way hash
// of the token is stored; the raw token leaves the server exclusively in
// the emailed link.
func (s *AuthServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	rawToken := hex.EncodeToString(raw)
	hashed := sha256.Sum256([]byte(rawToken))

	key := resetTokenKey(account.ID)
	if err := s.redisClient.Set(ctx, key, hex.EncodeToString(hashed[:]), s.config.ResetTTL).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s&id=%d", s.config.ClientURL, rawToken, account.ID)
	body := emailTemplate("Password Reset Request",
		fmt.Sprintf(`Click <a href="%s">here</a> to reset your password. Valid for %d minutes.`,
			resetURL, int(s.config.ResetTTL.Minutes())))

	if err := s.notificationSvc.SendEmail(email, "Reset Your Password — WeChat", body); err != nil {
		s.logger.Warn("reset notification failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}
	return nil
}

// ResetPassword implements domain.AuthService. The stored hash is deleted
// on success so each token works exactly once.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, accountID uint, rawToken, newPassword string) error {
	key := resetTokenKey(accountID)

	stored, err := s.redisClient.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return domain.ErrResetTokenInvalid
	}
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}

	hashed := sha256.Sum256([]byte(rawToken))
	if hex.EncodeToString(hashed[:]) != stored {
		return domain.ErrResetTokenInvalid
	}

	hashedPassword, err := s.passwordSvc.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.accountRepo.UpdatePassword(ctx, accountID, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.redisClient.Del(ctx, key)
	s.logger.Info("password reset", zap.Uint("account_id", accountID))
	return nil
}

// GetProfile implements domain.AuthService
func (s *AuthServiceImpl) GetProfile(ctx context.Context, accountID uint) (*domain.Account, error) {
	return s.accountRepo.FindByID(ctx, accountID)
}

func (s *AuthServiceImpl) issueSession(account *domain.Account) (*domain.AuthResult, error) {
	token, err := s.tokenSvc.Generate(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return &domain.AuthResult{
		Account:     account,
		AccessToken: token,
		ExpiresIn:   int64(s.config.SessionTTL.Seconds()),
	}, nil
}

func resetTokenKey(accountID uint) string {
	return fmt.Sprintf("reset:%d", accountID)
}

func usernameFromEmail(email string) string {
	if i := strings.IndexByte(email, '@'); i > 0 {
		return email[:i]
	}
	return email
}
