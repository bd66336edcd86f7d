package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wiz0007/WeChat-server/domain"
)

// OTPServiceImpl implements domain.OTPService using Redis persistence.
// Challenges live outside the process so they survive restarts and are
// shared across horizontally scaled instances.
type OTPServiceImpl struct {
	notificationSvc domain.NotificationService
	accountRepo     domain.AccountRepository
	redisClient     *redis.Client
	config          OTPConfig
	logger          *zap.Logger
}

type OTPConfig struct {
	Length       int
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
}

// NewOTPService creates a new Redis-based OTP service
func NewOTPService(notificationSvc domain.NotificationService, accountRepo domain.AccountRepository, redisClient *redis.Client, config OTPConfig, logger *zap.Logger) domain.OTPService {
	return &OTPServiceImpl{
		notificationSvc: notificationSvc,
		accountRepo:     accountRepo,
		redisClient:     redisClient,
		config:          config,
		logger:          logger,
	}
}

func challengeKey(email string, purpose domain.OTPPurpose) string {
	return fmt.Sprintf("otp:%s:%s", purpose, email)
}

func attemptsKey(email string, purpose domain.OTPPurpose) string {
	return fmt.Sprintf("otp:att:%s:%s", purpose, email)
}

func resendKey(email string) string {
	return fmt.Sprintf("otp:res:%s", email)
}

// Issue implements domain.OTPService. Writing the challenge key overwrites
// any pending one, so at most one live challenge exists per (email, purpose)
// and issuing invalidates the prior code.
func (s *OTPServiceImpl) Issue(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallenge, error) {
	if !purpose.Valid() {
		return nil, fmt.Errorf("unknown otp purpose %q", purpose)
	}

	if err := s.checkPurposeConstraints(ctx, email, purpose); err != nil {
		return nil, err
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	now := time.Now()
	challenge := &domain.OTPChallenge{
		Email:     email,
		Purpose:   purpose,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.TTL),
	}

	data, err := json.Marshal(challenge)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal challenge: %w", err)
	}

	// The record outlives its logical expiry so a late verify can be told
	// the code expired rather than that it never existed.
	recordTTL := 2 * s.config.TTL
	if err := s.redisClient.Set(ctx, challengeKey(email, purpose), data, recordTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store OTP challenge: %w", err)
	}
	if err := s.redisClient.Set(ctx, attemptsKey(email, purpose), 0, recordTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to initialize attempts counter: %w", err)
	}
	if err := s.redisClient.Set(ctx, resendKey(email), 1, s.config.ResendWindow).Err(); err != nil {
		return nil, fmt.Errorf("failed to set resend throttle: %w", err)
	}

	// The code is valid server-side from this point. Notifier failure is
	// surfaced but never rolls the challenge back: the client can still be
	// informed out of band and verify, or use the resend path.
	if err := s.dispatch(email, purpose, code); err != nil {
		s.logger.Warn("otp notification failed",
			zap.String("email", email),
			zap.String("purpose", string(purpose)),
			zap.Error(err))
		return challenge, fmt.Errorf("%w: %v", domain.ErrNotificationFailed, err)
	}

	return challenge, nil
}

// Resend implements domain.OTPService with a cooldown on top of Issue.
func (s *OTPServiceImpl) Resend(ctx context.Context, email string, purpose domain.OTPPurpose) (*domain.OTPChallenge, error) {
	ttl, err := s.redisClient.TTL(ctx, resendKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check resend throttle: %w", err)
	}
	if ttl > 0 {
		// Prior code stays valid; no side effect.
		return nil, domain.ErrOTPResendLimit
	}
	return s.Issue(ctx, email, purpose)
}

// Verify implements domain.OTPService. Expiry is evaluated lazily here;
// expired and consumed challenges are cleared in place.
func (s *OTPServiceImpl) Verify(ctx context.Context, email string, purpose domain.OTPPurpose, code string) error {
	cKey := challengeKey(email, purpose)
	aKey := attemptsKey(email, purpose)

	// Check the challenge exists before counting the attempt, so verifies
	// against an email with nothing pending never seed an attempts counter.
	data, err := s.redisClient.Get(ctx, cKey).Result()
	if errors.Is(err, redis.Nil) {
		return domain.ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get OTP challenge: %w", err)
	}

	attempts, err := s.redisClient.Incr(ctx, aKey).Result()
	if err != nil {
		return fmt.Errorf("failed to increment attempts: %w", err)
	}
	if attempts > int64(s.config.MaxAttempts) {
		s.redisClient.Del(ctx, cKey, aKey)
		return domain.ErrOTPMaxAttempts
	}

	var challenge domain.OTPChallenge
	if err := json.Unmarshal([]byte(data), &challenge); err != nil {
		return fmt.Errorf("failed to unmarshal challenge: %w", err)
	}

	if time.Now().After(challenge.ExpiresAt) {
		s.redisClient.Del(ctx, cKey, aKey)
		return domain.ErrOTPExpired
	}

	if challenge.Code != code {
		return domain.ErrOTPInvalid
	}

	// Single use: success consumes the challenge.
	s.redisClient.Del(ctx, cKey, aKey)
	return nil
}

// checkPurposeConstraints enforces that the target account's existence and
// verification state are consistent with the requested purpose.
func (s *OTPServiceImpl) checkPurposeConstraints(ctx context.Context, email string, purpose domain.OTPPurpose) error {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	switch purpose {
	case domain.PurposeRegister, domain.PurposeVerify:
		if account.IsVerified {
			return domain.ErrAlreadyVerified
		}
	case domain.PurposeLogin, domain.PurposeReset:
		// Account existence is the only requirement.
	}
	return nil
}

func (s *OTPServiceImpl) dispatch(email string, purpose domain.OTPPurpose, code string) error {
	minutes := int(s.config.TTL.Minutes())

	var subject, heading string
	switch purpose {
	case domain.PurposeRegister:
		subject = "Verify Your Email — WeChat"
		heading = "Verify Your Email"
	case domain.PurposeLogin:
		subject = "Your Login Code — WeChat"
		heading = "Your Login Code"
	case domain.PurposeVerify:
		subject = "Verify Your Email — WeChat"
		heading = "Your New OTP"
	case domain.PurposeReset:
		subject = "Password Reset Code — WeChat"
		heading = "Password Reset Code"
	}

	body := emailTemplate(heading,
		fmt.Sprintf("Your OTP is <strong>%s</strong>. This OTP expires in %d minutes.", code, minutes))
	return s.notificationSvc.SendEmail(email, subject, body)
}

// emailTemplate wraps a message in the standard notification layout.
func emailTemplate(heading, message string) string {
	return fmt.Sprintf(`
  <div style="font-family: Arial; padding: 20px;">
    <div style="background: #f4f4f4; padding: 20px; border-radius: 10px;">
      <h2 style="color: #333;">%s</h2>
      <p style="font-size: 16px; color: #555;">%s</p>
      <br/>
      <p style="color: #888;">— WeChat Team</p>
    </div>
  </div>`, heading, message)
}

// generateCode generates a uniformly random numeric code of fixed width.
func (s *OTPServiceImpl) generateCode() (string, error) {
	digits := make([]byte, s.config.Length)

	for i := 0; i < s.config.Length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}

	return string(digits), nil
}
