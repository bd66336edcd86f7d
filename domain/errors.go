package domain

import "errors"

// Account errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountExists      = errors.New("account already exists")
	ErrAccountNotVerified = errors.New("account email not verified")
	ErrAlreadyVerified    = errors.New("account already verified")
)

// OTP errors
var (
	ErrOTPInvalid     = errors.New("invalid otp code")
	ErrOTPExpired     = errors.New("otp has expired")
	ErrOTPNotFound    = errors.New("otp not found")
	ErrOTPMaxAttempts = errors.New("maximum otp attempts exceeded")
	ErrOTPResendLimit = errors.New("otp resend limit exceeded")
)

// Token errors
var (
	ErrTokenInvalid      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenMalformed    = errors.New("malformed token")
	ErrResetTokenInvalid = errors.New("reset token invalid or expired")
)

// Chat and message errors
var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("account is not a chat participant")
	ErrEmptyMessage    = errors.New("message has neither text nor attachment")
)

// Notification errors
var (
	ErrNotificationFailed = errors.New("notification dispatch failed")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized access")
)
