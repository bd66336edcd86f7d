package domain

import "context"

// AccountRepository defines account data access operations
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uint) (*Account, error)
	FindAllExcept(ctx context.Context, id uint) ([]*Account, error)
	Update(ctx context.Context, account *Account) error
	MarkVerified(ctx context.Context, accountID uint) error
	UpdatePassword(ctx context.Context, accountID uint, passwordHash string) error
}

// ChatRepository defines chat data access operations. FindOrCreate must be
// idempotent under concurrent calls for the same unordered participant pair.
type ChatRepository interface {
	FindOrCreate(ctx context.Context, accountA, accountB uint) (*Chat, error)
	FindByID(ctx context.Context, id uint) (*Chat, error)
	FindByParticipant(ctx context.Context, accountID uint) ([]*Chat, error)
	UpdateLastMessage(ctx context.Context, chatID, messageID uint) error
	IsParticipant(ctx context.Context, chatID, accountID uint) (bool, error)
}

// MessageRepository defines message data access operations
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	FindByChatSorted(ctx context.Context, chatID uint) ([]*Message, error)
	FindByID(ctx context.Context, id uint) (*Message, error)
	MarkRead(ctx context.Context, messageID, accountID uint) (*Message, error)
}

// OTPService owns the one-time-passcode lifecycle
type OTPService interface {
	// Issue generates a fresh challenge for (email, purpose), invalidating
	// any prior code, and dispatches it through the notifier.
	Issue(ctx context.Context, email string, purpose OTPPurpose) (*OTPChallenge, error)
	// Resend behaves like Issue but rejects with ErrOTPResendLimit while the
	// cooldown from the previous issuance is still running.
	Resend(ctx context.Context, email string, purpose OTPPurpose) (*OTPChallenge, error)
	// Verify checks code against the pending challenge for (email, purpose).
	Verify(ctx context.Context, email string, purpose OTPPurpose, code string) error
}

// AuthService defines account authentication business logic
type AuthService interface {
	Register(ctx context.Context, name, username, email, password string) (*Account, error)
	VerifyOTP(ctx context.Context, email string, purpose OTPPurpose, code string) error
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GoogleLogin(ctx context.Context, email, name, googleID string) (*AuthResult, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, accountID uint, rawToken, newPassword string) error
	GetProfile(ctx context.Context, accountID uint) (*Account, error)
}

// ChatService coordinates durable message persistence with live broadcast
type ChatService interface {
	ListAccounts(ctx context.Context, requesterID uint) ([]*Account, error)
	GetOrCreateChat(ctx context.Context, requesterID, peerID uint) (*Chat, error)
	History(ctx context.Context, chatID uint) ([]*Message, error)
	SendMessage(ctx context.Context, chatID, senderID uint, text, fileURL, fileName string) (*Message, error)
	MarkRead(ctx context.Context, messageID, accountID uint) (*Message, error)
}

// PasswordService defines password hashing operations
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// TokenService mints and validates self-contained session tokens.
// Validity is solely a function of signature and expiry.
type TokenService interface {
	Generate(accountID uint) (string, error)
	Validate(token string) (*TokenClaims, error)
}

// NotificationService defines outbound notification operations
type NotificationService interface {
	SendEmail(to, subject, body string) error
	SendSMS(to, message string) error
}

// Broadcaster fans a persisted message out to every connection joined to
// the chat's room. Callers must invoke Publish only after the message has
// been durably created so live delivery order matches persistence order.
type Broadcaster interface {
	Publish(chatID uint, message *Message)
}
