package domain

import "time"

// Account represents a chat account in the system
type Account struct {
	ID           uint
	Name         string
	Username     string
	Email        string
	PasswordHash string
	GoogleID     string
	Avatar       string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFederated reports whether the account was created via a federated login
// and carries no usable password credential.
func (a *Account) IsFederated() bool {
	return a.GoogleID != ""
}

// OTPPurpose discriminates which flow an OTP challenge belongs to.
// The caller selects the purpose explicitly; it is never inferred from
// request payload shape.
type OTPPurpose string

const (
	PurposeRegister OTPPurpose = "register"
	PurposeLogin    OTPPurpose = "login"
	PurposeVerify   OTPPurpose = "verify"
	PurposeReset    OTPPurpose = "reset"
)

// Valid reports whether p is one of the known purposes.
func (p OTPPurpose) Valid() bool {
	switch p {
	case PurposeRegister, PurposeLogin, PurposeVerify, PurposeReset:
		return true
	}
	return false
}

// OTPChallenge represents a pending one-time-passcode challenge
type OTPChallenge struct {
	Email     string     `json:"email"`
	Purpose   OTPPurpose `json:"purpose"`
	Code      string     `json:"code"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	Attempts  int        `json:"attempts"`
}

// AuthResult represents a successful login outcome
type AuthResult struct {
	Account     *Account
	AccessToken string
	ExpiresIn   int64
}

// Chat represents a direct conversation between two accounts.
// ParticipantA is always the smaller account id so the unordered pair
// maps to exactly one row.
type Chat struct {
	ID            uint      `json:"id"`
	ParticipantA  uint      `json:"participant_a"`
	ParticipantB  uint      `json:"participant_b"`
	LastMessageID *uint     `json:"last_message_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasParticipant reports whether accountID is a member of the chat.
func (c *Chat) HasParticipant(accountID uint) bool {
	return c.ParticipantA == accountID || c.ParticipantB == accountID
}

// Message represents a persisted chat message. A message is immutable
// once created except for ReadBy growth.
type Message struct {
	ID        uint      `json:"id"`
	ChatID    uint      `json:"chat_id"`
	SenderID  uint      `json:"sender_id"`
	Text      string    `json:"text,omitempty"`
	FileURL   string    `json:"file_url,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
	ReadBy    []uint    `json:"read_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenClaims represents the claims embedded in a session token
type TokenClaims struct {
	AccountID uint  `json:"account_id"`
	IssuedAt  int64 `json:"iat"`
	ExpiresAt int64 `json:"exp"`
}
