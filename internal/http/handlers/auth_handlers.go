package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wiz0007/WeChat-server/domain"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService) *AuthHandlers {
	return &AuthHandlers{authSvc: authSvc}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest represents federated login request
type GoogleLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	GoogleID string `json:"google_id" binding:"required"`
}

// OTPVerifyRequest represents OTP verification request. Purpose is an
// explicit tag chosen by the caller, never inferred from payload shape.
type OTPVerifyRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Code    string `json:"code" binding:"required"`
	Purpose string `json:"purpose,omitempty"`
}

// OTPResendRequest represents an OTP resend request
type OTPResendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	AccountID   uint   `json:"account_id" binding:"required"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// Register handles account registration and sends the first OTP
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.authSvc.Register(c.Request.Context(), req.Name, req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Account already exists"})
		case errors.Is(err, domain.ErrNotificationFailed):
			// The account and code exist; only delivery failed.
			c.JSON(http.StatusBadGateway, gin.H{
				"error":      "Failed to send verification email",
				"account_id": account.ID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register account"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"message":    "OTP sent to email.",
			"account_id": account.ID,
		},
	})
}

// VerifyOTP handles OTP verification
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	purpose := domain.OTPPurpose(req.Purpose)
	if req.Purpose == "" {
		purpose = domain.PurposeRegister
	}
	if !purpose.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown OTP purpose"})
		return
	}

	if err := h.authSvc.VerifyOTP(c.Request.Context(), req.Email, purpose, req.Code); err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, domain.ErrOTPNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "OTP not found"})
		case errors.Is(err, domain.ErrOTPExpired):
			c.JSON(http.StatusBadRequest, gin.H{"error": "OTP has expired"})
		case errors.Is(err, domain.ErrOTPMaxAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Maximum attempts exceeded"})
		case errors.Is(err, domain.ErrOTPInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect OTP"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "OTP verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Email verified successfully."}})
}

// ResendOTP handles rate-limited OTP resend
func (h *AuthHandlers) ResendOTP(c *gin.Context) {
	var req OTPResendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.ResendOTP(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, domain.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Account already verified"})
		case errors.Is(err, domain.ErrOTPResendLimit):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "You can request another OTP after the cooldown."})
		case errors.Is(err, domain.ErrNotificationFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send OTP email"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resend OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "New OTP sent to email."}})
}

// Login handles password login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		case errors.Is(err, domain.ErrAccountNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "Email not verified"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, loginResponse(result))
}

// GoogleLogin handles federated login
func (h *AuthHandlers) GoogleLogin(c *gin.Context) {
	var req GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.GoogleLogin(c.Request.Context(), req.Email, req.Name, req.GoogleID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google login failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponse(result))
}

// ForgotPassword handles password reset link requests
func (h *AuthHandlers) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, domain.ErrNotificationFailed):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send reset email"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start password reset"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password reset email sent."}})
}

// ResetPassword handles the password reset confirmation
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.AccountID, req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrResetTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Token invalid or expired"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password reset successful."}})
}

// Me handles getting the authenticated account's profile
func (h *AuthHandlers) Me(c *gin.Context) {
	accountID, ok := AccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account ID not found in context"})
		return
	}

	account, err := h.authSvc.GetProfile(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":          account.ID,
			"name":        account.Name,
			"username":    account.Username,
			"email":       account.Email,
			"avatar":      account.Avatar,
			"is_verified": account.IsVerified,
			"created_at":  account.CreatedAt,
		},
	})
}

func loginResponse(result *domain.AuthResult) gin.H {
	return gin.H{
		"data": gin.H{
			"access_token": result.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   result.ExpiresIn,
			"account": gin.H{
				"id":    result.Account.ID,
				"name":  result.Account.Name,
				"email": result.Account.Email,
			},
		},
	}
}

// AccountID extracts the authenticated account id set by the auth
// middleware.
func AccountID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("account_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
