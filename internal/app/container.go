package app

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/wiz0007/WeChat-server/domain"
	"github.com/wiz0007/WeChat-server/internal/config"
	"github.com/wiz0007/WeChat-server/internal/infrastructure/auth"
	"github.com/wiz0007/WeChat-server/internal/infrastructure/database"
	"github.com/wiz0007/WeChat-server/internal/infrastructure/notifications"
	"github.com/wiz0007/WeChat-server/internal/infrastructure/repositories"
	"github.com/wiz0007/WeChat-server/internal/realtime"
	"github.com/wiz0007/WeChat-server/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// Infrastructure
	DB          *gorm.DB
	RedisClient *database.RedisClient

	// Repositories
	AccountRepo domain.AccountRepository
	ChatRepo    domain.ChatRepository
	MessageRepo domain.MessageRepository

	// Services
	PasswordSvc     domain.PasswordService
	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OTPSvc          domain.OTPService
	AuthSvc         domain.AuthService
	ChatSvc         domain.ChatService

	// Realtime
	Hub *realtime.Hub
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	container := &Container{Config: cfg, Logger: logger}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	container.initRedis()
	container.initRepositories()
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	c.DB = db
	return nil
}

func (c *Container) initRedis() {
	c.RedisClient = database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
}

func (c *Container) initRepositories() {
	c.AccountRepo = repositories.NewAccountRepository(c.DB)
	c.ChatRepo = repositories.NewChatRepository(c.DB)
	c.MessageRepo = repositories.NewMessageRepository(c.DB)
}

func (c *Container) initServices() {
	c.PasswordSvc = auth.NewPasswordService(0)
	c.TokenSvc = auth.NewJWTService(c.Config.JWTSecret, c.Config.JWTIssuer, c.Config.SessionTTL)

	if c.Config.NotifierChannel == "sms" {
		c.NotificationSvc = notifications.NewTwilioService(
			c.Config.TwilioSID,
			c.Config.TwilioToken,
			c.Config.TwilioFrom,
			c.Logger,
		)
	} else {
		c.NotificationSvc = notifications.NewSMTPService(
			c.Config.SMTPHost,
			c.Config.SMTPPort,
			c.Config.SMTPUsername,
			c.Config.SMTPPassword,
			c.Config.SMTPFrom,
			c.Logger,
		)
	}

	otpConfig := services.OTPConfig{
		Length:       c.Config.OTP_Length,
		TTL:          c.Config.OTP_TTL,
		MaxAttempts:  c.Config.OTP_MaxAttempts,
		ResendWindow: c.Config.OTP_ResendWindow,
	}
	c.OTPSvc = services.NewOTPService(c.NotificationSvc, c.AccountRepo, c.RedisClient.Client, otpConfig, c.Logger)

	authConfig := services.AuthConfig{
		SessionTTL: c.Config.SessionTTL,
		ResetTTL:   c.Config.ResetTTL,
		ClientURL:  c.Config.ClientURL,
	}
	c.AuthSvc = services.NewAuthService(
		c.AccountRepo,
		c.PasswordSvc,
		c.TokenSvc,
		c.OTPSvc,
		c.NotificationSvc,
		c.RedisClient.Client,
		authConfig,
		c.Logger,
	)

	c.Hub = realtime.NewHub(c.ChatRepo, c.Logger)
	c.ChatSvc = services.NewChatService(c.AccountRepo, c.ChatRepo, c.MessageRepo, c.Hub, c.Logger)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
