package notifications

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/wiz0007/WeChat-server/domain"
)

// SMTPServiceImpl implements domain.NotificationService over SMTP with
// implicit TLS (port 465 style).
type SMTPServiceImpl struct {
	host     string
	port     string
	username string
	password string
	from     string
	logger   *zap.Logger
}

// NewSMTPService creates a new SMTP notification service
func NewSMTPService(host, port, username, password, from string, logger *zap.Logger) domain.NotificationService {
	return &SMTPServiceImpl{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		logger:   logger,
	}
}

// SendEmail implements domain.NotificationService
func (s *SMTPServiceImpl) SendEmail(to, subject, body string) error {
	// Without credentials, log instead of sending. Keeps local development
	// working with the code visible in the server log.
	if s.username == "" {
		s.logger.Info("mock email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.String("body", body))
		return nil
	}

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", s.from) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := s.host + ":" + s.port
	tlsConfig := &tls.Config{ServerName: s.host}

	conn, err := tls.Dial("tcp", serverAddr, tlsConfig)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(s.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	return w.Close()
}

// SendSMS implements domain.NotificationService. SMS is not a channel this
// sender supports; deployments that need it use the Twilio service.
func (s *SMTPServiceImpl) SendSMS(to, message string) error {
	s.logger.Info("mock sms", zap.String("to", to), zap.String("message", message))
	return nil
}
