// Package mailer is the email delivery collaborator. Delivery failures
// are reported to the caller, which logs them; they never abort an auth
// flow.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=mocks github.com/Cryptovee252/my-best-life-platform-sub001/internal/mailer Sender

// Sender delivers the three transactional mails the auth core produces.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
	SendWelcomeEmail(ctx context.Context, to, name string) error
}

// SMTPConfig configures the production sender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
}

// SMTPSender delivers mail over plain SMTP with optional auth.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) SendVerificationEmail(_ context.Context, to, name, token string) error {
	body := fmt.Sprintf("Hi %s,\r\n\r\nPlease verify your email address:\r\n%s/verify-email?token=%s\r\n\r\nThe link expires in 24 hours.\r\n",
		name, s.cfg.BaseURL, token)
	return s.send(to, "Verify your email", body)
}

func (s *SMTPSender) SendPasswordResetEmail(_ context.Context, to, name, token string) error {
	body := fmt.Sprintf("Hi %s,\r\n\r\nReset your password here:\r\n%s/reset-password?token=%s\r\n\r\nThe link expires in 1 hour. If you did not request this, ignore this email.\r\n",
		name, s.cfg.BaseURL, token)
	return s.send(to, "Password reset request", body)
}

func (s *SMTPSender) SendWelcomeEmail(_ context.Context, to, name string) error {
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour email is verified. Welcome to My Best Life!\r\n", name)
	return s.send(to, "Welcome!", body)
}

func (s *SMTPSender) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", s.cfg.From, to, subject, body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s failed: %w", to, err)
	}
	return nil
}

// LogSender logs instead of sending. Used in development and tests.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendVerificationEmail(_ context.Context, to, _ string, token string) error {
	s.logger.Info("verification email (not sent)", zap.String("to", to), zap.String("token", token))
	return nil
}

func (s *LogSender) SendPasswordResetEmail(_ context.Context, to, _ string, token string) error {
	s.logger.Info("password reset email (not sent)", zap.String("to", to), zap.String("token", token))
	return nil
}

func (s *LogSender) SendWelcomeEmail(_ context.Context, to, _ string) error {
	s.logger.Info("welcome email (not sent)", zap.String("to", to))
	return nil
}
