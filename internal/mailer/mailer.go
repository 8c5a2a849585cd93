package mailer

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/nextgenbank/onboarding-api/internal/config"
)

// Mailer sends customer notifications. Both sends are best-effort: callers
// log failures and carry on, they never propagate them to the client.
type Mailer interface {
	SendOTP(ctx context.Context, email, otp string, lifetime time.Duration) error
	SendAccountLocked(ctx context.Context, email, fullName string, lockout time.Duration) error
}

// New returns an SMTP mailer when SMTP_HOST is configured, otherwise a
// log-only mailer so development environments work without a mail relay.
func New(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{}
	}
	return &smtpMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost),
		from: cfg.DefaultFromEmail,
		site: cfg.BankName,
	}
}

type smtpMailer struct {
	addr string
	auth smtp.Auth
	from string
	site string
}

func (m *smtpMailer) SendOTP(ctx context.Context, email, otp string, lifetime time.Duration) error {
	subject := "Your OTP code for Login"
	body := fmt.Sprintf(
		"Your %s one-time login code is %s. It expires in %d minutes.",
		m.site, otp, int(lifetime.Minutes()),
	)
	return m.send(email, subject, body)
}

func (m *smtpMailer) SendAccountLocked(ctx context.Context, email, fullName string, lockout time.Duration) error {
	subject := "Your account has been locked"
	body := fmt.Sprintf(
		"Hello %s, your %s account has been locked after repeated failed login attempts. "+
			"It will unlock automatically in %d minutes.",
		fullName, m.site, int(lockout.Minutes()),
	)
	return m.send(email, subject, body)
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

type logMailer struct{}

func (m *logMailer) SendOTP(ctx context.Context, email, otp string, lifetime time.Duration) error {
	log.Printf("[mailer] OTP for %s: %s (valid %s)", email, otp, lifetime)
	return nil
}

func (m *logMailer) SendAccountLocked(ctx context.Context, email, fullName string, lockout time.Duration) error {
	log.Printf("[mailer] account locked notice for %s (unlocks in %s)", email, lockout)
	return nil
}
