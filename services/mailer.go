package services

import (
	"log"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/freshwash/freshwash-api/config"
)

// Mailer delivers a single HTML email
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through the configured SMTP relay
type SMTPMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTPMailer builds a mailer from SMTP configuration
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		port = 587
	}
	return &SMTPMailer{
		host: cfg.SMTPHost,
		port: port,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.SMTPUser,
	}
}

// Send delivers one message
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "FreshWash Laundry")
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return dialer.DialAndSend(msg)
}

// LogMailer writes emails to the application log instead of sending them.
// Used in development and tests where SMTP is not configured.
type LogMailer struct{}

// Send logs the message and reports success
func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("Email would be sent: to=%s subject=%q (%d bytes)", to, subject, len(htmlBody))
	return nil
}

// NewMailerFromConfig picks the SMTP mailer in production and the log mailer otherwise
func NewMailerFromConfig(cfg *config.Config) Mailer {
	if cfg.IsProduction() && cfg.SMTPHost != "" {
		return NewSMTPMailer(cfg)
	}
	return LogMailer{}
}
