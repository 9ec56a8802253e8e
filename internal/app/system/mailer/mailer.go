// internal/app/system/mailer/mailer.go

// Package mailer sends notification e-mail over SMTP. It is an optional
// delivery channel: the notifier treats a nil *Mailer as "inbox only".
package mailer

import (
	"crypto/tls"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Config holds SMTP settings, loaded from app configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type Mailer struct {
	cfg Config
	log *zap.Logger
}

func New(cfg Config, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

// Send delivers one message. Errors are returned so the caller can log
// them; notification e-mail is never retried.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.cfg.From, m.cfg.FromName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: m.cfg.Host}
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// NotificationBody renders the standard notification e-mail body.
func NotificationBody(author, message, contentID string) string {
	body := fmt.Sprintf("<p><b>%s</b></p><p>%s</p>", author, message)
	if contentID != "" {
		body += fmt.Sprintf("<p>Content: %s</p>", contentID)
	}
	return body
}
