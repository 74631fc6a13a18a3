package service

import (
	"context"
	"fmt"
	"strconv"

	mail "github.com/go-mail/mail"
	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/config"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

// Ensure SMTP implements domain.Sender
var _ edomain.Sender = (*SMTP)(nil)

type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type SMTP struct {
	cfg      config.Config
	settings sdomain.Service
	dial     func(host string, port int, username, password string) dialer
}

func NewSMTP(settings sdomain.Service, cfg config.Config) *SMTP {
	return &SMTP{settings: settings, cfg: cfg, dial: func(host string, port int, username, password string) dialer {
		return mail.NewDialer(host, port, username, password)
	}}
}

func (s *SMTP) Send(ctx context.Context, tenantID uuid.UUID, m edomain.Message) error {
	host, _ := s.settings.GetString(ctx, sdomain.KeySMTPHost, &tenantID, s.cfg.SMTPHost)
	username, _ := s.settings.GetString(ctx, sdomain.KeySMTPUsername, &tenantID, s.cfg.SMTPUsername)
	password, _ := s.settings.GetString(ctx, sdomain.KeySMTPPassword, &tenantID, s.cfg.SMTPPassword)
	portStr, _ := s.settings.GetString(ctx, sdomain.KeySMTPPort, &tenantID, strconv.Itoa(s.cfg.SMTPPort))
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = s.cfg.SMTPPort
	}
	if host == "" {
		return fmt.Errorf("smtp not configured")
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)
	if err := s.dial(host, port, username, password).DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
