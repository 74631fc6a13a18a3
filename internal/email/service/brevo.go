package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/config"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

// Ensure Brevo implements domain.Sender
var _ edomain.Sender = (*Brevo)(nil)

type Brevo struct {
	cfg      config.Config
	settings sdomain.Service
	http     *resty.Client
}

func NewBrevo(settings sdomain.Service, cfg config.Config) *Brevo {
	base := strings.TrimRight(cfg.BrevoBaseURL, "/")
	if base == "" {
		base = "https://api.brevo.com/v3"
	}
	c := resty.New().
		SetBaseURL(base).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")
	return &Brevo{settings: settings, cfg: cfg, http: c}
}

type brevoAddress struct {
	Email string `json:"email"`
}

type brevoEmail struct {
	To          []brevoAddress `json:"to"`
	Sender      brevoAddress   `json:"sender"`
	Subject     string         `json:"subject"`
	TextContent string         `json:"textContent"`
}

type brevoError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (b *Brevo) Send(ctx context.Context, tenantID uuid.UUID, m edomain.Message) error {
	apiKey, _ := b.settings.GetString(ctx, sdomain.KeyBrevoAPIKey, &tenantID, b.cfg.BrevoAPIKey)
	if apiKey == "" {
		return fmt.Errorf("brevo not configured")
	}
	payload := brevoEmail{
		To:          []brevoAddress{{Email: m.To}},
		Sender:      brevoAddress{Email: m.From},
		Subject:     m.Subject,
		TextContent: m.Body,
	}
	var apiErr brevoError
	resp, err := b.http.R().
		SetContext(ctx).
		SetHeader("api-key", apiKey).
		SetBody(payload).
		SetError(&apiErr).
		Post("/smtp/email")
	if err != nil {
		return fmt.Errorf("brevo send: %w", err)
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return fmt.Errorf("brevo send failed: %s: %s", resp.Status(), apiErr.Message)
		}
		return fmt.Errorf("brevo send failed: %s", resp.Status())
	}
	return nil
}
