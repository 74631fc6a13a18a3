package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/config"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	"github.com/corvusHold/outreach/internal/metrics"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

// Ensure Router implements domain.Sender
var _ edomain.Sender = (*Router)(nil)

// Router picks the sending provider per tenant from the email.provider setting.
type Router struct {
	cfg      config.Config
	settings sdomain.Service
	ses      edomain.Sender
	smtp     edomain.Sender
	brevo    edomain.Sender
}

func NewRouter(settings sdomain.Service, cfg config.Config, ses edomain.Sender) *Router {
	return &Router{cfg: cfg, settings: settings, ses: ses, smtp: NewSMTP(settings, cfg), brevo: NewBrevo(settings, cfg)}
}

func (r *Router) Send(ctx context.Context, tenantID uuid.UUID, m edomain.Message) error {
	prov, _ := r.settings.GetString(ctx, sdomain.KeyEmailProvider, &tenantID, r.cfg.EmailProvider)
	prov = strings.ToLower(prov)
	var next edomain.Sender
	switch prov {
	case config.ProviderBrevo:
		next = r.brevo
	case config.ProviderSMTP:
		next = r.smtp
	default:
		prov, next = config.ProviderSES, r.ses
	}
	err := next.Send(ctx, tenantID, m)
	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.IncEmailSend(prov, result)
	return err
}

func normalizeIdentity(id string) string { return strings.ToLower(strings.TrimSpace(id)) }
