package service

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/corvusHold/outreach/internal/config"
	idomain "github.com/corvusHold/outreach/internal/interactions/domain"
	"github.com/corvusHold/outreach/internal/metrics"
	domain "github.com/corvusHold/outreach/internal/webhooks/domain"
)

var _ domain.Service = (*Service)(nil)

type Service struct {
	stats      idomain.StatsRepository
	http       *resty.Client
	hostSuffix string
	log        zerolog.Logger
}

func New(stats idomain.StatsRepository, cfg config.Config) *Service {
	return &Service{
		stats:      stats,
		http:       resty.New().SetTimeout(10 * time.Second),
		hostSuffix: strings.ToLower(cfg.SNSSubscribeHostSuffix),
		log:        zerolog.Nop(),
	}
}

// SetLogger allows injection of a structured logger for debug tracing.
func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

func (s *Service) Handle(ctx context.Context, messageType string, body json.RawMessage) error {
	var err error
	switch messageType {
	case domain.TypeNotification:
		err = s.notification(ctx, body)
	case domain.TypeSubscriptionConfirmation:
		err = s.confirm(ctx, body)
	default:
		s.log.Debug().Str("type", messageType).Msg("webhook ignored")
		metrics.IncWebhookEvent(messageType, "ignored")
		return nil
	}
	if err != nil {
		metrics.IncWebhookEvent(messageType, "failure")
		return err
	}
	metrics.IncWebhookEvent(messageType, "success")
	return nil
}

// notification stores the full provider event on the latest stats record of its sender and first recipient.
func (s *Service) notification(ctx context.Context, body json.RawMessage) error {
	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.ErrInvalidPayload.Wrap(err)
	}
	var ev domain.MailEvent
	if err := json.Unmarshal([]byte(env.Message), &ev); err != nil {
		return domain.ErrInvalidPayload.Wrap(err)
	}
	if len(ev.Mail.Destination) == 0 {
		return idomain.ErrStatsMissing
	}
	from, to := ev.Mail.Source, ev.Mail.Destination[0]
	if err := s.stats.RecordDetails(ctx, from, to, json.RawMessage(env.Message)); err != nil {
		return err
	}
	s.log.Debug().Str("event", ev.EventType).Str("from", from).Str("to", to).Msg("delivery event recorded")
	return nil
}

func (s *Service) confirm(ctx context.Context, body json.RawMessage) error {
	var env domain.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.ErrInvalidPayload.Wrap(err)
	}
	u, err := url.Parse(env.SubscribeURL)
	if err != nil || u.Scheme != "https" || !s.trusted(u.Hostname()) {
		return domain.ErrUntrustedSubscribe
	}
	resp, err := s.http.R().SetContext(ctx).Get(u.String())
	if err != nil {
		return domain.ErrSubscriptionFailure.Wrap(err)
	}
	if resp.IsError() {
		s.log.Warn().Int("status", resp.StatusCode()).Str("topic", env.TopicArn).Msg("subscription confirmation rejected")
		return domain.ErrSubscriptionFailure
	}
	s.log.Info().Str("topic", env.TopicArn).Msg("subscription confirmed")
	return nil
}

func (s *Service) trusted(host string) bool {
	if s.hostSuffix == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(host), s.hostSuffix)
}
