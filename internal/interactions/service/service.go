package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/paulbellamy/ratecounter"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	cudomain "github.com/corvusHold/outreach/internal/companyusers/domain"
	"github.com/corvusHold/outreach/internal/config"
	cfgdomain "github.com/corvusHold/outreach/internal/configurations/domain"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	evdomain "github.com/corvusHold/outreach/internal/events/domain"
	evsvc "github.com/corvusHold/outreach/internal/events/service"
	domain "github.com/corvusHold/outreach/internal/interactions/domain"
	"github.com/corvusHold/outreach/internal/metrics"
	"github.com/corvusHold/outreach/internal/platform/workerpool"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

var _ domain.Service = (*Service)(nil)

// Deps are the collaborators of the orchestrator.
type Deps struct {
	Recipients domain.Recipients
	Senders    domain.Senders
	Renderer   domain.Renderer
	Email      edomain.Sender
	Dispatcher edomain.BatchDispatcher
	Stats      domain.StatsRepository
	Settings   sdomain.Service
}

type Service struct {
	Deps
	cfg config.Config
	pub evdomain.Publisher
	log zerolog.Logger
	now func() time.Time

	mu    sync.Mutex
	rates *gocache.Cache
}

// rateIdle is how long a tenant's send-rate counter outlives its last send.
const rateIdle = 10 * time.Minute

func New(d Deps, cfg config.Config) *Service {
	rates := gocache.New(rateIdle, time.Minute)
	rates.OnEvicted(func(tenant string, _ any) { metrics.ClearSendRate(tenant) })
	return &Service{
		Deps:  d,
		cfg:   cfg,
		pub:   evsvc.Nop{},
		log:   zerolog.Nop(),
		now:   time.Now,
		rates: rates,
	}
}

// SetPublisher allows tests or callers to override the event publisher.
func (s *Service) SetPublisher(p evdomain.Publisher) { s.pub = p }

// SetLogger allows injection of a structured logger for debug tracing.
func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

// concurrency is BULK_CONCURRENCY unless the tenant overrides it, clamped to [1, MaxBulkConcurrency].
func (s *Service) concurrency(ctx context.Context, tenantID uuid.UUID) int {
	n := s.cfg.BulkConcurrency
	if s.Settings != nil {
		n, _ = s.Settings.GetInt(ctx, sdomain.KeyBulkConcurrency, &tenantID, n)
	}
	return max(1, min(n, sdomain.MaxBulkConcurrency))
}

// countSend feeds the trailing-minute dispatch rate gauge of a tenant.
// Counters of tenants idle for rateIdle are evicted together with their gauge.
func (s *Service) countSend(tenantID uuid.UUID) {
	key := tenantID.String()
	s.mu.Lock()
	var rc *ratecounter.RateCounter
	if v, ok := s.rates.Get(key); ok {
		rc = v.(*ratecounter.RateCounter)
	} else {
		rc = ratecounter.NewRateCounter(time.Minute)
	}
	s.rates.SetDefault(key, rc)
	s.mu.Unlock()
	rc.Incr(1)
	metrics.SetSendRate(key, rc.Rate())
}

// Interact sends the formatted email to every tenant record matching the filters.
//
// Nothing is sent unless the sender checks out and every message renders. After that each
// send and each stats write is an independent task, with at most the tenant's concurrency
// in flight for each kind, including sends handed to the background. A failed task does
// not stop the others and completed side effects are kept. Any failure seen before the
// response fails the call with all task errors joined.
func (s *Service) Interact(ctx context.Context, tenantID, actorID uuid.UUID, req domain.Request) (domain.Summary, error) {
	if req.Channel != domain.ChannelEmail {
		s.log.Debug().Str("channel", req.Channel).Msg("interaction channel not supported, ignoring")
		return domain.Summary{}, nil
	}

	crit := cudomain.NewCriteria(req.Filters)
	var (
		sender     cfgdomain.Sender
		recipients []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sender, err = s.Senders.LookupSender(gctx, tenantID, req.SourceEmailAddress)
		return err
	})
	g.Go(func() (err error) {
		recipients, err = s.Recipients.RecipientEmails(gctx, tenantID, crit)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, cfgdomain.ErrConfigurationNotFound) {
			return domain.Summary{}, cfgdomain.ErrConfigurationNotFound.WithStatus(http.StatusBadRequest)
		}
		return domain.Summary{}, err
	}
	switch {
	case !sender.IsVerified:
		return domain.Summary{}, cfgdomain.ErrEmailNotVerified
	case !sender.Active:
		return domain.Summary{}, cfgdomain.ErrInactiveIdentity
	}
	metrics.AddInteractionRecipients(req.Channel, len(recipients))

	limit := s.concurrency(ctx, tenantID)
	bodies, err := workerpool.Map(ctx, limit, recipients, func(ctx context.Context, to string) (string, error) {
		return s.Renderer.SubstituteFor(ctx, tenantID, to, req.Format.Content)
	})
	if err != nil {
		return domain.Summary{Matched: len(recipients)}, err
	}

	msgs := make([]edomain.Message, len(recipients))
	for i, to := range recipients {
		msgs[i] = edomain.Message{From: sender.EmailAddress, To: to, Subject: req.Format.Subject, Body: bodies[i]}
	}

	var dispatched, recorded, sendFailed atomic.Int64
	queued, sendErr := s.Dispatcher.DispatchEach(ctx, tenantID, "interaction.email.send", len(msgs), limit, func(ctx context.Context, i int) error {
		if err := s.Email.Send(ctx, tenantID, msgs[i]); err != nil {
			sendFailed.Add(1)
			return fmt.Errorf("send to %s: %w", msgs[i].To, err)
		}
		dispatched.Add(1)
		s.countSend(tenantID)
		return nil
	})

	pool := workerpool.New(limit)
	for _, msg := range msgs {
		pool.Go(func() error {
			err := s.Stats.Create(ctx, domain.EmailStats{
				ID:               uuid.New(),
				CompanyID:        tenantID,
				FromEmailAddress: msg.From,
				ToEmailAddress:   msg.To,
				EmailSubject:     msg.Subject,
				EmailContent:     msg.Body,
				CreatedAt:        s.now().UTC(),
			})
			if err != nil {
				metrics.IncEmailStats("failure")
				return fmt.Errorf("record stats for %s: %w", msg.To, err)
			}
			metrics.IncEmailStats("success")
			recorded.Add(1)
			return nil
		})
	}
	err = errors.Join(sendErr, pool.Wait())
	failed := pool.Failed()

	sum := domain.Summary{Matched: len(recipients), Recorded: int(recorded.Load())}
	if queued {
		sum.Queued = len(msgs)
	} else {
		sum.Dispatched = int(dispatched.Load())
		failed += int(sendFailed.Load())
	}
	_ = s.pub.Publish(ctx, evdomain.Event{
		Type:     evdomain.TypeInteractionDispatched,
		TenantID: tenantID,
		ActorID:  actorID,
		Meta: map[string]string{
			"from":       sender.EmailAddress,
			"matched":    strconv.Itoa(sum.Matched),
			"dispatched": strconv.Itoa(sum.Dispatched),
			"queued":     strconv.Itoa(sum.Queued),
			"recorded":   strconv.Itoa(sum.Recorded),
			"failed":     strconv.Itoa(failed),
		},
		Time: s.now(),
	})
	if err != nil {
		s.log.Error().Err(err).Str("tenant_id", tenantID.String()).Int("failed", failed).Msg("bulk interaction partially failed")
		return sum, err
	}
	return sum, nil
}
