package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cudomain "github.com/corvusHold/outreach/internal/companyusers/domain"
	"github.com/corvusHold/outreach/internal/config"
	cfgdomain "github.com/corvusHold/outreach/internal/configurations/domain"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	esvc "github.com/corvusHold/outreach/internal/email/service"
	evdomain "github.com/corvusHold/outreach/internal/events/domain"
	domain "github.com/corvusHold/outreach/internal/interactions/domain"
	"github.com/corvusHold/outreach/internal/platform/apperror"
	"github.com/corvusHold/outreach/internal/platform/ordered"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

type recipients struct {
	emails []string
	got    cudomain.Criteria
}

func (r *recipients) RecipientEmails(_ context.Context, _ uuid.UUID, c cudomain.Criteria) ([]string, error) {
	r.got = c
	return r.emails, nil
}

type senders struct {
	sender cfgdomain.Sender
	err    error
}

func (s senders) LookupSender(context.Context, uuid.UUID, string) (cfgdomain.Sender, error) {
	return s.sender, s.err
}

// renderer greets by the local part of the address and fails for addresses in fail.
type renderer struct{ fail map[string]bool }

func (r renderer) SubstituteFor(_ context.Context, _ uuid.UUID, email, tpl string) (string, error) {
	if r.fail[email] {
		return "", cudomain.ErrUserNotFound
	}
	return strings.ReplaceAll(tpl, "#name", strings.Split(email, "@")[0]), nil
}

type outbox struct {
	mu       sync.Mutex
	sent     []edomain.Message
	failFor  string
	inFlight int32
	peak     int32
}

func (o *outbox) Send(_ context.Context, _ uuid.UUID, m edomain.Message) error {
	n := atomic.AddInt32(&o.inFlight, 1)
	defer atomic.AddInt32(&o.inFlight, -1)
	for {
		p := atomic.LoadInt32(&o.peak)
		if n <= p || atomic.CompareAndSwapInt32(&o.peak, p, n) {
			break
		}
	}
	time.Sleep(time.Millisecond)
	if m.To == o.failFor {
		return errors.New("provider rejected " + m.To)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, m)
	return nil
}

type stats struct {
	mu   sync.Mutex
	rows []domain.EmailStats
}

func (s *stats) Create(_ context.Context, st domain.EmailStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, st)
	return nil
}

func (s *stats) RecordDetails(context.Context, string, string, json.RawMessage) error { return nil }

type settings struct{ concurrency int }

func (s settings) GetString(_ context.Context, _ string, _ *uuid.UUID, def string) (string, error) {
	return def, nil
}

func (s settings) GetDuration(_ context.Context, _ string, _ *uuid.UUID, def time.Duration) (time.Duration, error) {
	return def, nil
}

func (s settings) GetInt(_ context.Context, key string, _ *uuid.UUID, def int) (int, error) {
	if key == sdomain.KeyBulkConcurrency && s.concurrency > 0 {
		return s.concurrency, nil
	}
	return def, nil
}

type capturePub struct{ events []evdomain.Event }

func (p *capturePub) Publish(_ context.Context, e evdomain.Event) error {
	p.events = append(p.events, e)
	return nil
}

type fixture struct {
	svc   *Service
	rcpt  *recipients
	out   *outbox
	stats *stats
	pub   *capturePub
}

func newFixture(sender cfgdomain.Sender, emails ...string) *fixture {
	f := &fixture{rcpt: &recipients{emails: emails}, out: &outbox{}, stats: &stats{}, pub: &capturePub{}}
	f.svc = New(Deps{
		Recipients: f.rcpt,
		Senders:    senders{sender: sender},
		Renderer:   renderer{},
		Email:      f.out,
		Dispatcher: esvc.NewDispatcher(settings{}, config.Config{EmailDispatchMode: config.DispatchSync}),
		Stats:      f.stats,
		Settings:   settings{},
	}, config.Config{BulkConcurrency: 4})
	f.svc.SetPublisher(f.pub)
	return f
}

var verified = cfgdomain.Sender{EmailAddress: "news@acme.io", IsVerified: true, Active: true}

func request() domain.Request {
	return domain.Request{
		Filters:            ordered.New(ordered.Pair{Key: "plan", Value: []any{"gold", "silver"}}),
		Channel:            domain.ChannelEmail,
		Format:             domain.Format{Subject: "Hi", Content: "Hello #name"},
		SourceEmailAddress: "news@acme.io",
	}
}

func TestInteract_SendsAndRecordsEveryRecipient(t *testing.T) {
	f := newFixture(verified, "ann@x.io", "bob@x.io", "cid@x.io")
	sum, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), request())
	require.NoError(t, err)

	assert.Equal(t, domain.Summary{Matched: 3, Dispatched: 3, Recorded: 3}, sum)
	assert.Equal(t, []string{"plan"}, f.rcpt.got.Keys)
	require.Len(t, f.out.sent, 3)
	bodies := map[string]string{}
	for _, m := range f.out.sent {
		assert.Equal(t, "news@acme.io", m.From)
		assert.Equal(t, "Hi", m.Subject)
		bodies[m.To] = m.Body
	}
	assert.Equal(t, "Hello bob", bodies["bob@x.io"])
	require.Len(t, f.stats.rows, 3)
	for _, r := range f.stats.rows {
		assert.Equal(t, "Hello "+strings.Split(r.ToEmailAddress, "@")[0], r.EmailContent)
	}
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, "interaction.email.dispatched", f.pub.events[0].Type)
	assert.Equal(t, "3", f.pub.events[0].Meta["matched"])
}

func TestInteract_UnverifiedSenderSendsNothing(t *testing.T) {
	f := newFixture(cfgdomain.Sender{EmailAddress: "news@acme.io", Active: true}, "ann@x.io")
	_, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), request())
	require.ErrorIs(t, err, cfgdomain.ErrEmailNotVerified)
	assert.Empty(t, f.out.sent)
	assert.Empty(t, f.stats.rows)
}

func TestInteract_InactiveSender(t *testing.T) {
	f := newFixture(cfgdomain.Sender{EmailAddress: "news@acme.io", IsVerified: true}, "ann@x.io")
	_, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), request())
	require.ErrorIs(t, err, cfgdomain.ErrInactiveIdentity)
	assert.Empty(t, f.out.sent)
}

func TestInteract_MissingConfigurationIsBadRequest(t *testing.T) {
	f := newFixture(verified, "ann@x.io")
	f.svc.Senders = senders{err: cfgdomain.ErrConfigurationNotFound}
	_, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), request())
	require.ErrorIs(t, err, cfgdomain.ErrConfigurationNotFound)
	assert.Equal(t, http.StatusBadRequest, apperror.From(err).Status)
}

func TestInteract_RenderFailureAbortsBeforeSending(t *testing.T) {
	f := newFixture(verified, "ann@x.io", "ghost@x.io")
	f.svc.Renderer = renderer{fail: map[string]bool{"ghost@x.io": true}}
	_, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), request())
	require.ErrorIs(t, err, cudomain.ErrUserNotFound)
	assert.Empty(t, f.out.sent)
	assert.Empty(t, f.stats.rows)
}

func TestInteract_FailedSendDoesNotStopSiblings(t *testing.T) {
	f := newFixture(verified, "ann@x.io", "bob@x.io", "cid@x.io")
	f.out.failFor = "bob@x.io"
	sum, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), request())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send to bob@x.io")
	assert.Equal(t, domain.Summary{Matched: 3, Dispatched: 2, Recorded: 3}, sum)
	assert.Len(t, f.out.sent, 2)
	assert.Len(t, f.stats.rows, 3, "stats are written even for the failed send")
}

func TestInteract_ConcurrencyFollowsTenantSetting(t *testing.T) {
	emails := make([]string, 30)
	for i := range emails {
		emails[i] = uuid.NewString() + "@x.io"
	}
	f := newFixture(verified, emails...)
	f.svc.Settings = settings{concurrency: 2}
	_, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), request())
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&f.out.peak), int32(2))
	assert.Len(t, f.out.sent, 30)
}

func TestInteract_AsyncSendsStayBounded(t *testing.T) {
	emails := make([]string, 40)
	for i := range emails {
		emails[i] = uuid.NewString() + "@x.io"
	}
	f := newFixture(verified, emails...)
	f.svc.Settings = settings{concurrency: 2}
	d := esvc.NewDispatcher(settings{}, config.Config{EmailDispatchMode: config.DispatchAsync})
	f.svc.Dispatcher = d

	sum, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), request())
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Matched: 40, Queued: 40, Recorded: 40}, sum)

	d.Wait()
	assert.Len(t, f.out.sent, 40)
	assert.LessOrEqual(t, atomic.LoadInt32(&f.out.peak), int32(2))
}

func TestInteract_AsyncSendFailureIsNotSurfaced(t *testing.T) {
	f := newFixture(verified, "ann@x.io", "bob@x.io")
	f.out.failFor = "bob@x.io"
	d := esvc.NewDispatcher(settings{}, config.Config{EmailDispatchMode: config.DispatchAsync})
	f.svc.Dispatcher = d

	sum, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), request())
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Matched: 2, Queued: 2, Recorded: 2}, sum)
	d.Wait()
	assert.Len(t, f.out.sent, 1)
}

func TestCountSend_CounterExpiresWhenIdle(t *testing.T) {
	f := newFixture(verified)
	tenant := uuid.New()
	f.svc.countSend(tenant)
	f.svc.countSend(tenant)
	f.svc.countSend(uuid.New())
	assert.Equal(t, 2, f.svc.rates.ItemCount())

	_, exp, ok := f.svc.rates.GetWithExpiration(tenant.String())
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(rateIdle), exp, 5*time.Second)
}

func TestInteract_OtherChannelsAreNoOps(t *testing.T) {
	f := newFixture(verified, "ann@x.io")
	req := request()
	req.Channel = "sms"
	sum, err := f.svc.Interact(context.Background(), uuid.New(), uuid.New(), req)
	require.NoError(t, err)
	assert.Zero(t, sum)
	assert.Empty(t, f.out.sent)
}
