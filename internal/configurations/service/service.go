package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	domain "github.com/corvusHold/outreach/internal/configurations/domain"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	evdomain "github.com/corvusHold/outreach/internal/events/domain"
	evsvc "github.com/corvusHold/outreach/internal/events/service"
)

var _ domain.Service = (*Service)(nil)

type Service struct {
	repo       domain.Repository
	identities edomain.IdentityProvider
	dispatcher edomain.Dispatcher
	pub        evdomain.Publisher
	log        zerolog.Logger
	now        func() time.Time
}

func New(repo domain.Repository, identities edomain.IdentityProvider, dispatcher edomain.Dispatcher) *Service {
	return &Service{repo: repo, identities: identities, dispatcher: dispatcher, pub: evsvc.Nop{}, log: zerolog.Nop(), now: time.Now}
}

// SetPublisher allows tests or callers to override the event publisher.
func (s *Service) SetPublisher(p evdomain.Publisher) { s.pub = p }

// SetLogger allows injection of a structured logger for debug tracing.
func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

func normalize(v string) string { return strings.ToLower(strings.TrimSpace(v)) }

// load returns the tenant's configuration, or a fresh one when none exists yet.
func (s *Service) load(ctx context.Context, tenantID uuid.UUID) (domain.Configuration, error) {
	c, err := s.repo.Get(ctx, tenantID)
	if errors.Is(err, domain.ErrConfigurationNotFound) {
		return domain.Configuration{CompanyID: tenantID}, nil
	}
	return c, err
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, addresses, domains []string) error {
	c := domain.Configuration{CompanyID: tenantID}
	for _, a := range addresses {
		if err := c.AddAddress(normalize(a)); err != nil {
			return err
		}
	}
	for _, d := range domains {
		if _, err := c.AddDomain(normalize(d)); err != nil {
			return err
		}
	}
	return s.repo.Create(ctx, c)
}

// Read refreshes verification flags from the provider, persists them and returns the
// active entries only.
func (s *Service) Read(ctx context.Context, tenantID uuid.UUID) (domain.Configuration, error) {
	var (
		c        domain.Configuration
		verified edomain.IdentitySet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c, err = s.repo.Get(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		verified, err = s.identities.VerifiedIdentities(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Configuration{}, err
	}
	if c.MarkVerified(verified) {
		if err := s.repo.Save(ctx, c); err != nil {
			return domain.Configuration{}, err
		}
	}
	return c.Active(), nil
}

func (s *Service) RegisterAddress(ctx context.Context, tenantID uuid.UUID, email string) error {
	email = normalize(email)
	c, err := s.load(ctx, tenantID)
	if err != nil {
		return err
	}
	if err := c.AddAddress(email); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}
	return s.dispatcher.Dispatch(ctx, tenantID, "identity.verify_address", func(ctx context.Context) error {
		return s.identities.RequestVerification(ctx, email)
	})
}

// RegisterDomain stores the domain, asks the provider for its TXT record and keeps the
// record on the new entry.
func (s *Service) RegisterDomain(ctx context.Context, tenantID uuid.UUID, domainName string) (edomain.DNSRecord, error) {
	domainName = normalize(domainName)
	c, err := s.load(ctx, tenantID)
	if err != nil {
		return edomain.DNSRecord{}, err
	}
	d, err := c.AddDomain(domainName)
	if err != nil {
		return edomain.DNSRecord{}, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return edomain.DNSRecord{}, err
	}
	rec, err := s.identities.RequestDomainVerification(ctx, domainName)
	if err != nil {
		return edomain.DNSRecord{}, err
	}
	d.DNSInfo = &rec
	if err := s.repo.Save(ctx, c); err != nil {
		return edomain.DNSRecord{}, err
	}
	return rec, nil
}

func (s *Service) VerifyAddress(ctx context.Context, email string) error {
	verified, err := s.identities.VerifiedIdentities(ctx)
	if err != nil {
		return err
	}
	if !verified.Has(normalize(email)) {
		return domain.ErrEmailNotVerified
	}
	return nil
}

func (s *Service) VerifyDomain(ctx context.Context, domainName string) error {
	verified, err := s.identities.VerifiedIdentities(ctx)
	if err != nil {
		return err
	}
	if !verified.Has(normalize(domainName)) {
		return domain.ErrDomainNotVerified
	}
	return nil
}

func (s *Service) AttachAddressToDomain(ctx context.Context, tenantID uuid.UUID, domainName, email string) error {
	c, err := s.repo.Get(ctx, tenantID)
	if errors.Is(err, domain.ErrConfigurationNotFound) {
		return domain.ErrDomainNotFound
	}
	if err != nil {
		return err
	}
	if err := c.AttachAddress(normalize(domainName), normalize(email)); err != nil {
		return err
	}
	return s.repo.Save(ctx, c)
}

func (s *Service) DeleteAddress(ctx context.Context, tenantID uuid.UUID, email string) error {
	email = normalize(email)
	c, err := s.repo.Get(ctx, tenantID)
	if errors.Is(err, domain.ErrConfigurationNotFound) {
		return domain.ErrEmailNotFound
	}
	if err != nil {
		return err
	}
	if !c.DeleteAddress(email) {
		return domain.ErrEmailNotFound
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}
	return s.forget(ctx, tenantID, email)
}

func (s *Service) DeleteDomain(ctx context.Context, tenantID uuid.UUID, domainName string) error {
	domainName = normalize(domainName)
	c, err := s.repo.Get(ctx, tenantID)
	if errors.Is(err, domain.ErrConfigurationNotFound) {
		return domain.ErrDomainNotFound
	}
	if err != nil {
		return err
	}
	if !c.DeleteDomain(domainName) {
		return domain.ErrDomainNotFound
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return err
	}
	return s.forget(ctx, tenantID, domainName)
}

// forget removes a soft-deleted identity at the provider. The stored status flip stands
// even when the provider call fails.
func (s *Service) forget(ctx context.Context, tenantID uuid.UUID, identity string) error {
	_ = s.pub.Publish(ctx, evdomain.Event{
		Type:     evdomain.TypeIdentityDeleted,
		TenantID: tenantID,
		Meta:     map[string]string{"identity": identity},
		Time:     s.now(),
	})
	err := s.dispatcher.Dispatch(ctx, tenantID, "identity.delete", func(ctx context.Context) error {
		return s.identities.DeleteIdentity(ctx, identity)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("identity", identity).Msg("provider identity delete failed")
	}
	return nil
}

// ListVerifiedAddresses returns the addresses that may send. A tenant without a
// configuration has none.
func (s *Service) ListVerifiedAddresses(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	c, err := s.repo.Get(ctx, tenantID)
	if errors.Is(err, domain.ErrConfigurationNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return c.VerifiedAddresses(), nil
}

func (s *Service) LookupSender(ctx context.Context, tenantID uuid.UUID, email string) (domain.Sender, error) {
	c, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		return domain.Sender{}, err
	}
	sender, ok := c.LookupSender(normalize(email))
	if !ok {
		return domain.Sender{}, domain.ErrConfigurationNotFound
	}
	return sender, nil
}
