package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/corvusHold/outreach/internal/auth/domain"
	amw "github.com/corvusHold/outreach/internal/auth/middleware"
	"github.com/corvusHold/outreach/internal/config"
	evdomain "github.com/corvusHold/outreach/internal/events/domain"
	evsvc "github.com/corvusHold/outreach/internal/events/service"
	"github.com/corvusHold/outreach/internal/metrics"
	tdomain "github.com/corvusHold/outreach/internal/tenants/domain"
)

var _ domain.Service = (*Service)(nil)

type Service struct {
	repo      domain.Repository
	companies tdomain.Service
	cfg       config.Config
	pub       evdomain.Publisher
	log       zerolog.Logger
	now       func() time.Time
	cost      int
}

func New(repo domain.Repository, companies tdomain.Service, cfg config.Config) *Service {
	return &Service{repo: repo, companies: companies, cfg: cfg, pub: evsvc.Nop{}, log: zerolog.Nop(), now: time.Now, cost: bcrypt.DefaultCost}
}

// SetPublisher allows tests or callers to override the event publisher.
func (s *Service) SetPublisher(p evdomain.Publisher) { s.pub = p }

// SetLogger allows injection of a structured logger for debug tracing.
func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (s *Service) Register(ctx context.Context, in domain.RegisterInput) (domain.Session, error) {
	in.EmailAddress = normalizeEmail(in.EmailAddress)
	if _, err := s.repo.GetByEmail(ctx, in.EmailAddress); err == nil {
		metrics.IncAuthOutcome("register", "failure")
		return domain.Session{}, domain.ErrEmailAlreadyRegistered
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return domain.Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.Session{}, err
	}
	companyID := uuid.New()
	u := domain.User{
		ID:           uuid.New(),
		CompanyID:    companyID,
		EmailAddress: in.EmailAddress,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}
	if err := s.repo.CreateWithCompany(ctx, companyID, strings.TrimSpace(in.CompanyName), u); err != nil {
		metrics.IncAuthOutcome("register", "failure")
		return domain.Session{}, err
	}
	created, err := s.repo.GetByID(ctx, u.ID)
	if err != nil {
		return domain.Session{}, err
	}
	tok, err := amw.Sign(s.cfg, created.ID, created.CompanyID, s.now())
	if err != nil {
		return domain.Session{}, err
	}
	_ = s.pub.Publish(ctx, evdomain.Event{
		Type:     evdomain.TypeRegisterSuccess,
		TenantID: created.CompanyID,
		ActorID:  created.ID,
		Meta:     map[string]string{"email": created.EmailAddress},
		Time:     s.now(),
	})
	metrics.IncAuthOutcome("register", "success")
	return domain.Session{Token: tok, User: created}, nil
}

// Login checks the password and maintains the failed-attempt counter. The lock
// flag is recorded but does not block a later correct password.
func (s *Service) Login(ctx context.Context, in domain.LoginInput) (domain.Session, error) {
	in.EmailAddress = normalizeEmail(in.EmailAddress)
	u, err := s.repo.GetByEmail(ctx, in.EmailAddress)
	if errors.Is(err, domain.ErrUserNotFound) {
		metrics.IncAuthOutcome("login", "failure")
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		attempts, locked, err := s.repo.RecordFailedLogin(ctx, u.ID, domain.MaxInvalidLoginAttempts)
		if err != nil {
			return domain.Session{}, err
		}
		_ = s.pub.Publish(ctx, evdomain.Event{
			Type:     evdomain.TypeLoginFailure,
			TenantID: u.CompanyID,
			ActorID:  u.ID,
			Meta:     map[string]string{"ip": in.IP, "user_agent": in.UserAgent},
			Time:     s.now(),
		})
		if attempts > domain.MaxInvalidLoginAttempts {
			s.log.Warn().Str("user_id", u.ID.String()).Int("attempts", attempts).Bool("locked", locked).Msg("login lock flag set")
			metrics.IncAuthOutcome("login", "locked")
			return domain.Session{}, domain.ErrTooManyInvalidLoginAttempts
		}
		metrics.IncAuthOutcome("login", "failure")
		return domain.Session{}, domain.ErrInvalidCredentials.WithStatus(http.StatusForbidden)
	}

	now := s.now()
	if err := s.repo.RecordSuccessfulLogin(ctx, u.ID, now); err != nil {
		return domain.Session{}, err
	}
	u.InvalidLoginAttempts = 0
	u.LastLoginAt = &now

	tok, err := amw.Sign(s.cfg, u.ID, u.CompanyID, now)
	if err != nil {
		return domain.Session{}, err
	}
	_ = s.pub.Publish(ctx, evdomain.Event{
		Type:     evdomain.TypeLoginSuccess,
		TenantID: u.CompanyID,
		ActorID:  u.ID,
		Meta:     map[string]string{"ip": in.IP, "user_agent": in.UserAgent, "email": u.EmailAddress},
		Time:     now,
	})
	metrics.IncAuthOutcome("login", "success")
	return domain.Session{Token: tok, User: u}, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (domain.Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	c, err := s.companies.GetByID(ctx, u.CompanyID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.Profile{User: u, Company: c}, nil
}
