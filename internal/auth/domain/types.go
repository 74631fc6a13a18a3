package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/platform/apperror"
	tdomain "github.com/corvusHold/outreach/internal/tenants/domain"
)

// MaxInvalidLoginAttempts is the number of consecutive failures after which
// the account is flagged as locked.
const MaxInvalidLoginAttempts = 5

// User is a tenant operator account.
type User struct {
	ID                     uuid.UUID  `json:"id"`
	CompanyID              uuid.UUID  `json:"companyId"`
	EmailAddress           string     `json:"emailAddress"`
	PasswordHash           string     `json:"-"`
	FirstName              string     `json:"firstName"`
	LastName               string     `json:"lastName"`
	InvalidLoginAttempts   int        `json:"invalidLoginAttempts"`
	IsLoginWithEmailLocked bool       `json:"isLoginWithEmailLocked"`
	LastLoginAt            *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
}

type RegisterInput struct {
	CompanyName  string
	EmailAddress string
	Password     string
	FirstName    string
	LastName     string
}

type LoginInput struct {
	EmailAddress string
	Password     string
	IP           string
	UserAgent    string
}

// Session is returned by register and login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Profile is the authenticated account with its company.
type Profile struct {
	User    User            `json:"user"`
	Company tdomain.Company `json:"company"`
}

var (
	ErrEmailAlreadyRegistered      = apperror.Duplicate("Email address belongs to another account!")
	ErrInvalidCredentials          = apperror.BadRequest("Invalid email address or password!")
	ErrTooManyInvalidLoginAttempts = apperror.Forbidden("Too many invalid login attempts!")
	ErrUserNotFound                = apperror.NotFound("User not found!")
)

// Repository abstracts persistence for accounts.
type Repository interface {
	// CreateWithCompany stores the company and its first account atomically.
	CreateWithCompany(ctx context.Context, companyID uuid.UUID, companyName string, u User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// RecordFailedLogin increments the counter and sets the lock flag once it
	// exceeds lockAfter. It returns the updated state.
	RecordFailedLogin(ctx context.Context, id uuid.UUID, lockAfter int) (attempts int, locked bool, err error)
	RecordSuccessfulLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Service encapsulates registration and login.
type Service interface {
	Register(ctx context.Context, in RegisterInput) (Session, error)
	Login(ctx context.Context, in LoginInput) (Session, error)
	Me(ctx context.Context, userID uuid.UUID) (Profile, error)
}
