package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/platform/apperror"
)

// Company is the tenant: every record in the system is partitioned by its ID.
type Company struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrCompanyNotFound = apperror.NotFound("Company not found!").WithStatus(404)
	ErrNameRequired    = apperror.Validation("company name is required")
)

// Repository abstracts persistence for companies.
type Repository interface {
	Create(ctx context.Context, id uuid.UUID, name string) error
	GetByID(ctx context.Context, id uuid.UUID) (Company, error)
}

// Service encapsulates business logic for companies.
type Service interface {
	Create(ctx context.Context, name string) (Company, error)
	GetByID(ctx context.Context, id uuid.UUID) (Company, error)
}
