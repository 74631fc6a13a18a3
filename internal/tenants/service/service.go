package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domain "github.com/corvusHold/outreach/internal/tenants/domain"
)

type service struct {
	repo domain.Repository
}

func New(repo domain.Repository) domain.Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, name string) (domain.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Company{}, domain.ErrNameRequired
	}
	id := uuid.New()
	if err := s.repo.Create(ctx, id, name); err != nil {
		return domain.Company{}, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	return s.repo.GetByID(ctx, id)
}
