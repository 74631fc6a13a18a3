package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/corvusHold/outreach/internal/filters/domain"
)

var _ domain.Service = (*Service)(nil)

type Service struct {
	repo domain.Repository
	now  func() time.Time
}

func New(repo domain.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func clean(in domain.Input) (domain.Input, error) {
	in.Label = strings.TrimSpace(in.Label)
	in.Key = strings.TrimSpace(in.Key)
	if !bytes.HasPrefix(bytes.TrimSpace(in.Values), []byte("[")) {
		return in, domain.ErrValuesNotArray
	}
	return in, nil
}

// ensureKeyFree fails when an active filter other than self already uses key.
func (s *Service) ensureKeyFree(ctx context.Context, tenantID uuid.UUID, key string, self uuid.UUID) error {
	existing, err := s.repo.ActiveByKey(ctx, tenantID, key)
	switch {
	case errors.Is(err, domain.ErrFilterNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return domain.ErrFilterExists
	}
	return nil
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in domain.Input) (domain.Filter, error) {
	in, err := clean(in)
	if err != nil {
		return domain.Filter{}, err
	}
	if err := s.ensureKeyFree(ctx, tenantID, in.Key, uuid.Nil); err != nil {
		return domain.Filter{}, err
	}
	now := s.now().UTC()
	f := domain.Filter{
		ID:        uuid.New(),
		CompanyID: tenantID,
		Label:     in.Label,
		Type:      in.Type,
		Key:       in.Key,
		Values:    in.Values,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return domain.Filter{}, err
	}
	return f, nil
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, in domain.Input) (domain.Filter, error) {
	in, err := clean(in)
	if err != nil {
		return domain.Filter{}, err
	}
	if err := s.ensureKeyFree(ctx, tenantID, in.Key, id); err != nil {
		return domain.Filter{}, err
	}
	return s.repo.Update(ctx, tenantID, id, in)
}

func (s *Service) Get(ctx context.Context, tenantID, id uuid.UUID) (domain.Filter, error) {
	return s.repo.Get(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Filter, error) {
	return s.repo.ListActive(ctx, tenantID)
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, tenantID, id)
}
