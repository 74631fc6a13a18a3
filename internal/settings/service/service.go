package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

type Service struct{ repo sdomain.Repository }

func New(repo sdomain.Repository) *Service { return &Service{repo: repo} }

func (s *Service) lookup(ctx context.Context, key string, tenantID *uuid.UUID) (string, bool, error) {
	v, ok, err := s.repo.Get(ctx, key, tenantID)
	if err != nil || !ok {
		return "", false, err
	}
	v = strings.TrimSpace(v)
	return v, v != "", nil
}

// GetString returns the tenant value, then the global value, then def.
func (s *Service) GetString(ctx context.Context, key string, tenantID *uuid.UUID, def string) (string, error) {
	v, ok, err := s.lookup(ctx, key, tenantID)
	if err != nil || !ok {
		return def, err
	}
	return v, nil
}

// GetDuration parses Go duration strings; unparsable values yield def.
func (s *Service) GetDuration(ctx context.Context, key string, tenantID *uuid.UUID, def time.Duration) (time.Duration, error) {
	v, ok, err := s.lookup(ctx, key, tenantID)
	if err != nil || !ok {
		return def, err
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, nil
	}
	return d, nil
}

// GetInt parses integers; unparsable values yield def.
func (s *Service) GetInt(ctx context.Context, key string, tenantID *uuid.UUID, def int) (int, error) {
	v, ok, err := s.lookup(ctx, key, tenantID)
	if err != nil || !ok {
		return def, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, nil
	}
	return n, nil
}
