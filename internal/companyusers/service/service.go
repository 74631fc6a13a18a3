package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/corvusHold/outreach/internal/companyusers/domain"
	"github.com/corvusHold/outreach/internal/metrics"
	"github.com/corvusHold/outreach/internal/platform/ordered"
	"github.com/corvusHold/outreach/internal/platform/workerpool"
)

var _ domain.Service = (*Service)(nil)

// countParallelism caps concurrent per-key count queries.
const countParallelism = 8

type Service struct {
	repo domain.Repository
	log  zerolog.Logger
}

func New(repo domain.Repository) *Service {
	return &Service{repo: repo, log: zerolog.Nop()}
}

// SetLogger allows injection of a structured logger for debug tracing.
func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

func (s *Service) Import(ctx context.Context, tenantID uuid.UUID, filename string, r io.Reader) (int64, error) {
	format, err := detectFormat(filename)
	if err != nil {
		return 0, err
	}
	rows, err := readRows(format, r)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, domain.ErrMissingHeader
	}
	cols, err := header(rows[0])
	if err != nil {
		return 0, err
	}

	users := make([]domain.CompanyUser, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// A row with every cell empty yields no record, so the count can be below the data row count.
		if blank(row) {
			continue
		}
		fields := &ordered.Map{}
		for i, col := range cols {
			if col == "" {
				continue
			}
			v := ""
			if i < len(row) {
				v = row[i]
			}
			fields.Set(col, v)
		}
		users = append(users, domain.CompanyUser{ID: uuid.New(), CompanyID: tenantID, Fields: fields})
	}
	if len(users) == 0 {
		return 0, domain.ErrEmptyImport
	}

	n, err := s.repo.Insert(ctx, users)
	if err != nil {
		return 0, err
	}
	metrics.AddImportedRecords(format, n)
	s.log.Info().Str("tenant_id", tenantID.String()).Str("format", format).Int64("records", n).Msg("company users imported")
	return n, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, page domain.Page) ([]domain.CompanyUser, error) {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = domain.DefaultPageSize
	}
	if page.Size > domain.MaxPageSize {
		page.Size = domain.MaxPageSize
	}
	users, err := s.repo.List(ctx, tenantID, page)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.CompanyUser{}
	}
	return users, nil
}

// DiscoverFilterKeys samples about a tenth of the tenant's records and returns the field
// names every sampled record has, in the order of the first one. The result is approximate.
func (s *Service) DiscoverFilterKeys(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	total, err := s.repo.Count(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	keys := []string{}
	if total == 0 {
		return keys, nil
	}
	n := int(total / 10)
	if n < 1 {
		n = 1
	}
	sample, err := s.repo.Sample(ctx, tenantID, n)
	if err != nil {
		return nil, err
	}
	if len(sample) == 0 {
		return keys, nil
	}

	for _, k := range sample[0].Fields.Keys() {
		if _, reserved := domain.Reserved[k]; reserved {
			continue
		}
		common := true
		for _, u := range sample[1:] {
			if _, ok := u.Fields.Get(k); !ok {
				common = false
				break
			}
		}
		if common {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *Service) DiscoverFilterValues(ctx context.Context, tenantID uuid.UUID, key string) ([]any, error) {
	return s.repo.DistinctValues(ctx, tenantID, key)
}

// CountMatches counts each key independently; the entries are not combined.
func (s *Service) CountMatches(ctx context.Context, tenantID uuid.UUID, c domain.Criteria) ([]domain.FilterCount, error) {
	out, err := workerpool.Map(ctx, countParallelism, c.Keys, func(ctx context.Context, key string) (domain.FilterCount, error) {
		n, err := s.repo.CountMatching(ctx, tenantID, key, c.Values[key])
		if err != nil {
			return domain.FilterCount{}, err
		}
		return domain.FilterCount{FilterKey: key, FilterValues: c.Values[key], FilterCount: n}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) RecipientEmails(ctx context.Context, tenantID uuid.UUID, c domain.Criteria) ([]string, error) {
	return s.repo.Emails(ctx, tenantID, c)
}

func (s *Service) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (domain.CompanyUser, error) {
	return s.repo.FindByEmail(ctx, tenantID, email)
}

func (s *Service) PrefixSearch(ctx context.Context, tenantID uuid.UUID, query string, fields []string) ([]domain.CompanyUser, error) {
	if len(fields) == 0 {
		return []domain.CompanyUser{}, nil
	}
	users, err := s.repo.PrefixSearch(ctx, tenantID, query, fields, domain.SearchLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.CompanyUser{}
	}
	return users, nil
}
