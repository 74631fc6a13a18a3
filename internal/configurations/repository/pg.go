package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	domain "github.com/corvusHold/outreach/internal/configurations/domain"
	"github.com/corvusHold/outreach/internal/platform/pgdb"
)

type PGRepository struct{ db pgdb.DBTX }

func New(db pgdb.DBTX) *PGRepository { return &PGRepository{db: db} }

var _ domain.Repository = (*PGRepository)(nil)

// document is the stored shape of the jsonb column.
type document struct {
	EmailConfigurations domain.EmailConfigurations `json:"emailConfigurations"`
}

const (
	getSQL    = `SELECT company_id, document, created_at, updated_at FROM configurations WHERE company_id = $1`
	createSQL = `INSERT INTO configurations (company_id, document) VALUES ($1, $2)`
	saveSQL   = `
INSERT INTO configurations (company_id, document) VALUES ($1, $2)
ON CONFLICT (company_id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()`
)

func encode(c domain.Configuration) ([]byte, error) {
	ec := c.EmailConfigurations
	if ec.Addresses == nil {
		ec.Addresses = []domain.Address{}
	}
	if ec.Domains == nil {
		ec.Domains = []domain.Domain{}
	}
	b, err := json.Marshal(document{EmailConfigurations: ec})
	if err != nil {
		return nil, fmt.Errorf("encode configuration %s: %w", c.CompanyID, err)
	}
	return b, nil
}

func (r *PGRepository) Get(ctx context.Context, tenantID uuid.UUID) (domain.Configuration, error) {
	var (
		c   domain.Configuration
		raw []byte
	)
	err := r.db.QueryRow(ctx, getSQL, tenantID).Scan(&c.CompanyID, &raw, &c.CreatedAt, &c.UpdatedAt)
	if pgdb.IsNoRows(err) {
		return domain.Configuration{}, domain.ErrConfigurationNotFound
	}
	if err != nil {
		return domain.Configuration{}, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Configuration{}, fmt.Errorf("decode configuration %s: %w", tenantID, err)
	}
	c.EmailConfigurations = doc.EmailConfigurations
	return c, nil
}

func (r *PGRepository) Create(ctx context.Context, c domain.Configuration) error {
	b, err := encode(c)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, createSQL, c.CompanyID, b)
	if pgdb.IsUniqueViolation(err) {
		return domain.ErrDuplicateConfiguration.Wrap(err)
	}
	return err
}

func (r *PGRepository) Save(ctx context.Context, c domain.Configuration) error {
	b, err := encode(c)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, saveSQL, c.CompanyID, b)
	return err
}
