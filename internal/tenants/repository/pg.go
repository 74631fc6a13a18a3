package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/platform/pgdb"
	domain "github.com/corvusHold/outreach/internal/tenants/domain"
)

type PGRepository struct{ db pgdb.DBTX }

func New(db pgdb.DBTX) *PGRepository { return &PGRepository{db: db} }

const (
	createCompanySQL = `INSERT INTO companies (id, name) VALUES ($1, $2)`
	getCompanySQL    = `SELECT id, name, created_at, updated_at FROM companies WHERE id = $1`
)

func (r *PGRepository) Create(ctx context.Context, id uuid.UUID, name string) error {
	_, err := r.db.Exec(ctx, createCompanySQL, id, name)
	return err
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	var c domain.Company
	err := r.db.QueryRow(ctx, getCompanySQL, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if pgdb.IsNoRows(err) {
		return domain.Company{}, domain.ErrCompanyNotFound
	}
	return c, err
}
