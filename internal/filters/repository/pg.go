package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domain "github.com/corvusHold/outreach/internal/filters/domain"
	"github.com/corvusHold/outreach/internal/platform/pgdb"
)

type PGRepository struct{ db pgdb.DBTX }

func New(db pgdb.DBTX) *PGRepository { return &PGRepository{db: db} }

var _ domain.Repository = (*PGRepository)(nil)

const (
	filterColumns = `id, company_id, label, type, key, "values", status, created_at, updated_at`

	createSQL = `
INSERT INTO filters (id, company_id, label, type, key, "values", status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`
	updateSQL = `
UPDATE filters SET label = $3, type = $4, key = $5, "values" = $6, updated_at = now()
WHERE company_id = $1 AND id = $2 AND status = 'active'
RETURNING ` + filterColumns
	getSQL         = `SELECT ` + filterColumns + ` FROM filters WHERE company_id = $1 AND id = $2`
	listActiveSQL  = `SELECT ` + filterColumns + ` FROM filters WHERE company_id = $1 AND status = 'active' ORDER BY created_at, id`
	activeByKeySQL = `SELECT ` + filterColumns + ` FROM filters WHERE company_id = $1 AND key = $2 AND status = 'active'`
	softDeleteSQL  = `UPDATE filters SET status = 'deleted', updated_at = now() WHERE company_id = $1 AND id = $2 AND status = 'active'`
)

func scanFilter(row pgx.Row) (domain.Filter, error) {
	var (
		f          domain.Filter
		typ, state string
		values     []byte
	)
	err := row.Scan(&f.ID, &f.CompanyID, &f.Label, &typ, &f.Key, &values, &state, &f.CreatedAt, &f.UpdatedAt)
	if pgdb.IsNoRows(err) {
		return domain.Filter{}, domain.ErrFilterNotFound
	}
	if err != nil {
		return domain.Filter{}, err
	}
	f.Type, f.Status, f.Values = domain.Type(typ), domain.Status(state), values
	return f, nil
}

func (r *PGRepository) Create(ctx context.Context, f domain.Filter) error {
	_, err := r.db.Exec(ctx, createSQL, f.ID, f.CompanyID, f.Label, string(f.Type), f.Key, []byte(f.Values), string(f.Status), f.CreatedAt)
	if pgdb.IsUniqueViolation(err) {
		return domain.ErrFilterExists.Wrap(err)
	}
	return err
}

func (r *PGRepository) Update(ctx context.Context, tenantID, id uuid.UUID, in domain.Input) (domain.Filter, error) {
	f, err := scanFilter(r.db.QueryRow(ctx, updateSQL, tenantID, id, in.Label, string(in.Type), in.Key, []byte(in.Values)))
	if pgdb.IsUniqueViolation(err) {
		return domain.Filter{}, domain.ErrFilterExists.Wrap(err)
	}
	return f, err
}

func (r *PGRepository) Get(ctx context.Context, tenantID, id uuid.UUID) (domain.Filter, error) {
	return scanFilter(r.db.QueryRow(ctx, getSQL, tenantID, id))
}

func (r *PGRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]domain.Filter, error) {
	rows, err := r.db.Query(ctx, listActiveSQL, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Filter{}
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PGRepository) ActiveByKey(ctx context.Context, tenantID uuid.UUID, key string) (domain.Filter, error) {
	return scanFilter(r.db.QueryRow(ctx, activeByKeySQL, tenantID, key))
}

func (r *PGRepository) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, softDeleteSQL, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFilterNotFound
	}
	return nil
}
