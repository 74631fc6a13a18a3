package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domain "github.com/corvusHold/outreach/internal/companyusers/domain"
	"github.com/corvusHold/outreach/internal/platform/ordered"
	"github.com/corvusHold/outreach/internal/platform/pgdb"
)

// DB is a pool or connection that can also bulk-load with COPY.
type DB interface {
	pgdb.DBTX
	pgdb.Copier
}

type PGRepository struct{ db DB }

func New(db DB) *PGRepository { return &PGRepository{db: db} }

var _ domain.Repository = (*PGRepository)(nil)

const (
	selectColumns = `SELECT id, company_id, attributes, created_at FROM company_users`

	listSQL = selectColumns + ` WHERE company_id = $1 ORDER BY seq LIMIT $2 OFFSET $3`

	countSQL = `SELECT count(*) FROM company_users WHERE company_id = $1`

	sampleSQL = selectColumns + ` WHERE company_id = $1 ORDER BY random() LIMIT $2`

	// json has no equality operator, so grouping goes through jsonb. first_seen keeps import order.
	distinctValuesSQL = `
SELECT v FROM (
    SELECT attributes::jsonb -> $2 AS v, min(seq) AS first_seen
    FROM company_users
    WHERE company_id = $1 AND attributes -> $2 IS NOT NULL
    GROUP BY 1
) t ORDER BY first_seen`

	countMatchingSQL = `SELECT count(*) FROM company_users WHERE company_id = $1 AND attributes ->> $2 = ANY($3)`

	findByEmailSQL = selectColumns + ` WHERE company_id = $1 AND attributes ->> 'email' = $2 ORDER BY seq LIMIT 1`
)

func (r *PGRepository) Insert(ctx context.Context, users []domain.CompanyUser) (int64, error) {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		attrs, err := json.Marshal(u.Fields)
		if err != nil {
			return 0, fmt.Errorf("encode company user %s: %w", u.ID, err)
		}
		rows = append(rows, []any{u.ID, u.CompanyID, attrs})
	}
	return r.db.CopyFrom(ctx,
		pgx.Identifier{"company_users"},
		[]string{"id", "company_id", "attributes"},
		pgx.CopyFromRows(rows),
	)
}

func scanUser(row pgx.Row) (domain.CompanyUser, error) {
	var (
		u     domain.CompanyUser
		attrs []byte
	)
	if err := row.Scan(&u.ID, &u.CompanyID, &attrs, &u.CreatedAt); err != nil {
		return domain.CompanyUser{}, err
	}
	u.Fields = &ordered.Map{}
	if err := json.Unmarshal(attrs, u.Fields); err != nil {
		return domain.CompanyUser{}, fmt.Errorf("decode company user %s: %w", u.ID, err)
	}
	return u, nil
}

func (r *PGRepository) query(ctx context.Context, sql string, args ...any) ([]domain.CompanyUser, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.CompanyUser
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PGRepository) List(ctx context.Context, tenantID uuid.UUID, page domain.Page) ([]domain.CompanyUser, error) {
	return r.query(ctx, listSQL, tenantID, page.Size, page.Offset())
}

func (r *PGRepository) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, countSQL, tenantID).Scan(&n)
	return n, err
}

func (r *PGRepository) Sample(ctx context.Context, tenantID uuid.UUID, n int) ([]domain.CompanyUser, error) {
	return r.query(ctx, sampleSQL, tenantID, n)
}

func (r *PGRepository) DistinctValues(ctx context.Context, tenantID uuid.UUID, key string) ([]any, error) {
	rows, err := r.db.Query(ctx, distinctValuesSQL, tenantID, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []any{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		dec := json.NewDecoder(strings.NewReader(string(raw)))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *PGRepository) CountMatching(ctx context.Context, tenantID uuid.UUID, key string, values []string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, countMatchingSQL, tenantID, key, values).Scan(&n)
	return n, err
}

// criteriaWhere renders every criterion as attributes ->> key = ANY(values), ANDed
// after the tenant predicate. Placeholders start at $2.
func criteriaWhere(c domain.Criteria) (string, []any) {
	var (
		b    strings.Builder
		args []any
	)
	b.WriteString("company_id = $1")
	for _, k := range c.Keys {
		args = append(args, k, c.Values[k])
		fmt.Fprintf(&b, " AND attributes ->> $%d = ANY($%d)", len(args), len(args)+1)
	}
	return b.String(), args
}

func (r *PGRepository) Emails(ctx context.Context, tenantID uuid.UUID, c domain.Criteria) ([]string, error) {
	where, args := criteriaWhere(c)
	sql := `SELECT attributes ->> 'email' FROM company_users WHERE ` + where +
		` AND attributes ->> 'email' IS NOT NULL ORDER BY seq`
	rows, err := r.db.Query(ctx, sql, append([]any{tenantID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (domain.CompanyUser, error) {
	u, err := scanUser(r.db.QueryRow(ctx, findByEmailSQL, tenantID, email))
	if pgdb.IsNoRows(err) {
		return domain.CompanyUser{}, domain.ErrUserNotFound
	}
	return u, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *PGRepository) PrefixSearch(ctx context.Context, tenantID uuid.UUID, query string, fields []string, limit int) ([]domain.CompanyUser, error) {
	args := []any{tenantID, likeEscaper.Replace(query) + "%", limit}
	ors := make([]string, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
		ors = append(ors, fmt.Sprintf("attributes ->> $%d ILIKE $2", len(args)))
	}
	sql := selectColumns + ` WHERE company_id = $1 AND (` + strings.Join(ors, " OR ") + `) ORDER BY seq LIMIT $3`
	return r.query(ctx, sql, args...)
}
