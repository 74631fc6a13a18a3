package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/platform/pgdb"
)

type PGRepository struct{ db pgdb.DBTX }

func New(db pgdb.DBTX) *PGRepository { return &PGRepository{db: db} }

const (
	getTenantSQL = `SELECT value FROM app_settings WHERE tenant_id = $1 AND key = $2`
	getGlobalSQL = `SELECT value FROM app_settings WHERE tenant_id IS NULL AND key = $1`
	upsertSQL    = `
INSERT INTO app_settings (id, tenant_id, key, value, is_secret)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT ((COALESCE(tenant_id, '00000000-0000-0000-0000-000000000000'::uuid)), key)
DO UPDATE SET value = EXCLUDED.value, is_secret = EXCLUDED.is_secret, updated_at = now()`
)

func (r *PGRepository) Get(ctx context.Context, key string, tenantID *uuid.UUID) (string, bool, error) {
	var v string
	if tenantID != nil {
		err := r.db.QueryRow(ctx, getTenantSQL, *tenantID, key).Scan(&v)
		if err == nil {
			return v, true, nil
		}
		if !pgdb.IsNoRows(err) {
			return "", false, err
		}
	}
	err := r.db.QueryRow(ctx, getGlobalSQL, key).Scan(&v)
	if pgdb.IsNoRows(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *PGRepository) Upsert(ctx context.Context, key string, tenantID *uuid.UUID, value string, secret bool) error {
	_, err := r.db.Exec(ctx, upsertSQL, uuid.New(), tenantID, key, value, secret)
	return err
}
