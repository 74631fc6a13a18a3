package repository

import (
	"context"
	"encoding/json"

	domain "github.com/corvusHold/outreach/internal/interactions/domain"
	"github.com/corvusHold/outreach/internal/platform/pgdb"
)

type PGStats struct{ db pgdb.DBTX }

func NewStats(db pgdb.DBTX) *PGStats { return &PGStats{db: db} }

var _ domain.StatsRepository = (*PGStats)(nil)

const (
	createStatsSQL = `
INSERT INTO email_stats (id, company_id, from_email_address, to_email_address, email_subject, email_content, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`
	recordDetailsSQL = `
UPDATE email_stats SET details = $3, updated_at = now()
WHERE id = (
    SELECT id FROM email_stats
    WHERE from_email_address = $1 AND to_email_address = $2
    ORDER BY created_at DESC
    LIMIT 1
)`
)

func (r *PGStats) Create(ctx context.Context, s domain.EmailStats) error {
	_, err := r.db.Exec(ctx, createStatsSQL, s.ID, s.CompanyID, s.FromEmailAddress, s.ToEmailAddress, s.EmailSubject, s.EmailContent, s.CreatedAt)
	return err
}

func (r *PGStats) RecordDetails(ctx context.Context, from, to string, details json.RawMessage) error {
	tag, err := r.db.Exec(ctx, recordDetailsSQL, from, to, []byte(details))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStatsMissing
	}
	return nil
}
