//go:build integration

package repository

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/corvusHold/outreach/internal/interactions/domain"
	trepo "github.com/corvusHold/outreach/internal/tenants/repository"
)

func TestPGStats_RecordDetailsHitsLatest_Integration(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("skipping integration test: DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
	require.NoError(t, err)
	defer pool.Close()

	tid := uuid.New()
	require.NoError(t, trepo.New(pool).Create(ctx, tid, "itest-"+tid.String()))
	repo := NewStats(pool)

	from := "news+" + tid.String() + "@acme.io"
	older, newer := uuid.New(), uuid.New()
	now := time.Now().UTC()
	for id, at := range map[uuid.UUID]time.Time{older: now.Add(-time.Hour), newer: now} {
		require.NoError(t, repo.Create(ctx, domain.EmailStats{
			ID: id, CompanyID: tid, FromEmailAddress: from, ToEmailAddress: "ann@x.io",
			EmailSubject: "Hi", EmailContent: "Hello Ann", CreatedAt: at,
		}))
	}

	details := json.RawMessage(`{"eventType":"Delivery"}`)
	require.NoError(t, repo.RecordDetails(ctx, from, "ann@x.io", details))

	got := map[uuid.UUID][]byte{}
	rows, err := pool.Query(ctx, `SELECT id, details FROM email_stats WHERE from_email_address = $1`, from)
	require.NoError(t, err)
	for rows.Next() {
		var (
			id uuid.UUID
			d  []byte
		)
		require.NoError(t, rows.Scan(&id, &d))
		got[id] = d
	}
	require.NoError(t, rows.Err())
	assert.Nil(t, got[older])
	assert.JSONEq(t, string(details), string(got[newer]))

	err = repo.RecordDetails(ctx, from, "nobody@x.io", details)
	assert.ErrorIs(t, err, domain.ErrStatsMissing)
}
