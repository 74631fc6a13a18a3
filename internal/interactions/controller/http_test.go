package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgdomain "github.com/corvusHold/outreach/internal/configurations/domain"
	domain "github.com/corvusHold/outreach/internal/interactions/domain"
	"github.com/corvusHold/outreach/internal/platform/ratelimit"
	"github.com/corvusHold/outreach/internal/platform/testutil"
)

type fakeSvc struct {
	got    []domain.Request
	tenant uuid.UUID
	err    error
}

func (f *fakeSvc) Interact(_ context.Context, tenantID, _ uuid.UUID, req domain.Request) (domain.Summary, error) {
	f.got = append(f.got, req)
	f.tenant = tenantID
	if f.err != nil {
		return domain.Summary{}, f.err
	}
	return domain.Summary{Matched: 2, Dispatched: 2, Recorded: 2}, nil
}

func body() map[string]any {
	return map[string]any{
		"filters":            map[string]any{"plan": []string{"gold"}, "city": "Oslo"},
		"channel":            "email",
		"format":             map[string]string{"subject": "Hi", "content": "Hello #name"},
		"sourceEmailAddress": "news@acme.io",
	}
}

func TestInteract_ReturnsSummary(t *testing.T) {
	svc := &fakeSvc{}
	tid := uuid.New()
	e := testutil.NewEcho()
	New(svc).WithJWT(testutil.FakeAuth(uuid.New(), tid)).RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/company-users/interact", body())
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	require.Len(t, svc.got, 1)
	assert.Equal(t, tid, svc.tenant)
	assert.Equal(t, "Hello #name", svc.got[0].Format.Content)
	assert.ElementsMatch(t, []string{"plan", "city"}, svc.got[0].Filters.Keys())

	var sum domain.Summary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, 2, sum.Dispatched)
}

func TestInteract_RequiresSourceAddress(t *testing.T) {
	e := testutil.NewEcho()
	New(&fakeSvc{}).WithJWT(testutil.FakeAuth(uuid.New(), uuid.New())).RegisterV1(e.Group("/api/v1"))

	b := body()
	delete(b, "sourceEmailAddress")
	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/company-users/interact", b)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "sourceEmailAddress is required", env.Message)
}

func TestInteract_UnverifiedSender(t *testing.T) {
	e := testutil.NewEcho()
	New(&fakeSvc{err: cfgdomain.ErrEmailNotVerified}).WithJWT(testutil.FakeAuth(uuid.New(), uuid.New())).RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/company-users/interact", body())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email address is not verified!", env.Message)
}

func TestInteract_RateLimitedPerTenant(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	busy := testutil.NewEcho()
	New(&fakeSvc{}).WithJWT(testutil.FakeAuth(uuid.New(), uuid.New())).WithRateLimit(nil, store).RegisterV1(busy.Group("/api/v1"))

	for i := 0; i < defaultInteractLimit; i++ {
		rec, _ := testutil.Do(t, busy, http.MethodPost, "/api/v1/company-users/interact", body())
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
	}
	rec, _ := testutil.Do(t, busy, http.MethodPost, "/api/v1/company-users/interact", body())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	other := testutil.NewEcho()
	New(&fakeSvc{}).WithJWT(testutil.FakeAuth(uuid.New(), uuid.New())).WithRateLimit(nil, store).RegisterV1(other.Group("/api/v1"))
	rec, _ = testutil.Do(t, other, http.MethodPost, "/api/v1/company-users/interact", body())
	assert.Equal(t, http.StatusOK, rec.Code)
}
