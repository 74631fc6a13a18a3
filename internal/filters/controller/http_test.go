package controller

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/corvusHold/outreach/internal/filters/domain"
	"github.com/corvusHold/outreach/internal/platform/testutil"
)

type fakeSvc struct {
	domain.Service
	created domain.Input
	tenant  uuid.UUID
}

func (f *fakeSvc) Create(_ context.Context, tid uuid.UUID, in domain.Input) (domain.Filter, error) {
	f.tenant, f.created = tid, in
	return domain.Filter{ID: uuid.New(), CompanyID: tid, Label: in.Label, Type: in.Type, Key: in.Key, Values: in.Values, Status: domain.StatusActive}, nil
}

func (f *fakeSvc) Get(context.Context, uuid.UUID, uuid.UUID) (domain.Filter, error) {
	return domain.Filter{}, domain.ErrFilterNotFound
}

func TestCreate_BindsFilterFields(t *testing.T) {
	svc := &fakeSvc{}
	tid := uuid.New()
	e := testutil.NewEcho()
	New(svc).WithJWT(testutil.FakeAuth(uuid.New(), tid)).RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/filters",
		`{"filterLabel":"Plan","filterType":"checkbox","filterKey":"plan","filterValues":["gold","silver"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	assert.Equal(t, tid, svc.tenant)
	assert.Equal(t, domain.TypeCheckbox, svc.created.Type)
	assert.JSONEq(t, `["gold","silver"]`, string(svc.created.Values))
	assert.Contains(t, string(env.Data), `"filterKey":"plan"`)
}

func TestCreate_RejectsUnknownType(t *testing.T) {
	e := testutil.NewEcho()
	New(&fakeSvc{}).WithJWT(testutil.FakeAuth(uuid.New(), uuid.New())).RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/filters",
		`{"filterLabel":"Plan","filterType":"slider","filterKey":"plan","filterValues":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "filterType must be one of [input dropdown radio checkbox range-slider]", env.Message)
}

func TestGet_InvalidAndMissingID(t *testing.T) {
	e := testutil.NewEcho()
	New(&fakeSvc{}).WithJWT(testutil.FakeAuth(uuid.New(), uuid.New())).RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodGet, "/api/v1/filters/not-a-uuid", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid filter id", env.Message)

	rec, env = testutil.Do(t, e, http.MethodGet, "/api/v1/filters/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Filter not found!", env.Message)
}
