package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvusHold/outreach/internal/platform/testutil"
	domain "github.com/corvusHold/outreach/internal/tenants/domain"
)

type fakeSvc struct{ companies map[uuid.UUID]domain.Company }

func (f fakeSvc) Create(context.Context, string) (domain.Company, error) {
	return domain.Company{}, nil
}

func (f fakeSvc) GetByID(_ context.Context, id uuid.UUID) (domain.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return domain.Company{}, domain.ErrCompanyNotFound
	}
	return c, nil
}

func TestGetCompany(t *testing.T) {
	tid := uuid.New()
	e := testutil.NewEcho()
	New(fakeSvc{companies: map[uuid.UUID]domain.Company{tid: {ID: tid, Name: "Acme"}}}).
		WithJWT(testutil.FakeAuth(uuid.New(), tid)).
		RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodGet, "/api/v1/company", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got domain.Company
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Acme", got.Name)
}

func TestGetCompany_NotFound(t *testing.T) {
	e := testutil.NewEcho()
	New(fakeSvc{}).WithJWT(testutil.FakeAuth(uuid.New(), uuid.New())).RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodGet, "/api/v1/company", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Company not found!", env.Message)
	assert.JSONEq(t, `{}`, string(env.Data))
}
