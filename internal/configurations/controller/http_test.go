package controller

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/corvusHold/outreach/internal/configurations/domain"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	"github.com/corvusHold/outreach/internal/platform/testutil"
)

type fakeSvc struct {
	domain.Service
	deleted  []string
	attached [2]string
	readErr  error
}

func (f *fakeSvc) Read(context.Context, uuid.UUID) (domain.Configuration, error) {
	return domain.Configuration{}, f.readErr
}

func (f *fakeSvc) RegisterDomain(_ context.Context, _ uuid.UUID, d string) (edomain.DNSRecord, error) {
	return edomain.DNSRecord{Name: "_amazonses." + d, Type: "TXT", Value: "tok"}, nil
}

func (f *fakeSvc) DeleteAddress(_ context.Context, _ uuid.UUID, email string) error {
	f.deleted = append(f.deleted, email)
	return nil
}

func (f *fakeSvc) AttachAddressToDomain(_ context.Context, _ uuid.UUID, d, email string) error {
	f.attached = [2]string{d, email}
	return domain.ErrDomainNotFound
}

func newEcho(svc domain.Service) *echo.Echo {
	e := testutil.NewEcho()
	New(svc).WithJWT(testutil.FakeAuth(uuid.New(), uuid.New())).RegisterV1(e.Group("/api/v1"))
	return e
}

func TestRead_NotFoundIs404(t *testing.T) {
	e := newEcho(&fakeSvc{readErr: domain.ErrConfigurationNotFound})
	rec, env := testutil.Do(t, e, http.MethodGet, "/api/v1/configuration", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Configuration not found!", env.Message)
}

func TestRegisterDomain_ReturnsDNSRecord(t *testing.T) {
	e := newEcho(&fakeSvc{})
	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/configuration/email/domain", map[string]string{"emailDomain": "acme.io"})
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	assert.JSONEq(t, `{"name":"_amazonses.acme.io","type":"TXT","value":"tok"}`, string(env.Data))

	rec, env = testutil.Do(t, e, http.MethodPost, "/api/v1/configuration/email/domain", map[string]string{"emailDomain": "not a domain"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "emailDomain must be a valid domain", env.Message)
}

func TestDeleteAddress_BindsPathParam(t *testing.T) {
	svc := &fakeSvc{}
	e := newEcho(svc)
	rec, env := testutil.Do(t, e, http.MethodDelete, "/api/v1/configuration/email-address/ops@acme.io", nil)
	require.Equal(t, http.StatusOK, rec.Code, env.Message)
	assert.Equal(t, []string{"ops@acme.io"}, svc.deleted)

	rec, _ = testutil.Do(t, e, http.MethodDelete, "/api/v1/configuration/email-address/nope", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAttach_MapsDomainNotFound(t *testing.T) {
	svc := &fakeSvc{}
	e := newEcho(svc)
	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/configuration/email-domain/email-address",
		map[string]string{"emailDomain": "acme.io", "emailAddress": "a@acme.io"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Domain not found!", env.Message)
	assert.Equal(t, [2]string{"acme.io", "a@acme.io"}, svc.attached)
}
