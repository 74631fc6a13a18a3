package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/corvusHold/outreach/internal/auth/domain"
	"github.com/corvusHold/outreach/internal/platform/ratelimit"
	"github.com/corvusHold/outreach/internal/platform/testutil"
	tdomain "github.com/corvusHold/outreach/internal/tenants/domain"
)

type fakeSvc struct {
	registered []domain.RegisterInput
	loginErr   error
}

func (f *fakeSvc) Register(_ context.Context, in domain.RegisterInput) (domain.Session, error) {
	f.registered = append(f.registered, in)
	return domain.Session{Token: "tok", User: domain.User{EmailAddress: in.EmailAddress}}, nil
}

func (f *fakeSvc) Login(_ context.Context, in domain.LoginInput) (domain.Session, error) {
	if f.loginErr != nil {
		return domain.Session{}, f.loginErr
	}
	return domain.Session{Token: "tok"}, nil
}

func (f *fakeSvc) Me(_ context.Context, id uuid.UUID) (domain.Profile, error) {
	return domain.Profile{User: domain.User{ID: id}, Company: tdomain.Company{Name: "Acme"}}, nil
}

func TestRegister_Created(t *testing.T) {
	svc := &fakeSvc{}
	e := testutil.NewEcho()
	New(svc).RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"company":      map[string]string{"name": "Acme"},
		"emailAddress": "owner@acme.io",
		"password":     "correct-horse",
		"firstName":    "Ann",
		"lastName":     "Lee",
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Message)
	require.Len(t, svc.registered, 1)
	assert.Equal(t, "Acme", svc.registered[0].CompanyName)

	var sess domain.Session
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, "tok", sess.Token)
}

func TestRegister_ValidationMessage(t *testing.T) {
	e := testutil.NewEcho()
	New(&fakeSvc{}).RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"company":      map[string]string{"name": "Acme"},
		"emailAddress": "not-an-email",
		"password":     "correct-horse",
		"firstName":    "Ann",
		"lastName":     "Lee",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "emailAddress must be a valid email address", env.Message)
	assert.JSONEq(t, `{}`, string(env.Data))
}

func TestLogin_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{domain.ErrInvalidCredentials, http.StatusBadRequest, "Invalid email address or password!"},
		{domain.ErrInvalidCredentials.WithStatus(http.StatusForbidden), http.StatusForbidden, "Invalid email address or password!"},
		{domain.ErrTooManyInvalidLoginAttempts, http.StatusForbidden, "Too many invalid login attempts!"},
	}
	for _, tc := range cases {
		e := testutil.NewEcho()
		New(&fakeSvc{loginErr: tc.err}).RegisterV1(e.Group("/api/v1"))
		rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/auth/login", map[string]string{"emailAddress": "a@acme.io", "password": "x"})
		assert.Equal(t, tc.code, rec.Code)
		assert.Equal(t, tc.msg, env.Message)
	}
}

func TestLogin_RateLimitedPerEmail(t *testing.T) {
	e := testutil.NewEcho()
	New(&fakeSvc{}).WithRateLimit(nil, ratelimit.NewMemoryStore()).RegisterV1(e.Group("/api/v1"))

	body := map[string]string{"emailAddress": "a@acme.io", "password": "x"}
	for i := 0; i < 10; i++ {
		rec, _ := testutil.Do(t, e, http.MethodPost, "/api/v1/auth/login", body)
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
	}
	rec, env := testutil.Do(t, e, http.MethodPost, "/api/v1/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", env.Message)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	other, _ := testutil.Do(t, e, http.MethodPost, "/api/v1/auth/login", map[string]string{"emailAddress": "b@acme.io", "password": "x"})
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestMe_UsesIdentityFromToken(t *testing.T) {
	uid := uuid.New()
	e := testutil.NewEcho()
	New(&fakeSvc{}).WithJWT(testutil.FakeAuth(uid, uuid.New())).RegisterV1(e.Group("/api/v1"))

	rec, env := testutil.Do(t, e, http.MethodGet, "/api/v1/users/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.Profile
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, uid, p.User.ID)
	assert.Equal(t, "Acme", p.Company.Name)
}
