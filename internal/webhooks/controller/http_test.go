package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idomain "github.com/corvusHold/outreach/internal/interactions/domain"
	"github.com/corvusHold/outreach/internal/platform/testutil"
	domain "github.com/corvusHold/outreach/internal/webhooks/domain"
)

type fakeSvc struct {
	typ  string
	body string
	err  error
}

func (f *fakeSvc) Handle(_ context.Context, typ string, body json.RawMessage) error {
	f.typ, f.body = typ, string(body)
	return f.err
}

func post(t *testing.T, svc domain.Service, typ, body string) (*httptest.ResponseRecorder, testutil.Envelope) {
	t.Helper()
	e := testutil.NewEcho()
	New(svc).RegisterV1(e.Group("/api/v1"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/email-events", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/plain; charset=UTF-8")
	if typ != "" {
		req.Header.Set(domain.MessageTypeHeader, typ)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env testutil.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestEmailEvents_PassesRawBodyAndType(t *testing.T) {
	svc := &fakeSvc{}
	rec, _ := post(t, svc, "Notification", `{"Type":"Notification","Message":"{}"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notification", svc.typ)
	assert.JSONEq(t, `{"Type":"Notification","Message":"{}"}`, svc.body)
}

func TestEmailEvents_MissingStats(t *testing.T) {
	rec, env := post(t, &fakeSvc{err: idomain.ErrStatsMissing}, "Notification", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Stats document missing!", env.Message)
}

func TestEmailEvents_UntrustedSubscribeURL(t *testing.T) {
	rec, _ := post(t, &fakeSvc{err: domain.ErrUntrustedSubscribe}, "SubscriptionConfirmation", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
