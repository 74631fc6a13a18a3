package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvusHold/outreach/internal/config"
	edomain "github.com/corvusHold/outreach/internal/email/domain"
	sdomain "github.com/corvusHold/outreach/internal/settings/domain"
)

type mockSettings struct{ vals map[string]string }

func (m mockSettings) GetString(ctx context.Context, key string, tenantID *uuid.UUID, def string) (string, error) {
	if v, ok := m.vals[key]; ok {
		return v, nil
	}
	return def, nil
}
func (m mockSettings) GetDuration(ctx context.Context, key string, tenantID *uuid.UUID, def time.Duration) (time.Duration, error) {
	return def, nil
}
func (m mockSettings) GetInt(ctx context.Context, key string, tenantID *uuid.UUID, def int) (int, error) {
	return def, nil
}

var _ sdomain.Service = (*mockSettings)(nil)

type captureSender struct {
	called     bool
	last       edomain.Message
	lastTenant uuid.UUID
}

func (c *captureSender) Send(ctx context.Context, tenantID uuid.UUID, m edomain.Message) error {
	c.called = true
	c.last = m
	c.lastTenant = tenantID
	return nil
}

func newRouterWithCaptures(provider string) (*Router, *captureSender, *captureSender, *captureSender) {
	vals := map[string]string{}
	if provider != "" {
		vals[sdomain.KeyEmailProvider] = provider
	}
	r := NewRouter(mockSettings{vals: vals}, config.Config{EmailProvider: config.ProviderSES}, nil)
	sesCap, smtpCap, brevoCap := &captureSender{}, &captureSender{}, &captureSender{}
	r.ses, r.smtp, r.brevo = sesCap, smtpCap, brevoCap
	return r, sesCap, smtpCap, brevoCap
}

func TestRouter_SelectsSMTP(t *testing.T) {
	tenant := uuid.New()
	r, sesCap, smtpCap, brevoCap := newRouterWithCaptures("smtp")

	msg := edomain.Message{From: "from@acme.io", To: "a@b.com", Subject: "sub", Body: "body"}
	require.NoError(t, r.Send(context.Background(), tenant, msg))
	assert.True(t, smtpCap.called)
	assert.False(t, brevoCap.called)
	assert.False(t, sesCap.called)
	assert.Equal(t, msg, smtpCap.last)
	assert.Equal(t, tenant, smtpCap.lastTenant)
}

func TestRouter_SelectsBrevo(t *testing.T) {
	r, sesCap, smtpCap, brevoCap := newRouterWithCaptures("Brevo")
	require.NoError(t, r.Send(context.Background(), uuid.New(), edomain.Message{To: "a@b.com"}))
	assert.True(t, brevoCap.called)
	assert.False(t, smtpCap.called)
	assert.False(t, sesCap.called)
}

func TestRouter_DefaultsToSES(t *testing.T) {
	r, sesCap, smtpCap, brevoCap := newRouterWithCaptures("")
	require.NoError(t, r.Send(context.Background(), uuid.New(), edomain.Message{To: "a@b.com"}))
	assert.True(t, sesCap.called)
	assert.False(t, smtpCap.called)
	assert.False(t, brevoCap.called)
}
