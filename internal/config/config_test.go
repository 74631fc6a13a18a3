package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("EMAIL_DISPATCH_MODE", "")
	t.Setenv("BULK_CONCURRENCY", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderSES, c.EmailProvider)
	assert.Equal(t, DispatchAsync, c.EmailDispatchMode)
	assert.Equal(t, 16, c.BulkConcurrency)
	assert.Equal(t, "us-east-1", c.AWSRegion)
	assert.Equal(t, time.Minute, c.IdentityCacheTTL)
	assert.Equal(t, ".amazonaws.com", c.SNSSubscribeHostSuffix)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "SMTP")
	t.Setenv("EMAIL_DISPATCH_MODE", "sync")
	t.Setenv("BULK_CONCURRENCY", "4")
	t.Setenv("IDENTITY_CACHE_TTL", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com , ,https://b.example.com")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderSMTP, c.EmailProvider)
	assert.Equal(t, DispatchSync, c.EmailDispatchMode)
	assert.Equal(t, 4, c.BulkConcurrency)
	assert.Equal(t, 5*time.Second, c.IdentityCacheTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, c.CORSAllowedOrigins)
}

func TestLoad_NonPositiveConcurrencyClampsToOne(t *testing.T) {
	t.Setenv("BULK_CONCURRENCY", "-3")
	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, c.BulkConcurrency)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "carrier-pigeon")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownDispatchMode(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("EMAIL_DISPATCH_MODE", "later")
	_, err := Load()
	assert.Error(t, err)
}
