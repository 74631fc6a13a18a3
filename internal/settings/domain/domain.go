package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service provides typed access to application/tenant settings with override.
type Service interface {
	GetString(ctx context.Context, key string, tenantID *uuid.UUID, def string) (string, error)
	GetDuration(ctx context.Context, key string, tenantID *uuid.UUID, def time.Duration) (time.Duration, error)
	GetInt(ctx context.Context, key string, tenantID *uuid.UUID, def int) (int, error)
}

// Repository abstracts storage of app settings.
type Repository interface {
	// Get returns (value, found, err) for a key, preferring the tenant row over the global one.
	Get(ctx context.Context, key string, tenantID *uuid.UUID) (string, bool, error)
	// Upsert stores a key for an optional tenant.
	Upsert(ctx context.Context, key string, tenantID *uuid.UUID, value string, secret bool) error
}

// Common keys
const (
	KeyEmailProvider     = "email.provider"      // ses | smtp | brevo
	KeyEmailDispatchMode = "email.dispatch_mode" // async | sync
	KeySMTPHost          = "email.smtp.host"
	KeySMTPPort          = "email.smtp.port"
	KeySMTPUsername      = "email.smtp.username"
	KeySMTPPassword      = "email.smtp.password"
	KeyBrevoAPIKey       = "email.brevo.api_key"

	// KeyBulkConcurrency caps the per-interaction worker pool.
	KeyBulkConcurrency = "interactions.concurrency"

	// Rate limiting keys. Windows use Go duration strings (e.g. "1m"); limits are integers.
	KeyRLRegisterLimit  = "auth.ratelimit.register.limit"
	KeyRLRegisterWindow = "auth.ratelimit.register.window"
	KeyRLLoginLimit     = "auth.ratelimit.login.limit"
	KeyRLLoginWindow    = "auth.ratelimit.login.window"
)

// Settings API rate limiting keys.
const (
	KeyRLSettingsGetLimit  = "settings.ratelimit.get.limit"
	KeyRLSettingsGetWindow = "settings.ratelimit.get.window"
	KeyRLSettingsPutLimit  = "settings.ratelimit.put.limit"
	KeyRLSettingsPutWindow = "settings.ratelimit.put.window"
)

// Bulk interaction rate limiting keys, applied per tenant.
const (
	KeyRLInteractLimit  = "interactions.ratelimit.limit"
	KeyRLInteractWindow = "interactions.ratelimit.window"
)

// MaxBulkConcurrency bounds what a tenant may configure.
const MaxBulkConcurrency = 128
