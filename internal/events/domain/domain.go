package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit event types.
const (
	TypeRegisterSuccess       = "auth.register.success"
	TypeLoginSuccess          = "auth.login.success"
	TypeLoginFailure          = "auth.login.failure"
	TypeSettingsUpdated       = "settings.update.success"
	TypeIdentityDeleted       = "configuration.identity.deleted"
	TypeInteractionDispatched = "interaction.email.dispatched"
)

// Event is an audit record of something an operator or the platform did.
type Event struct {
	Type     string
	TenantID uuid.UUID
	ActorID  uuid.UUID // uuid.Nil for platform-initiated events
	Meta     map[string]string
	Time     time.Time
}

// Publisher hands events to a sink. Callers ignore the error: auditing never fails a request.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
