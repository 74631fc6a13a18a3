package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/corvusHold/outreach/internal/events/domain"
)

// Logger is a Publisher that writes events to the structured log.
type Logger struct{ log zerolog.Logger }

func NewLogger(l zerolog.Logger) *Logger { return &Logger{log: l.With().Str("component", "events").Logger()} }

func (l *Logger) Publish(ctx context.Context, e domain.Event) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	ev := l.log.Info().
		Str("type", e.Type).
		Str("tenant_id", e.TenantID.String()).
		Time("ts", e.Time)
	if e.ActorID != uuid.Nil {
		ev = ev.Str("actor_id", e.ActorID.String())
	}
	if len(e.Meta) > 0 {
		ev = ev.Interface("meta", e.Meta)
	}
	ev.Msg("event")
	return nil
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, domain.Event) error { return nil }
