package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	cudomain "github.com/corvusHold/outreach/internal/companyusers/domain"
	cfgdomain "github.com/corvusHold/outreach/internal/configurations/domain"
	"github.com/corvusHold/outreach/internal/platform/apperror"
	"github.com/corvusHold/outreach/internal/platform/ordered"
)

// ChannelEmail is the only channel that sends anything. Other channels are accepted and ignored.
const ChannelEmail = "email"

type Format struct {
	Subject string `json:"subject"`
	Content string `json:"content"`
}

// Request is one bulk interaction. Filters maps a field to a value or a list of values.
type Request struct {
	Filters            *ordered.Map
	Channel            string
	Format             Format
	SourceEmailAddress string
}

// Summary counts the outcome of an interaction. Dispatched counts sends the provider
// accepted before the response; Queued counts sends handed to the background.
type Summary struct {
	Matched    int `json:"matched"`
	Dispatched int `json:"dispatched"`
	Queued     int `json:"queued"`
	Recorded   int `json:"recorded"`
}

// EmailStats records one sent message. Details is filled in later by provider events.
type EmailStats struct {
	ID               uuid.UUID       `json:"id"`
	CompanyID        uuid.UUID       `json:"companyId"`
	FromEmailAddress string          `json:"fromEmailAddress"`
	ToEmailAddress   string          `json:"toEmailAddress"`
	EmailSubject     string          `json:"emailSubject"`
	EmailContent     string          `json:"emailContent"`
	Details          json.RawMessage `json:"details,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

var ErrStatsMissing = apperror.BadRequest("Stats document missing!")

type StatsRepository interface {
	Create(ctx context.Context, s EmailStats) error
	// RecordDetails overwrites details on the most recent record for the pair.
	// It fails with ErrStatsMissing when there is none.
	RecordDetails(ctx context.Context, from, to string, details json.RawMessage) error
}

// Recipients resolves the audience of an interaction.
type Recipients interface {
	RecipientEmails(ctx context.Context, tenantID uuid.UUID, c cudomain.Criteria) ([]string, error)
}

// Senders checks the source address against the tenant configuration.
type Senders interface {
	LookupSender(ctx context.Context, tenantID uuid.UUID, email string) (cfgdomain.Sender, error)
}

// Renderer personalizes content for one recipient.
type Renderer interface {
	SubstituteFor(ctx context.Context, tenantID uuid.UUID, email, template string) (string, error)
}

type Service interface {
	Interact(ctx context.Context, tenantID, actorID uuid.UUID, req Request) (Summary, error)
}
