package domain

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Message is a single plain-text email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Sender is a pluggable email sending interface supporting per-tenant overrides.
// Implementations read provider credentials from the settings service with config defaults.
// tenantID selects per-tenant routing/config; use uuid.Nil for global.
type Sender interface {
	Send(ctx context.Context, tenantID uuid.UUID, m Message) error
}

// DNSRecord is the TXT record a domain owner must publish to prove ownership.
type DNSRecord struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// IdentitySet holds provider-verified identities (addresses and domains), lowercased.
type IdentitySet map[string]struct{}

func NewIdentitySet(ids ...string) IdentitySet {
	s := make(IdentitySet, len(ids))
	for _, id := range ids {
		s[strings.ToLower(id)] = struct{}{}
	}
	return s
}

func (s IdentitySet) Has(id string) bool {
	_, ok := s[strings.ToLower(id)]
	return ok
}

// IdentityProvider manages sending identities at the email provider.
type IdentityProvider interface {
	RequestVerification(ctx context.Context, emailAddress string) error
	RequestDomainVerification(ctx context.Context, domain string) (DNSRecord, error)
	VerifiedIdentities(ctx context.Context) (IdentitySet, error)
	DeleteIdentity(ctx context.Context, identity string) error
}

// Dispatcher runs provider side effects either inline or detached from the request,
// depending on the configured dispatch mode.
type Dispatcher interface {
	Dispatch(ctx context.Context, tenantID uuid.UUID, op string, fn func(ctx context.Context) error) error
}

// BatchDispatcher runs one side effect per item with at most limit in flight, inline or
// detached. detached reports that the batch was handed off and err carries nothing about it.
type BatchDispatcher interface {
	DispatchEach(ctx context.Context, tenantID uuid.UUID, op string, n, limit int, fn func(ctx context.Context, i int) error) (detached bool, err error)
}
