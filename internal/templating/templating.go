// Package templating fills #field placeholders in message bodies from a recipient record.
package templating

import (
	"context"
	"strings"

	"github.com/google/uuid"

	cudomain "github.com/corvusHold/outreach/internal/companyusers/domain"
	"github.com/corvusHold/outreach/internal/platform/ordered"
)

// Placeholder prefixes a field name inside a template.
const Placeholder = "#"

// Substitute replaces every literal #key with the record's value for key, walking the
// record in order. Earlier keys win: with id before idNumber, "#idNumber" becomes the id
// value followed by "Number".
func Substitute(template string, record *ordered.Map) string {
	out := template
	for _, p := range record.Pairs() {
		out = strings.ReplaceAll(out, Placeholder+p.Key, ordered.String(p.Value))
	}
	return out
}

// Records finds the record a message is addressed to.
type Records interface {
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (cudomain.CompanyUser, error)
}

type Engine struct{ records Records }

func NewEngine(records Records) *Engine { return &Engine{records: records} }

// SubstituteFor renders template for the tenant's record with the given email.
// It fails with the registry's user-not-found error when there is no such record.
func (e *Engine) SubstituteFor(ctx context.Context, tenantID uuid.UUID, email, template string) (string, error) {
	u, err := e.records.FindByEmail(ctx, tenantID, email)
	if err != nil {
		return "", err
	}
	return Substitute(template, u.Record()), nil
}
