package domain

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/platform/apperror"
	"github.com/corvusHold/outreach/internal/platform/ordered"
)

// Field names the store owns. They are never offered as filter keys and an imported
// column with one of these names is dropped.
const (
	FieldID        = "id"
	FieldCompanyID = "companyId"
	FieldEmail     = "email"
)

// Reserved fields never surface as filter keys.
var Reserved = map[string]struct{}{
	FieldID:        {},
	"_id":          {},
	FieldCompanyID: {},
	"__v":          {},
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	SearchLimit     = 10
)

// CompanyUser is one imported customer record. Fields keeps the column order of the import.
type CompanyUser struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Fields    *ordered.Map
	CreatedAt time.Time
}

// Record is the flattened view: id, then the imported fields in order, then companyId.
func (u CompanyUser) Record() *ordered.Map {
	m := ordered.New(ordered.Pair{Key: FieldID, Value: u.ID.String()})
	for _, p := range u.Fields.Pairs() {
		m.Set(p.Key, p.Value)
	}
	m.Set(FieldCompanyID, u.CompanyID.String())
	return m
}

func (u CompanyUser) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Record())
}

// Criteria maps a field name to the values it may take. One value means equality,
// several mean membership. Keys keep request order.
type Criteria struct {
	Keys   []string
	Values map[string][]string
}

// Add appends key with values, merging into an existing key.
func (c *Criteria) Add(key string, values ...string) {
	if c.Values == nil {
		c.Values = map[string][]string{}
	}
	if _, ok := c.Values[key]; !ok {
		c.Keys = append(c.Keys, key)
	}
	c.Values[key] = append(c.Values[key], values...)
}

// FilterCount is the number of tenant records matching a single key.
type FilterCount struct {
	FilterKey    string   `json:"filterKey"`
	FilterValues []string `json:"filterValues"`
	FilterCount  int64    `json:"filterCount"`
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

var (
	ErrUserNotFound    = apperror.BadRequest("User not found!")
	ErrNoFile          = apperror.BadRequest("No file uploaded.")
	ErrUnsupportedFile = apperror.Validation("Only .csv and .xlsx files are supported")
	ErrEmptyImport     = apperror.Validation("The uploaded file has no rows")
	ErrMissingHeader   = apperror.Validation("The uploaded file has no header row")
)

type Repository interface {
	// Insert stores records in one batch and returns how many were written.
	Insert(ctx context.Context, users []CompanyUser) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID, page Page) ([]CompanyUser, error)
	Count(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Sample(ctx context.Context, tenantID uuid.UUID, n int) ([]CompanyUser, error)
	DistinctValues(ctx context.Context, tenantID uuid.UUID, key string) ([]any, error)
	CountMatching(ctx context.Context, tenantID uuid.UUID, key string, values []string) (int64, error)
	// Emails returns the email field of every record matching all criteria.
	Emails(ctx context.Context, tenantID uuid.UUID, c Criteria) ([]string, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (CompanyUser, error)
	PrefixSearch(ctx context.Context, tenantID uuid.UUID, query string, fields []string, limit int) ([]CompanyUser, error)
}

// Service is the user registry plus the audience filter operations over it.
type Service interface {
	// Import parses a .csv or .xlsx upload (first row is the header) and stores one record per row.
	Import(ctx context.Context, tenantID uuid.UUID, filename string, r io.Reader) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID, page Page) ([]CompanyUser, error)
	DiscoverFilterKeys(ctx context.Context, tenantID uuid.UUID) ([]string, error)
	DiscoverFilterValues(ctx context.Context, tenantID uuid.UUID, key string) ([]any, error)
	CountMatches(ctx context.Context, tenantID uuid.UUID, c Criteria) ([]FilterCount, error)
	RecipientEmails(ctx context.Context, tenantID uuid.UUID, c Criteria) ([]string, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (CompanyUser, error)
	PrefixSearch(ctx context.Context, tenantID uuid.UUID, query string, fields []string) ([]CompanyUser, error)
}

// NewCriteria converts a request filter object into criteria. A scalar becomes a single
// value, an array contributes each element.
func NewCriteria(filters *ordered.Map) Criteria {
	var c Criteria
	for _, p := range filters.Pairs() {
		switch v := p.Value.(type) {
		case []any:
			vals := make([]string, 0, len(v))
			for _, x := range v {
				vals = append(vals, ordered.String(x))
			}
			c.Add(p.Key, vals...)
		default:
			c.Add(p.Key, ordered.String(v))
		}
	}
	return c
}
