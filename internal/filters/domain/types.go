package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/corvusHold/outreach/internal/platform/apperror"
)

type Type string

const (
	TypeInput       Type = "input"
	TypeDropdown    Type = "dropdown"
	TypeRadio       Type = "radio"
	TypeCheckbox    Type = "checkbox"
	TypeRangeSlider Type = "range-slider"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// Filter is a saved audience criterion shown in the UI.
type Filter struct {
	ID        uuid.UUID       `json:"id"`
	CompanyID uuid.UUID       `json:"companyId"`
	Label     string          `json:"filterLabel"`
	Type      Type            `json:"filterType"`
	Key       string          `json:"filterKey"`
	Values    json.RawMessage `json:"filterValues"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Input is the editable part of a filter.
type Input struct {
	Label  string
	Type   Type
	Key    string
	Values json.RawMessage
}

var (
	ErrFilterExists   = apperror.Duplicate("Filter already exists!")
	ErrFilterNotFound = apperror.NotFound("Filter not found!")
	ErrValuesNotArray = apperror.Validation("filterValues must be an array")
)

type Repository interface {
	// Create fails with ErrFilterExists when an active filter already uses the key.
	Create(ctx context.Context, f Filter) error
	Update(ctx context.Context, tenantID, id uuid.UUID, in Input) (Filter, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (Filter, error)
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]Filter, error)
	ActiveByKey(ctx context.Context, tenantID uuid.UUID, key string) (Filter, error)
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
}

type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, in Input) (Filter, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in Input) (Filter, error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (Filter, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]Filter, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
