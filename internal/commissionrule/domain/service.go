package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	Delete(ctx context.Context, id string) (*DeleteResult, error)
}

type TierInput struct {
	MinAmount string  `json:"min_amount"`
	MaxAmount *string `json:"max_amount"`
	Rate      string  `json:"rate"`
}

type CreateRequest struct {
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	Scope                RuleScope   `json:"scope"`
	ScopeRef             string      `json:"scope_ref"`
	Type                 RuleType    `json:"type"`
	Value                *string     `json:"value"`
	Tiers                []TierInput `json:"tiers"`
	TierPeriod           TierPeriod  `json:"tier_period"`
	IncludeSubcategories bool        `json:"include_subcategories"`
	StartDate            *time.Time  `json:"start_date"`
	EndDate              *time.Time  `json:"end_date"`
	Priority             int         `json:"priority"`
	IsActive             *bool       `json:"is_active"`
}

// UpdateRequest carries the full desired state of the rule. Updates never
// touch ledger records already snapshotted against the previous state.
type UpdateRequest = CreateRequest

type TierResponse struct {
	Position  int     `json:"position"`
	MinAmount string  `json:"min_amount"`
	MaxAmount *string `json:"max_amount,omitempty"`
	Rate      string  `json:"rate"`
}

type Response struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	Scope                RuleScope      `json:"scope"`
	ScopeRef             *string        `json:"scope_ref,omitempty"`
	Type                 RuleType       `json:"type"`
	Value                *string        `json:"value,omitempty"`
	Tiers                []TierResponse `json:"tiers,omitempty"`
	TierPeriod           TierPeriod     `json:"tier_period"`
	IncludeSubcategories bool           `json:"include_subcategories"`
	StartDate            *time.Time     `json:"start_date,omitempty"`
	EndDate              *time.Time     `json:"end_date,omitempty"`
	Priority             int            `json:"priority"`
	IsActive             bool           `json:"is_active"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// DeleteResult surfaces the degraded outcome: rules referenced by ledger
// records are deactivated instead of removed.
type DeleteResult struct {
	Deleted     bool `json:"deleted"`
	Deactivated bool `json:"deactivated"`
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidScope      = errors.New("invalid_scope")
	ErrInvalidScopeRef   = errors.New("invalid_scope_ref")
	ErrUnknownScopeRef   = errors.New("unknown_scope_ref")
	ErrInvalidType       = errors.New("invalid_type")
	ErrInvalidValue      = errors.New("invalid_value")
	ErrInvalidTiers      = errors.New("invalid_tiers")
	ErrInvalidTierPeriod = errors.New("invalid_tier_period")
	ErrInvalidDateRange  = errors.New("invalid_date_range")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
)
