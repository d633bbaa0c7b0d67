// Package domain contains persistence models for commission rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type RuleScope string

const (
	ScopePlatform RuleScope = "platform"
	ScopeVendor   RuleScope = "vendor"
	ScopeCategory RuleScope = "category"
	ScopeProduct  RuleScope = "product"
)

// Specificity ranks scopes from most to least specific. Product beats
// vendor beats category beats platform regardless of rule priority.
func (s RuleScope) Specificity() int {
	switch s {
	case ScopeProduct:
		return 4
	case ScopeVendor:
		return 3
	case ScopeCategory:
		return 2
	case ScopePlatform:
		return 1
	default:
		return 0
	}
}

type RuleType string

const (
	TypePercentage RuleType = "percentage"
	TypeFixed      RuleType = "fixed"
	TypeTiered     RuleType = "tiered"
)

type TierPeriod string

const (
	PeriodPerOrder TierPeriod = "per_order"
	PeriodMonthly  TierPeriod = "monthly"
	PeriodYearly   TierPeriod = "yearly"
)

// CommissionRule defines how the platform/vendor split is computed for
// sales matching its scope.
type CommissionRule struct {
	ID                   snowflake.ID     `json:"id" gorm:"primaryKey"`
	Name                 string           `json:"name" gorm:"type:text;not null"`
	Description          string           `json:"description" gorm:"type:text"`
	Scope                RuleScope        `json:"scope" gorm:"type:text;not null;index"`
	ScopeRef             *snowflake.ID    `json:"scope_ref,omitempty" gorm:"index"`
	Type                 RuleType         `json:"type" gorm:"type:text;not null"`
	Value                *decimal.Decimal `json:"value,omitempty" gorm:"type:numeric(20,2)"`
	TierPeriod           TierPeriod       `json:"tier_period" gorm:"type:text;not null;default:'per_order'"`
	IncludeSubcategories bool             `json:"include_subcategories" gorm:"not null;default:false"`
	StartDate            *time.Time       `json:"start_date,omitempty"`
	EndDate              *time.Time       `json:"end_date,omitempty"`
	Priority             int              `json:"priority" gorm:"not null;default:0"`
	IsActive             bool             `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt            time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time        `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`

	Tiers []CommissionTier `json:"tiers,omitempty" gorm:"-"`
}

func (CommissionRule) TableName() string { return "commission_rules" }

// ActiveAt reports whether the rule's validity window contains at.
func (r *CommissionRule) ActiveAt(at time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.StartDate != nil && at.Before(*r.StartDate) {
		return false
	}
	if r.EndDate != nil && at.After(*r.EndDate) {
		return false
	}
	return true
}

// Snapshot freezes the fields a ledger record needs to stay auditable
// after the rule is edited or deactivated.
func (r *CommissionRule) Snapshot() datatypes.JSONMap {
	snapshot := datatypes.JSONMap{
		"rule_id":     r.ID.String(),
		"name":        r.Name,
		"scope":       string(r.Scope),
		"type":        string(r.Type),
		"tier_period": string(r.TierPeriod),
	}
	if r.ScopeRef != nil {
		snapshot["scope_ref"] = r.ScopeRef.String()
	}
	if r.Value != nil {
		snapshot["value"] = r.Value.String()
	}
	return snapshot
}

// CommissionTier is a sales-volume bracket carrying its own rate.
// Tiers are stored ordered by position with ascending, non-overlapping
// [MinAmount, MaxAmount) ranges; a nil MaxAmount means unbounded.
type CommissionTier struct {
	ID        snowflake.ID     `json:"id" gorm:"primaryKey"`
	RuleID    snowflake.ID     `json:"rule_id" gorm:"not null;index"`
	Position  int              `json:"position" gorm:"not null"`
	MinAmount decimal.Decimal  `json:"min_amount" gorm:"type:numeric(20,2);not null"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty" gorm:"type:numeric(20,2)"`
	Rate      decimal.Decimal  `json:"rate" gorm:"type:numeric(10,2);not null"`
	CreatedAt time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CommissionTier) TableName() string { return "commission_tiers" }
