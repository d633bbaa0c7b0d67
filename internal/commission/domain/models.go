// Package domain contains the commission ledger model and the service
// surface order processing and payout collaborators consume.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type CommissionStatus string

const (
	StatusActive    CommissionStatus = "active"
	StatusCancelled CommissionStatus = "cancelled"
)

// OrderCommission is one immutable ledger row per sold line item. The
// applied rule is snapshotted at calculation time so later rule edits
// never rewrite history; only Status may change, active to cancelled.
type OrderCommission struct {
	ID               snowflake.ID      `json:"id" gorm:"primaryKey"`
	OrderID          snowflake.ID      `json:"order_id" gorm:"not null;index"`
	OrderItemID      snowflake.ID      `json:"order_item_id" gorm:"not null;uniqueIndex"`
	VendorID         snowflake.ID      `json:"vendor_id" gorm:"not null;index"`
	ProductID        snowflake.ID      `json:"product_id" gorm:"not null;index"`
	SaleAmount       decimal.Decimal   `json:"sale_amount" gorm:"type:numeric(20,2);not null"`
	Quantity         int               `json:"quantity" gorm:"not null"`
	UnitPrice        decimal.Decimal   `json:"unit_price" gorm:"type:numeric(20,2);not null"`
	RuleID           *snowflake.ID     `json:"rule_id,omitempty" gorm:"index"`
	CommissionType   string            `json:"commission_type" gorm:"type:text;not null"`
	CommissionRate   *decimal.Decimal  `json:"commission_rate,omitempty" gorm:"type:numeric(10,2)"`
	TierLevel        *int              `json:"tier_level,omitempty"`
	CommissionAmount decimal.Decimal   `json:"commission_amount" gorm:"type:numeric(20,2);not null"`
	VendorEarning    decimal.Decimal   `json:"vendor_earning" gorm:"type:numeric(20,2);not null"`
	RuleSnapshot     datatypes.JSONMap `json:"applied_rule_snapshot,omitempty" gorm:"column:applied_rule_snapshot;type:jsonb"`
	Status           CommissionStatus  `json:"status" gorm:"type:text;not null;default:'active';index"`
	CreatedAt        time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (OrderCommission) TableName() string { return "order_commissions" }

// SummaryRow aggregates a vendor's active ledger rows over a window.
type SummaryRow struct {
	ItemCount       int64
	TotalSales      decimal.Decimal
	TotalCommission decimal.Decimal
	TotalEarnings   decimal.Decimal
}
