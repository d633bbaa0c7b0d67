package domain

import (
	"context"
	"errors"
	"time"

	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
)

type Service interface {
	// CalculateOrderCommissions resolves, calculates, and records one
	// ledger row per order item. Failures are isolated per item: an error
	// on one item is reported in its breakdown without aborting siblings.
	CalculateOrderCommissions(ctx context.Context, req OrderRequest) (*OrderResponse, error)

	// PreviewCommissions runs the same resolution and calculation without
	// writing ledger rows.
	PreviewCommissions(ctx context.Context, req PreviewRequest) (*PreviewResponse, error)

	CancelOrderCommission(ctx context.Context, id string) error

	// ListOrderCommissions returns the recorded ledger rows for an order,
	// cancelled rows included.
	ListOrderCommissions(ctx context.Context, orderID string) ([]LedgerEntry, error)

	GetVendorCommissionSummary(ctx context.Context, vendorID string, start, end time.Time) (*VendorSummary, error)
	GetVendorPeriodSales(ctx context.Context, vendorID string, period ruledomain.TierPeriod) (*PeriodSalesResponse, error)
}

type OrderItemInput struct {
	OrderItemID string `json:"order_item_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type OrderRequest struct {
	OrderID string           `json:"order_id"`
	Items   []OrderItemInput `json:"items"`
}

type PreviewRequest struct {
	Items []OrderItemInput `json:"items"`
}

// ItemBreakdown reports the computed split for one line item, or the
// error that prevented it.
type ItemBreakdown struct {
	OrderItemID       string  `json:"order_item_id"`
	OrderCommissionID *string `json:"order_commission_id,omitempty"`
	ProductID         string  `json:"product_id,omitempty"`
	VendorID          string  `json:"vendor_id,omitempty"`
	SaleAmount        string  `json:"sale_amount,omitempty"`
	CommissionAmount  string  `json:"commission_amount,omitempty"`
	VendorEarning     string  `json:"vendor_earning,omitempty"`
	CommissionType    string  `json:"commission_type,omitempty"`
	AppliedRate       *string `json:"applied_rate,omitempty"`
	TierLevel         *int    `json:"tier_level,omitempty"`
	RuleID            *string `json:"rule_id,omitempty"`
	Error             string  `json:"error,omitempty"`
}

type OrderResponse struct {
	OrderID string          `json:"order_id"`
	Items   []ItemBreakdown `json:"items"`
}

type PreviewResponse struct {
	Items []ItemBreakdown `json:"items"`
}

// LedgerEntry is the read model of one recorded ledger row. The snapshot
// reflects the rule at calculation time, never its current state.
type LedgerEntry struct {
	ID               string           `json:"id"`
	OrderID          string           `json:"order_id"`
	OrderItemID      string           `json:"order_item_id"`
	VendorID         string           `json:"vendor_id"`
	ProductID        string           `json:"product_id"`
	SaleAmount       string           `json:"sale_amount"`
	Quantity         int              `json:"quantity"`
	UnitPrice        string           `json:"unit_price"`
	RuleID           *string          `json:"rule_id,omitempty"`
	CommissionType   string           `json:"commission_type"`
	CommissionRate   *string          `json:"commission_rate,omitempty"`
	TierLevel        *int             `json:"tier_level,omitempty"`
	CommissionAmount string           `json:"commission_amount"`
	VendorEarning    string           `json:"vendor_earning"`
	RuleSnapshot     map[string]any   `json:"rule_snapshot,omitempty"`
	Status           CommissionStatus `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
}

type VendorSummary struct {
	VendorID        string    `json:"vendor_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	ItemCount       int64     `json:"item_count"`
	TotalSales      string    `json:"total_sales"`
	TotalCommission string    `json:"total_commission"`
	TotalEarnings   string    `json:"total_earnings"`
}

type PeriodSalesResponse struct {
	VendorID   string                `json:"vendor_id"`
	Period     ruledomain.TierPeriod `json:"period"`
	AsOf       time.Time             `json:"as_of"`
	TotalSales string                `json:"total_sales"`
}

var (
	ErrInvalidOrder    = errors.New("invalid_order")
	ErrInvalidItem     = errors.New("invalid_item")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrInvalidRange    = errors.New("invalid_range")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrAlreadyRecorded = errors.New("already_recorded")
	ErrInvalidTiers    = errors.New("invalid_rule_tiers")
)
