package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *OrderCommission) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*OrderCommission, error)
	ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderCommission, error)

	// Cancel flips an active row to cancelled and reports whether a row
	// changed. Amounts and snapshot are never touched.
	Cancel(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)

	// SumActiveSales returns the vendor's cumulative active sale amount in
	// [start, asOf]; cancelled rows are excluded.
	SumActiveSales(ctx context.Context, db *gorm.DB, vendorID snowflake.ID, start, asOf time.Time) (decimal.Decimal, error)

	Summarize(ctx context.Context, db *gorm.DB, vendorID snowflake.ID, start, end time.Time) (*SummaryRow, error)
}
