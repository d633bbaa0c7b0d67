package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	commissiondomain "github.com/vendra/vendra/internal/commission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() commissiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *commissiondomain.OrderCommission) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO order_commissions (
			id, order_id, order_item_id, vendor_id, product_id,
			sale_amount, quantity, unit_price, rule_id, commission_type,
			commission_rate, tier_level, commission_amount, vendor_earning,
			applied_rule_snapshot, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.OrderID,
		record.OrderItemID,
		record.VendorID,
		record.ProductID,
		record.SaleAmount,
		record.Quantity,
		record.UnitPrice,
		record.RuleID,
		record.CommissionType,
		record.CommissionRate,
		record.TierLevel,
		record.CommissionAmount,
		record.VendorEarning,
		record.RuleSnapshot,
		record.Status,
		record.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*commissiondomain.OrderCommission, error) {
	var record commissiondomain.OrderCommission
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, order_item_id, vendor_id, product_id,
		 sale_amount, quantity, unit_price, rule_id, commission_type,
		 commission_rate, tier_level, commission_amount, vendor_earning,
		 applied_rule_snapshot, status, created_at
		 FROM order_commissions WHERE id = ?`,
		id,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) ListByOrder(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]commissiondomain.OrderCommission, error) {
	var records []commissiondomain.OrderCommission
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, order_item_id, vendor_id, product_id,
		 sale_amount, quantity, unit_price, rule_id, commission_type,
		 commission_rate, tier_level, commission_amount, vendor_earning,
		 applied_rule_snapshot, status, created_at
		 FROM order_commissions WHERE order_id = ? ORDER BY created_at ASC`,
		orderID,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) Cancel(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE order_commissions SET status = ? WHERE id = ? AND status = ?`,
		commissiondomain.StatusCancelled,
		id,
		commissiondomain.StatusActive,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) SumActiveSales(ctx context.Context, db *gorm.DB, vendorID snowflake.ID, start, asOf time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(sale_amount), 0)
		 FROM order_commissions
		 WHERE vendor_id = ? AND status = ? AND created_at >= ? AND created_at <= ?`,
		vendorID,
		commissiondomain.StatusActive,
		start,
		asOf,
	).Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *repo) Summarize(ctx context.Context, db *gorm.DB, vendorID snowflake.ID, start, end time.Time) (*commissiondomain.SummaryRow, error) {
	var row struct {
		ItemCount       int64
		TotalSales      decimal.Decimal
		TotalCommission decimal.Decimal
		TotalEarnings   decimal.Decimal
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS item_count,
		 COALESCE(SUM(sale_amount), 0) AS total_sales,
		 COALESCE(SUM(commission_amount), 0) AS total_commission,
		 COALESCE(SUM(vendor_earning), 0) AS total_earnings
		 FROM order_commissions
		 WHERE vendor_id = ? AND status = ? AND created_at >= ? AND created_at <= ?`,
		vendorID,
		commissiondomain.StatusActive,
		start,
		end,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &commissiondomain.SummaryRow{
		ItemCount:       row.ItemCount,
		TotalSales:      row.TotalSales,
		TotalCommission: row.TotalCommission,
		TotalEarnings:   row.TotalEarnings,
	}, nil
}
