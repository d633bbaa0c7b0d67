package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/vendra/vendra/internal/audit/domain"
	"github.com/vendra/vendra/internal/cache"
	catalogdomain "github.com/vendra/vendra/internal/catalog/domain"
	"github.com/vendra/vendra/internal/clock"
	commissiondomain "github.com/vendra/vendra/internal/commission/domain"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	pkgdb "github.com/vendra/vendra/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     commissiondomain.Repository
	RuleRepo ruledomain.Repository
	Catalog  catalogdomain.Service
	Cache    cache.RuleCache
	Audit    auditdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     commissiondomain.Repository
	catalog  catalogdomain.Service
	audit    auditdomain.Service
	resolver *Resolver
	locks    *vendorLocks
}

func New(p Params) commissiondomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("commission.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		catalog:  p.Catalog,
		audit:    p.Audit,
		resolver: NewResolver(p.DB, p.RuleRepo, p.Cache),
		locks:    newVendorLocks(),
	}
}

func (s *Service) CalculateOrderCommissions(ctx context.Context, req commissiondomain.OrderRequest) (*commissiondomain.OrderResponse, error) {
	orderID, err := parseID(req.OrderID)
	if err != nil {
		return nil, commissiondomain.ErrInvalidOrder
	}
	if len(req.Items) == 0 {
		return nil, commissiondomain.ErrInvalidOrder
	}

	asOf := s.clock.Now()
	// Running per-vendor totals within this order, used for per_order
	// tiering: each item sees the sales of the items before it.
	orderTotals := make(map[snowflake.ID]decimal.Decimal)

	resp := &commissiondomain.OrderResponse{OrderID: orderID.String()}
	for _, item := range req.Items {
		bd := s.processItem(ctx, orderID, item, orderTotals, asOf, true)
		if bd.Error != "" {
			s.log.Warn("commission calculation failed for item",
				zap.String("order_id", orderID.String()),
				zap.String("order_item_id", item.OrderItemID),
				zap.String("error", bd.Error),
			)
		}
		resp.Items = append(resp.Items, bd)
	}
	return resp, nil
}

func (s *Service) PreviewCommissions(ctx context.Context, req commissiondomain.PreviewRequest) (*commissiondomain.PreviewResponse, error) {
	if len(req.Items) == 0 {
		return nil, commissiondomain.ErrInvalidOrder
	}

	asOf := s.clock.Now()
	orderTotals := make(map[snowflake.ID]decimal.Decimal)

	resp := &commissiondomain.PreviewResponse{}
	for _, item := range req.Items {
		resp.Items = append(resp.Items, s.processItem(ctx, 0, item, orderTotals, asOf, false))
	}
	return resp, nil
}

// processItem resolves, calculates, and (when persist is set) records a
// single line item. Any error is folded into the breakdown so one item's
// failure never aborts its siblings.
func (s *Service) processItem(
	ctx context.Context,
	orderID snowflake.ID,
	item commissiondomain.OrderItemInput,
	orderTotals map[snowflake.ID]decimal.Decimal,
	asOf time.Time,
	persist bool,
) commissiondomain.ItemBreakdown {
	out := commissiondomain.ItemBreakdown{OrderItemID: item.OrderItemID}

	itemID, unitPrice, quantity, err := parseItemInput(item, persist)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	product, err := s.catalog.GetProduct(ctx, mustParseID(item.ProductID))
	if err != nil {
		out.Error = err.Error()
		return out
	}

	ancestors, err := s.catalog.CategoryAncestors(ctx, product.CategoryID)
	if err != nil {
		out.Error = err.Error()
		return out
	}

	rule, err := s.resolver.Resolve(ctx, ResolveInput{
		ProductID:         product.ID,
		VendorID:          product.VendorID,
		CategoryID:        product.CategoryID,
		CategoryAncestors: ancestors,
		AsOf:              asOf,
	})
	if err != nil {
		out.Error = err.Error()
		return out
	}

	saleAmount := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	out.ProductID = product.ID.String()
	out.VendorID = product.VendorID.String()
	out.SaleAmount = saleAmount.StringFixed(2)

	record, err := s.computeAndStore(ctx, computeInput{
		orderID:     orderID,
		orderItemID: itemID,
		product:     product,
		rule:        rule,
		saleAmount:  saleAmount,
		unitPrice:   unitPrice,
		quantity:    quantity,
		orderTotal:  orderTotals[product.VendorID],
		asOf:        asOf,
		persist:     persist,
	})
	if err != nil {
		out.Error = err.Error()
		return out
	}

	orderTotals[product.VendorID] = orderTotals[product.VendorID].Add(saleAmount)

	out.CommissionAmount = record.CommissionAmount.StringFixed(2)
	out.VendorEarning = record.VendorEarning.StringFixed(2)
	out.CommissionType = record.CommissionType
	out.TierLevel = record.TierLevel
	if record.CommissionRate != nil {
		rate := record.CommissionRate.StringFixed(2)
		out.AppliedRate = &rate
	}
	if record.RuleID != nil {
		id := record.RuleID.String()
		out.RuleID = &id
	}
	if persist {
		id := record.ID.String()
		out.OrderCommissionID = &id
	}
	return out
}

type computeInput struct {
	orderID     snowflake.ID
	orderItemID snowflake.ID
	product     *catalogdomain.Product
	rule        *ruledomain.CommissionRule
	saleAmount  decimal.Decimal
	unitPrice   decimal.Decimal
	quantity    int
	orderTotal  decimal.Decimal
	asOf        time.Time
	persist     bool
}

// computeAndStore runs the calculation and, when persisting, appends the
// ledger row. For monthly/yearly tiered rules the whole read-calculate-
// append sequence holds the vendor lock inside one transaction; other
// rule types have no read dependency and skip the lock.
func (s *Service) computeAndStore(ctx context.Context, in computeInput) (*commissiondomain.OrderCommission, error) {
	if in.rule != nil && in.rule.Type == ruledomain.TypeTiered && in.rule.TierPeriod != ruledomain.PeriodPerOrder {
		if in.persist {
			unlock := s.locks.Lock(in.product.VendorID)
			defer unlock()

			var record *commissiondomain.OrderCommission
			err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				// Rows for earlier items of this order are already
				// committed, so the period sum covers them; adding the
				// running order total here would count them twice.
				periodSales, err := s.periodSales(ctx, tx, in.product.VendorID, in.rule.TierPeriod, in.asOf)
				if err != nil {
					return err
				}
				bd, err := calculate(in.rule, in.saleAmount, periodSales)
				if err != nil {
					return err
				}
				record, err = s.store(ctx, tx, in, bd)
				return err
			})
			if err != nil {
				return nil, err
			}
			return record, nil
		}

		// Preview writes nothing, so earlier items of this order are
		// folded in through the running order total.
		periodSales, err := s.periodSales(ctx, s.db, in.product.VendorID, in.rule.TierPeriod, in.asOf)
		if err != nil {
			return nil, err
		}
		bd, err := calculate(in.rule, in.saleAmount, periodSales.Add(in.orderTotal))
		if err != nil {
			return nil, err
		}
		return s.buildRecord(in, bd), nil
	}

	var bd breakdown
	var err error
	switch {
	case in.rule == nil:
		planRate, rateErr := s.catalog.VendorPlanRate(ctx, in.product.VendorID)
		if rateErr != nil {
			return nil, rateErr
		}
		bd = calculateFallback(planRate, in.saleAmount)
	case in.rule.Type == ruledomain.TypeTiered:
		// per_order tiering: the bracket is picked from this order's
		// running vendor total, not historical ledger data.
		bd, err = calculate(in.rule, in.saleAmount, in.orderTotal)
	default:
		bd, err = calculate(in.rule, in.saleAmount, decimal.Zero)
	}
	if err != nil {
		return nil, err
	}

	if !in.persist {
		return s.buildRecord(in, bd), nil
	}
	return s.store(ctx, s.db, in, bd)
}

func (s *Service) buildRecord(in computeInput, bd breakdown) *commissiondomain.OrderCommission {
	record := &commissiondomain.OrderCommission{
		OrderID:          in.orderID,
		OrderItemID:      in.orderItemID,
		VendorID:         in.product.VendorID,
		ProductID:        in.product.ID,
		SaleAmount:       in.saleAmount,
		Quantity:         in.quantity,
		UnitPrice:        in.unitPrice,
		RuleID:           bd.RuleID,
		CommissionType:   bd.CommissionType,
		CommissionRate:   bd.AppliedRate,
		TierLevel:        bd.TierLevel,
		CommissionAmount: bd.CommissionAmount,
		VendorEarning:    bd.VendorEarning,
		Status:           commissiondomain.StatusActive,
		CreatedAt:        in.asOf,
	}
	if in.rule != nil {
		record.RuleSnapshot = in.rule.Snapshot()
	}
	return record
}

func (s *Service) store(ctx context.Context, db *gorm.DB, in computeInput, bd breakdown) (*commissiondomain.OrderCommission, error) {
	record := s.buildRecord(in, bd)
	record.ID = s.genID.Generate()
	if err := s.repo.Insert(ctx, db, record); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, commissiondomain.ErrAlreadyRecorded
		}
		return nil, err
	}
	return record, nil
}

// periodSales aggregates the vendor's active ledger sales inside the
// calendar window anchored at asOf. Cancelled rows never count.
func (s *Service) periodSales(ctx context.Context, db *gorm.DB, vendorID snowflake.ID, period ruledomain.TierPeriod, asOf time.Time) (decimal.Decimal, error) {
	start, err := periodStart(period, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return s.repo.SumActiveSales(ctx, db, vendorID, start, asOf)
}

func periodStart(period ruledomain.TierPeriod, asOf time.Time) (time.Time, error) {
	asOf = asOf.UTC()
	switch period {
	case ruledomain.PeriodMonthly:
		return time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	case ruledomain.PeriodYearly:
		return time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, commissiondomain.ErrInvalidPeriod
	}
}

func (s *Service) ListOrderCommissions(ctx context.Context, orderID string) ([]commissiondomain.LedgerEntry, error) {
	id, err := parseID(orderID)
	if err != nil {
		return nil, commissiondomain.ErrInvalidOrder
	}

	records, err := s.repo.ListByOrder(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	entries := make([]commissiondomain.LedgerEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, toLedgerEntry(record))
	}
	return entries, nil
}

func toLedgerEntry(record commissiondomain.OrderCommission) commissiondomain.LedgerEntry {
	entry := commissiondomain.LedgerEntry{
		ID:               record.ID.String(),
		OrderID:          record.OrderID.String(),
		OrderItemID:      record.OrderItemID.String(),
		VendorID:         record.VendorID.String(),
		ProductID:        record.ProductID.String(),
		SaleAmount:       record.SaleAmount.StringFixed(2),
		Quantity:         record.Quantity,
		UnitPrice:        record.UnitPrice.StringFixed(2),
		CommissionType:   record.CommissionType,
		TierLevel:        record.TierLevel,
		CommissionAmount: record.CommissionAmount.StringFixed(2),
		VendorEarning:    record.VendorEarning.StringFixed(2),
		RuleSnapshot:     record.RuleSnapshot,
		Status:           record.Status,
		CreatedAt:        record.CreatedAt,
	}
	if record.RuleID != nil {
		id := record.RuleID.String()
		entry.RuleID = &id
	}
	if record.CommissionRate != nil {
		rate := record.CommissionRate.StringFixed(2)
		entry.CommissionRate = &rate
	}
	return entry
}

func (s *Service) CancelOrderCommission(ctx context.Context, id string) error {
	recordID, err := parseID(id)
	if err != nil {
		return commissiondomain.ErrInvalidID
	}

	record, err := s.repo.FindByID(ctx, s.db, recordID)
	if err != nil {
		return err
	}
	if record == nil {
		return commissiondomain.ErrNotFound
	}
	if record.Status == commissiondomain.StatusCancelled {
		return nil
	}

	changed, err := s.repo.Cancel(ctx, s.db, recordID)
	if err != nil {
		return err
	}
	if changed && s.audit != nil {
		if err := s.audit.AuditLog(ctx, "order_commission.cancelled", "order_commission", recordID.String(), map[string]any{
			"order_id":  record.OrderID.String(),
			"vendor_id": record.VendorID.String(),
		}); err != nil {
			s.log.Warn("failed to write cancellation audit log", zap.Error(err))
		}
	}
	return nil
}

func (s *Service) GetVendorCommissionSummary(ctx context.Context, vendorID string, start, end time.Time) (*commissiondomain.VendorSummary, error) {
	id, err := parseID(vendorID)
	if err != nil {
		return nil, commissiondomain.ErrInvalidID
	}
	if end.Before(start) {
		return nil, commissiondomain.ErrInvalidRange
	}
	exists, err := s.catalog.VendorExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, catalogdomain.ErrVendorNotFound
	}

	row, err := s.repo.Summarize(ctx, s.db, id, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	return &commissiondomain.VendorSummary{
		VendorID:        id.String(),
		StartDate:       start.UTC(),
		EndDate:         end.UTC(),
		ItemCount:       row.ItemCount,
		TotalSales:      row.TotalSales.StringFixed(2),
		TotalCommission: row.TotalCommission.StringFixed(2),
		TotalEarnings:   row.TotalEarnings.StringFixed(2),
	}, nil
}

func (s *Service) GetVendorPeriodSales(ctx context.Context, vendorID string, period ruledomain.TierPeriod) (*commissiondomain.PeriodSalesResponse, error) {
	id, err := parseID(vendorID)
	if err != nil {
		return nil, commissiondomain.ErrInvalidID
	}
	exists, err := s.catalog.VendorExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, catalogdomain.ErrVendorNotFound
	}

	asOf := s.clock.Now()
	total, err := s.periodSales(ctx, s.db, id, period, asOf)
	if err != nil {
		return nil, err
	}
	return &commissiondomain.PeriodSalesResponse{
		VendorID:   id.String(),
		Period:     period,
		AsOf:       asOf,
		TotalSales: total.StringFixed(2),
	}, nil
}

func parseItemInput(item commissiondomain.OrderItemInput, requireItemID bool) (snowflake.ID, decimal.Decimal, int, error) {
	var itemID snowflake.ID
	var err error
	if requireItemID {
		itemID, err = parseID(item.OrderItemID)
		if err != nil {
			return 0, decimal.Zero, 0, commissiondomain.ErrInvalidItem
		}
	}
	if _, err := parseID(item.ProductID); err != nil {
		return 0, decimal.Zero, 0, commissiondomain.ErrInvalidItem
	}
	if item.Quantity <= 0 {
		return 0, decimal.Zero, 0, commissiondomain.ErrInvalidQuantity
	}
	unitPrice, err := decimal.NewFromString(strings.TrimSpace(item.UnitPrice))
	if err != nil || unitPrice.IsNegative() {
		return 0, decimal.Zero, 0, commissiondomain.ErrInvalidAmount
	}
	return itemID, unitPrice, item.Quantity, nil
}

func parseID(value string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, commissiondomain.ErrInvalidID
	}
	return snowflake.ParseString(trimmed)
}

func mustParseID(value string) snowflake.ID {
	id, _ := snowflake.ParseString(strings.TrimSpace(value))
	return id
}
