package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	auditdomain "github.com/vendra/vendra/internal/audit/domain"
	auditrepo "github.com/vendra/vendra/internal/audit/repository"
	auditservice "github.com/vendra/vendra/internal/audit/service"
	"github.com/vendra/vendra/internal/cache"
	catalogdomain "github.com/vendra/vendra/internal/catalog/domain"
	catalogrepo "github.com/vendra/vendra/internal/catalog/repository"
	catalogservice "github.com/vendra/vendra/internal/catalog/service"
	commissiondomain "github.com/vendra/vendra/internal/commission/domain"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	"github.com/vendra/vendra/internal/commissionrule/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db     *gorm.DB
	genID  *snowflake.Node
	svc    ruledomain.Service
	vendor *catalogdomain.Vendor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Vendor{},
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&ruledomain.CommissionRule{},
		&ruledomain.CommissionTier{},
		&commissiondomain.OrderCommission{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zap.NewNop()

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:   db,
		Log:  log,
		Repo: catalogrepo.Provide(),
	})

	auditSvc := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Repo:  auditrepo.Provide(),
	})

	svc := New(Params{
		DB:      db,
		Log:     log,
		GenID:   node,
		Repo:    repository.Provide(),
		Catalog: catalogSvc,
		Cache:   cache.NewRuleCache(),
		Audit:   auditSvc,
	})

	vendor := &catalogdomain.Vendor{
		ID:                 node.Generate(),
		Name:               "Fixture Vendor",
		PlanCommissionRate: decimal.NewFromInt(12),
		Active:             true,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	require.NoError(t, db.Create(vendor).Error)

	return &fixture{db: db, genID: node, svc: svc, vendor: vendor}
}

func strPtr(s string) *string { return &s }

func vendorRuleRequest(f *fixture) ruledomain.CreateRequest {
	return ruledomain.CreateRequest{
		Name:     "Vendor Deal",
		Scope:    ruledomain.ScopeVendor,
		ScopeRef: f.vendor.ID.String(),
		Type:     ruledomain.TypePercentage,
		Value:    strPtr("15"),
		Priority: 3,
	}
}

func TestCreatePercentageRule(t *testing.T) {
	f := newFixture(t)

	rule, err := f.svc.Create(context.Background(), vendorRuleRequest(f))
	require.NoError(t, err)

	assert.Equal(t, "Vendor Deal", rule.Name)
	assert.Equal(t, ruledomain.ScopeVendor, rule.Scope)
	require.NotNil(t, rule.ScopeRef)
	assert.Equal(t, f.vendor.ID.String(), *rule.ScopeRef)
	require.NotNil(t, rule.Value)
	assert.Equal(t, "15.00", *rule.Value)
	assert.Equal(t, 3, rule.Priority)
	assert.True(t, rule.IsActive)

	got, err := f.svc.Get(context.Background(), rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.ID, got.ID)

	var auditCount int64
	require.NoError(t, f.db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", "commission_rule.created").Count(&auditCount).Error)
	assert.Equal(t, int64(1), auditCount)
}

func TestCreateTieredRule(t *testing.T) {
	f := newFixture(t)

	rule, err := f.svc.Create(context.Background(), ruledomain.CreateRequest{
		Name:       "Volume Discount",
		Scope:      ruledomain.ScopeVendor,
		ScopeRef:   f.vendor.ID.String(),
		Type:       ruledomain.TypeTiered,
		TierPeriod: ruledomain.PeriodMonthly,
		Tiers: []ruledomain.TierInput{
			{MinAmount: "0", MaxAmount: strPtr("10000"), Rate: "5"},
			{MinAmount: "10000", MaxAmount: strPtr("50000"), Rate: "4"},
			{MinAmount: "50000", Rate: "3"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, ruledomain.PeriodMonthly, rule.TierPeriod)
	require.Len(t, rule.Tiers, 3)
	assert.Equal(t, 0, rule.Tiers[0].Position)
	assert.Equal(t, "5.00", rule.Tiers[0].Rate)
	assert.Nil(t, rule.Tiers[2].MaxAmount)

	// Tiers come back ordered on reads too.
	got, err := f.svc.Get(context.Background(), rule.ID)
	require.NoError(t, err)
	require.Len(t, got.Tiers, 3)
	assert.Equal(t, "10000.00", got.Tiers[1].MinAmount)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		mutate  func(*ruledomain.CreateRequest)
		wantErr error
	}{
		{"empty name", func(r *ruledomain.CreateRequest) { r.Name = "  " }, ruledomain.ErrInvalidName},
		{"bad scope", func(r *ruledomain.CreateRequest) { r.Scope = "region" }, ruledomain.ErrInvalidScope},
		{"platform with ref", func(r *ruledomain.CreateRequest) {
			r.Scope = ruledomain.ScopePlatform
		}, ruledomain.ErrInvalidScopeRef},
		{"missing ref", func(r *ruledomain.CreateRequest) { r.ScopeRef = "" }, ruledomain.ErrInvalidScopeRef},
		{"unknown ref", func(r *ruledomain.CreateRequest) {
			r.ScopeRef = snowflake.ParseInt64(99999999).String()
		}, ruledomain.ErrUnknownScopeRef},
		{"bad type", func(r *ruledomain.CreateRequest) { r.Type = "flat" }, ruledomain.ErrInvalidType},
		{"missing value", func(r *ruledomain.CreateRequest) { r.Value = nil }, ruledomain.ErrInvalidValue},
		{"negative value", func(r *ruledomain.CreateRequest) { r.Value = strPtr("-5") }, ruledomain.ErrInvalidValue},
		{"tiers on percentage", func(r *ruledomain.CreateRequest) {
			r.Tiers = []ruledomain.TierInput{{MinAmount: "0", Rate: "5"}}
		}, ruledomain.ErrInvalidTiers},
		{"end before start", func(r *ruledomain.CreateRequest) {
			start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			end := start.Add(-24 * time.Hour)
			r.StartDate = &start
			r.EndDate = &end
		}, ruledomain.ErrInvalidDateRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := vendorRuleRequest(f)
			tc.mutate(&req)
			_, err := f.svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateTieredValidation(t *testing.T) {
	f := newFixture(t)

	base := func() ruledomain.CreateRequest {
		return ruledomain.CreateRequest{
			Name:     "Tiered",
			Scope:    ruledomain.ScopeVendor,
			ScopeRef: f.vendor.ID.String(),
			Type:     ruledomain.TypeTiered,
			Tiers: []ruledomain.TierInput{
				{MinAmount: "0", MaxAmount: strPtr("1000"), Rate: "10"},
				{MinAmount: "1000", Rate: "5"},
			},
		}
	}

	t.Run("no tiers", func(t *testing.T) {
		req := base()
		req.Tiers = nil
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ruledomain.ErrInvalidTiers)
	})

	t.Run("value on tiered", func(t *testing.T) {
		req := base()
		req.Value = strPtr("10")
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ruledomain.ErrInvalidValue)
	})

	t.Run("rate above 100", func(t *testing.T) {
		req := base()
		req.Tiers[0].Rate = "101"
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ruledomain.ErrInvalidTiers)
	})

	t.Run("max not above min", func(t *testing.T) {
		req := base()
		req.Tiers[0].MaxAmount = strPtr("0")
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ruledomain.ErrInvalidTiers)
	})

	t.Run("overlapping brackets", func(t *testing.T) {
		req := base()
		req.Tiers[1].MinAmount = "500"
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ruledomain.ErrInvalidTiers)
	})

	t.Run("unbounded middle tier", func(t *testing.T) {
		req := base()
		req.Tiers[0].MaxAmount = nil
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ruledomain.ErrInvalidTiers)
	})

	t.Run("bad period", func(t *testing.T) {
		req := base()
		req.TierPeriod = "weekly"
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ruledomain.ErrInvalidTierPeriod)
	})
}

func TestUpdateRule(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), vendorRuleRequest(f))
	require.NoError(t, err)

	req := vendorRuleRequest(f)
	req.Name = "Vendor Deal v2"
	req.Value = strPtr("20")
	updated, err := f.svc.Update(context.Background(), created.ID, req)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Vendor Deal v2", updated.Name)
	assert.Equal(t, "20.00", *updated.Value)
	assert.WithinDuration(t, created.CreatedAt, updated.CreatedAt, time.Second)
}

func TestUpdateUnknownRule(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Update(context.Background(), snowflake.ParseInt64(123456).String(), vendorRuleRequest(f))
	assert.ErrorIs(t, err, ruledomain.ErrNotFound)
}

func TestDeleteUnreferencedRuleRemovesIt(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), vendorRuleRequest(f))
	require.NoError(t, err)

	result, err := f.svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.False(t, result.Deactivated)

	_, err = f.svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, ruledomain.ErrNotFound)
}

func TestDeleteReferencedRuleDeactivatesInstead(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.Create(context.Background(), vendorRuleRequest(f))
	require.NoError(t, err)
	ruleID, err := snowflake.ParseString(created.ID)
	require.NoError(t, err)

	record := &commissiondomain.OrderCommission{
		ID:               f.genID.Generate(),
		OrderID:          f.genID.Generate(),
		OrderItemID:      f.genID.Generate(),
		VendorID:         f.vendor.ID,
		ProductID:        f.genID.Generate(),
		SaleAmount:       decimal.NewFromInt(100),
		Quantity:         1,
		UnitPrice:        decimal.NewFromInt(100),
		RuleID:           &ruleID,
		CommissionType:   string(ruledomain.TypePercentage),
		CommissionAmount: decimal.NewFromInt(15),
		VendorEarning:    decimal.NewFromInt(85),
		Status:           commissiondomain.StatusActive,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, f.db.Create(record).Error)

	result, err := f.svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, result.Deleted)
	assert.True(t, result.Deactivated)

	got, err := f.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive, "referenced rule must survive as inactive")
}
