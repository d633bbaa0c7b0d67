// Package seed bootstraps a demo catalog so a fresh install can exercise
// commission resolution without external data.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/vendra/vendra/internal/catalog/domain"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	"gorm.io/gorm"
)

const demoVendorName = "Acme Outfitters"

// EnsureDemoData seeds a vendor, a small category tree, a few products,
// and a platform-wide percentage rule. It is idempotent.
func EnsureDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vendor, err := ensureDemoVendor(ctx, tx, node)
		if err != nil {
			return err
		}

		root, leaf, err := ensureDemoCategories(ctx, tx, node)
		if err != nil {
			return err
		}

		if err := ensureDemoProducts(ctx, tx, node, vendor.ID, root.ID, leaf.ID); err != nil {
			return err
		}

		return ensureDemoPlatformRule(ctx, tx, node)
	})
}

func ensureDemoVendor(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*catalogdomain.Vendor, error) {
	var vendor catalogdomain.Vendor
	err := tx.WithContext(ctx).Where("name = ?", demoVendorName).First(&vendor).Error
	if err == nil {
		return &vendor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	vendor = catalogdomain.Vendor{
		ID:                 node.Generate(),
		Name:               demoVendorName,
		PlanCommissionRate: decimal.NewFromInt(12),
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := tx.WithContext(ctx).Create(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func ensureDemoCategories(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*catalogdomain.Category, *catalogdomain.Category, error) {
	root, err := ensureCategory(ctx, tx, node, "Outdoor", nil)
	if err != nil {
		return nil, nil, err
	}
	leaf, err := ensureCategory(ctx, tx, node, "Camping", &root.ID)
	if err != nil {
		return nil, nil, err
	}
	return root, leaf, nil
}

func ensureCategory(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name string, parentID *snowflake.ID) (*catalogdomain.Category, error) {
	var category catalogdomain.Category
	err := tx.WithContext(ctx).Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = catalogdomain.Category{
		ID:        node.Generate(),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func ensureDemoProducts(ctx context.Context, tx *gorm.DB, node *snowflake.Node, vendorID, rootID, leafID snowflake.ID) error {
	products := []struct {
		name       string
		categoryID snowflake.ID
		price      decimal.Decimal
	}{
		{"Trail Backpack", leafID, decimal.NewFromFloat(89.90)},
		{"Two-Person Tent", leafID, decimal.NewFromFloat(249.00)},
		{"Hiking Poles", rootID, decimal.NewFromFloat(39.50)},
	}

	now := time.Now().UTC()
	for _, p := range products {
		var existing catalogdomain.Product
		err := tx.WithContext(ctx).Where("name = ?", p.name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		product := catalogdomain.Product{
			ID:         node.Generate(),
			Name:       p.name,
			VendorID:   vendorID,
			CategoryID: p.categoryID,
			Price:      p.price,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureDemoPlatformRule(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var rule ruledomain.CommissionRule
	err := tx.WithContext(ctx).Where("scope = ?", ruledomain.ScopePlatform).First(&rule).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	value := decimal.NewFromInt(10)
	now := time.Now().UTC()
	rule = ruledomain.CommissionRule{
		ID:        node.Generate(),
		Name:      "Platform Standard Commission",
		Scope:     ruledomain.ScopePlatform,
		Type:      ruledomain.TypePercentage,
		Value:     &value,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&rule).Error
}
