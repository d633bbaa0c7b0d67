package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/vendra/vendra/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) FindVendorByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.Vendor, error) {
	var vendor catalogdomain.Vendor
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, plan_commission_rate, active, created_at, updated_at
		 FROM vendors WHERE id = ?`,
		id,
	).Scan(&vendor).Error
	if err != nil {
		return nil, err
	}
	if vendor.ID == 0 {
		return nil, nil
	}
	return &vendor, nil
}

func (r *repo) FindProductByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.Product, error) {
	var product catalogdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, vendor_id, category_id, price, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	return &product, nil
}

func (r *repo) FindCategoryByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.Category, error) {
	var category catalogdomain.Category
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, parent_id, created_at FROM categories WHERE id = ?`,
		id,
	).Scan(&category).Error
	if err != nil {
		return nil, err
	}
	if category.ID == 0 {
		return nil, nil
	}
	return &category, nil
}

func (r *repo) ListCategories(ctx context.Context, db *gorm.DB) ([]catalogdomain.Category, error) {
	var categories []catalogdomain.Category
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, parent_id, created_at FROM categories ORDER BY created_at ASC`,
	).Scan(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
