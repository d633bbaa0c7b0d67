package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindVendorByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vendor, error)
	FindProductByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindCategoryByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Category, error)
	ListCategories(ctx context.Context, db *gorm.DB) ([]Category, error)
}
