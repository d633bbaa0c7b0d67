package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	// GetProduct loads the product a sold line item references.
	GetProduct(ctx context.Context, id snowflake.ID) (*Product, error)

	// VendorPlanRate returns the vendor's plan-level commission percentage,
	// used as the fallback when no rule resolves.
	VendorPlanRate(ctx context.Context, vendorID snowflake.ID) (decimal.Decimal, error)

	// CategoryAncestors returns the precomputed ancestor-id chain for the
	// category, nearest parent first.
	CategoryAncestors(ctx context.Context, categoryID snowflake.ID) ([]snowflake.ID, error)

	VendorExists(ctx context.Context, id snowflake.ID) (bool, error)
	ProductExists(ctx context.Context, id snowflake.ID) (bool, error)
	CategoryExists(ctx context.Context, id snowflake.ID) (bool, error)
}

var (
	ErrVendorNotFound   = errors.New("vendor_not_found")
	ErrProductNotFound  = errors.New("product_not_found")
	ErrCategoryNotFound = errors.New("category_not_found")
)
