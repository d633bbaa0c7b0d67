// Package domain contains the catalog entities commission resolution
// depends on: vendors, categories, and products.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Vendor sells products on the marketplace. PlanCommissionRate is the
// plan-level percentage used when no commission rule applies.
type Vendor struct {
	ID                 snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name               string          `json:"name" gorm:"type:text;not null"`
	PlanCommissionRate decimal.Decimal `json:"plan_commission_rate" gorm:"type:numeric(10,2);not null;default:0"`
	Active             bool            `json:"active" gorm:"not null;default:true"`
	CreatedAt          time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Vendor) TableName() string { return "vendors" }

type Category struct {
	ID        snowflake.ID  `json:"id" gorm:"primaryKey"`
	Name      string        `json:"name" gorm:"type:text;not null"`
	ParentID  *snowflake.ID `json:"parent_id,omitempty" gorm:"index"`
	CreatedAt time.Time     `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID         snowflake.ID    `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"type:text;not null"`
	VendorID   snowflake.ID    `json:"vendor_id" gorm:"not null;index"`
	CategoryID snowflake.ID    `json:"category_id" gorm:"not null;index"`
	Price      decimal.Decimal `json:"price" gorm:"type:numeric(20,2);not null"`
	CreatedAt  time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }
