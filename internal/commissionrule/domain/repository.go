package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, rule *CommissionRule) error
	Update(ctx context.Context, db *gorm.DB, rule *CommissionRule) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*CommissionRule, error)
	List(ctx context.Context, db *gorm.DB) ([]CommissionRule, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]CommissionRule, error)
	Deactivate(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
