package migration

import (
	auditdomain "github.com/vendra/vendra/internal/audit/domain"
	catalogdomain "github.com/vendra/vendra/internal/catalog/domain"
	commissiondomain "github.com/vendra/vendra/internal/commission/domain"
	ruledomain "github.com/vendra/vendra/internal/commissionrule/domain"
	"github.com/vendra/vendra/internal/config"
	"github.com/vendra/vendra/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite have no versioned migrations; the schema is
			// derived from the models instead.
			if err := conn.AutoMigrate(
				&catalogdomain.Vendor{},
				&catalogdomain.Category{},
				&catalogdomain.Product{},
				&ruledomain.CommissionRule{},
				&ruledomain.CommissionTier{},
				&commissiondomain.OrderCommission{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoData(conn)
		}
		return nil
	}),
)
