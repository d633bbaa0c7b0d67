package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/vendra/vendra/internal/audit"
	"github.com/vendra/vendra/internal/cache"
	"github.com/vendra/vendra/internal/catalog"
	"github.com/vendra/vendra/internal/clock"
	"github.com/vendra/vendra/internal/commission"
	"github.com/vendra/vendra/internal/commissionrule"
	"github.com/vendra/vendra/internal/config"
	"github.com/vendra/vendra/internal/migration"
	"github.com/vendra/vendra/internal/server"
	"github.com/vendra/vendra/pkg/db"
	"github.com/vendra/vendra/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
		migration.Module,

		// Functional domains
		catalog.Module,
		audit.Module,
		commissionrule.Module,
		commission.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
