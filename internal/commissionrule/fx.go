package commissionrule

import (
	"github.com/vendra/vendra/internal/commissionrule/repository"
	"github.com/vendra/vendra/internal/commissionrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commissionrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
