package commission

import (
	"github.com/vendra/vendra/internal/commission/repository"
	"github.com/vendra/vendra/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
