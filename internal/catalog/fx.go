package catalog

import (
	"github.com/vendra/vendra/internal/catalog/repository"
	"github.com/vendra/vendra/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
