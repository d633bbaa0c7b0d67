package audit

import (
	"github.com/vendra/vendra/internal/audit/repository"
	"github.com/vendra/vendra/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
