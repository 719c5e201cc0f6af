package receivable

import (
	"go.uber.org/fx"

	"github.com/Vivianhuwz/cobrancayb/internal/receivable/repository"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/service"
)

var Module = fx.Module("receivable.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
