package postgrest

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Vivianhuwz/cobrancayb/internal/config"
	remotedomain "github.com/Vivianhuwz/cobrancayb/internal/remote/domain"
)

func provideTransport(cfg config.Config, log *zap.Logger) remotedomain.Transport {
	return NewClient(Config{
		BaseURL: cfg.Remote.URL,
		APIKey:  cfg.Remote.APIKey,
		Table:   cfg.Remote.Table,
	}, log)
}

var Module = fx.Module("remote.postgrest",
	fx.Provide(provideTransport),
)
