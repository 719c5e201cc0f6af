package syncer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Vivianhuwz/cobrancayb/internal/config"
)

var Module = fx.Module("syncer",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(StartAutoSync),
)

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Interval:      cfg.Sync.Interval,
		RetryAttempts: cfg.Sync.RetryAttempts,
		RetryDelay:    cfg.Sync.RetryDelay,
		// Without a remote endpoint there is nothing to push to.
		AutoSync: cfg.Sync.AutoSync && cfg.RemoteConfigured(),
	}
}

func StartAutoSync(lc fx.Lifecycle, s *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.RunForever(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
