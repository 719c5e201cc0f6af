package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/Vivianhuwz/cobrancayb/internal/config"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(&domain.Record{}, &domain.Payment{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
