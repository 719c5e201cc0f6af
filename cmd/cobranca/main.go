package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/Vivianhuwz/cobrancayb/internal/clock"
	"github.com/Vivianhuwz/cobrancayb/internal/config"
	"github.com/Vivianhuwz/cobrancayb/internal/logger"
	"github.com/Vivianhuwz/cobrancayb/internal/merge"
	"github.com/Vivianhuwz/cobrancayb/internal/migration"
	"github.com/Vivianhuwz/cobrancayb/internal/receivable"
	"github.com/Vivianhuwz/cobrancayb/internal/remote/postgrest"
	"github.com/Vivianhuwz/cobrancayb/internal/server"
	"github.com/Vivianhuwz/cobrancayb/internal/syncer"
	"github.com/Vivianhuwz/cobrancayb/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Ledger engine
		receivable.Module,
		merge.Module,
		postgrest.Module,
		syncer.Module,

		// HTTP surface
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
