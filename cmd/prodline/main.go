package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/prodline/internal/clock"
	"github.com/smallbiznis/prodline/internal/config"
	"github.com/smallbiznis/prodline/internal/migration"
	"github.com/smallbiznis/prodline/internal/observability"
	"github.com/smallbiznis/prodline/internal/server"
	"github.com/smallbiznis/prodline/internal/slot"
	"github.com/smallbiznis/prodline/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		slot.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
