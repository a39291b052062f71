package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/dairypro/internal/clock"
	"github.com/smallbiznis/dairypro/internal/config"
	"github.com/smallbiznis/dairypro/internal/lock"
	"github.com/smallbiznis/dairypro/internal/migration"
	"github.com/smallbiznis/dairypro/internal/observability"
	"github.com/smallbiznis/dairypro/internal/scheduler"
	"github.com/smallbiznis/dairypro/internal/server"
	"github.com/smallbiznis/dairypro/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		server.Module,

		scheduler.Module,
		migration.Module,
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
