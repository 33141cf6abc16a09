package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bookmarks/internal/config"
	"bookmarks/internal/db"
	"bookmarks/internal/service"
	"bookmarks/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			db.NewGormClient,
			newLogger,
		),
		service.Module,
		transport.Module,
		fx.Invoke(func(*transport.HTTPServer) {}),
	)

	app.Run()
}

func newLogger() (*zap.SugaredLogger, error) {
	l, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
