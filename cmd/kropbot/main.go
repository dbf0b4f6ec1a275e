package main

import (
	"context"
	"log"
	"time"

	"github.com/m3rciful/kropbot/core/bootstrap"
	"github.com/m3rciful/kropbot/core/cmd"
	coreconfig "github.com/m3rciful/kropbot/core/config"
	coredatabase "github.com/m3rciful/kropbot/core/database"
	"github.com/m3rciful/kropbot/internal/board"
	"github.com/m3rciful/kropbot/internal/bot"
)

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (cmd.ConfigCarrier, error) {
			return coreconfig.Load(path)
		},
		Bootstrap: func(carrier cmd.ConfigCarrier) (cmd.TelegramApp, error) {
			cfg := carrier.CoreConfig()

			timeout := time.Duration(cfg.Mongo.ConnectTimeoutSeconds) * time.Second
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			res, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
			if err != nil {
				return nil, err
			}

			store := board.NewMongoStore(res.DB)
			if err := store.EnsureIndexes(ctx, cfg.Board.Retention()); err != nil {
				return nil, err
			}

			app := bot.New(cfg, store, res.Sessions)
			app.OnShutdown(func(ctx context.Context) error {
				return coredatabase.Disconnect(ctx, res.DB)
			})
			return app, nil
		},
	})
	if err != nil {
		log.Fatalf("kropbot: %v", err)
	}
}
