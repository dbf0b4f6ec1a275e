package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	coreconfig "github.com/m3rciful/kropbot/core/config"
	"github.com/m3rciful/kropbot/core/logger"
	"log/slog"
)

// Connect opens the Mongo client and verifies connectivity with a ping.
// The returned database handle is safe for concurrent use.
func Connect(ctx context.Context, cfg coreconfig.MongoConfig) (*mongo.Database, error) {
	timeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	took := time.Since(start)
	if err != nil {
		logger.DB.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("driver", "mongo"),
			slog.String("db", cfg.Database),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if pingErr := client.Ping(connectCtx, readpref.Primary()); pingErr != nil {
		_ = client.Disconnect(context.Background())
		logger.DB.Error("db ping failed",
			slog.String("event", "db.ping"),
			slog.String("driver", "mongo"),
			slog.String("db", cfg.Database),
			slog.String("err", pingErr.Error()),
		)
		return nil, fmt.Errorf("mongo ping: %w", pingErr)
	}

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("driver", "mongo"),
		slog.String("db", cfg.Database),
		slog.Duration("duration", logger.RoundMS(took)),
	)

	return client.Database(cfg.Database), nil
}

// Disconnect closes the underlying client of the database handle.
func Disconnect(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return nil
	}
	closeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Client().Disconnect(closeCtx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}
