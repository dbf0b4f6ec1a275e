package bootstrap

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	coreconfig "github.com/m3rciful/kropbot/core/config"
	coredatabase "github.com/m3rciful/kropbot/core/database"
	"github.com/m3rciful/kropbot/core/logger"
	"github.com/m3rciful/kropbot/core/telegram/state"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coreconfig.MongoConfig) (*mongo.Database, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB       *mongo.Database
	Sessions state.Manager
}

// Run initializes the logger, connects to the document store, and builds the
// configured session backend.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, opts.Config.Mongo)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	sessions, err := buildSessions(ctx, opts.Config.Sessions)
	if err != nil {
		_ = coredatabase.Disconnect(ctx, db)
		return nil, fmt.Errorf("bootstrap: session backend failed: %w", err)
	}

	return &Result{DB: db, Sessions: sessions}, nil
}

func buildSessions(ctx context.Context, cfg coreconfig.SessionsConfig) (state.Manager, error) {
	switch cfg.Backend {
	case coreconfig.SessionsRedis:
		ttl := time.Duration(cfg.Redis.TTLMinutes) * time.Minute
		return state.NewRedisManager(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl)
	default:
		return state.NewMemoryManager(), nil
	}
}
