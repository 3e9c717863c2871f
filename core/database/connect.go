package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/signalbot/core/logger"
	"github.com/m3rciful/signalbot/core/netutil"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Connect opens the database, waits until it answers pings and configures the pool.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	start := time.Now()
	db, err := sqlx.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	// Postgres in compose setups often comes up after the bot.
	pingErr := netutil.Retry(ctx, netutil.RetryPolicy{Attempts: 10, Initial: time.Second, Max: 5 * time.Second},
		func(ctx context.Context) error {
			pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return db.PingContext(pctx)
		},
		func(attempt int, err error, backoff time.Duration) {
			logger.DB.Warn("db ping failed",
				slog.String("event", "db.ping"),
				slog.String("db", cfg.Target()),
				slog.Int("attempts", attempt),
				slog.Duration("backoff", backoff),
				slog.Any("err", err),
			)
		},
	)
	took := time.Since(start)
	if pingErr != nil {
		_ = db.Close()
		logger.DB.Error("db connect failed",
			slog.String("event", "db.connect"),
			slog.String("driver", cfg.Driver),
			slog.String("db", cfg.Target()),
			slog.Duration("duration", logger.RoundMS(took)),
			slog.Any("err", pingErr),
		)
		return nil, fmt.Errorf("db ping: %w", pingErr)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.DB.Info("db connected",
		slog.String("event", "db.connect"),
		slog.String("driver", cfg.Driver),
		slog.String("db", cfg.Target()),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration", logger.RoundMS(took)),
	)
	return db, nil
}
