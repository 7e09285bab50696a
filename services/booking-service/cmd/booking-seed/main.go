// Command booking-seed applies the schema and loads the default services and
// bays into DATABASE_URL.
package main

import (
	"context"
	"os"
	"time"

	"github.com/md-rashed-zaman/golfbay/libs/config"
	"github.com/md-rashed-zaman/golfbay/libs/db"
	"github.com/md-rashed-zaman/golfbay/libs/runtime"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/seed"
	"github.com/md-rashed-zaman/golfbay/services/booking-service/internal/storage"
)

func main() {
	logger := runtime.NewLogger("booking-seed")
	if err := config.LoadDotenv(); err != nil {
		logger.Error("dotenv load failed", "err", err)
		os.Exit(1)
	}
	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		logger.Error("config error", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, dbURL, db.Options{MaxConns: 2})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := storage.NewPostgres(pool)
	if err := store.Migrate(ctx); err != nil {
		logger.Error("migrate failed", "err", err)
		os.Exit(1)
	}
	res, err := seed.Apply(ctx, store)
	if err != nil {
		logger.Error("seed failed", "err", err)
		os.Exit(1)
	}
	for _, s := range res.Services {
		logger.Info("service ready", "id", s.ID, "name", s.Name, "duration_minutes", s.DurationMinutes)
	}
	for _, b := range res.Bays {
		logger.Info("bay ready", "id", b.ID, "name", b.Name, "type", string(b.Type))
	}
}
