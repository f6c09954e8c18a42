package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"minihotel/internal/adapters/observability"
	redisad "minihotel/internal/adapters/redis"
	"minihotel/internal/app"
	"minihotel/internal/domain"
	"minihotel/internal/shared"
	mysqlrepo "minihotel/internal/storage/mysql"
	"minihotel/internal/storage/static"
)

func main() {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Int("rooms", len(static.Rooms)).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		cache = rc
	}
	catalog := app.NewCatalogService(repo, cache, cfg.CacheTTL)

	n, err := app.NewSeedService(repo, catalog, cfg.SeedWorkers).Seed(ctx, static.Rooms)
	if err != nil {
		log.Fatal().Err(err).Int("seeded", n).Msg("seeding incomplete")
	}
	log.Info().Int("seeded", n).Msg("seeding completed")
}
