package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	server "minihotel/internal/adapters/http_server"
	"minihotel/internal/adapters/observability"
	"minihotel/internal/adapters/payment"
	redisad "minihotel/internal/adapters/redis"
	"minihotel/internal/app"
	"minihotel/internal/domain"
	"minihotel/internal/shared"
	mysqlrepo "minihotel/internal/storage/mysql"
	"minihotel/internal/storage/static"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rooms, closeRooms := openCatalog(cfg)
	defer closeRooms()

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, catalog cache disabled")
			_ = rc.Close()
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
			cache = rc
			defer rc.Close()
		}
	}
	catalog := app.NewCatalogService(rooms, cache, cfg.CacheTTL)

	sessions := app.NewSessionStore(cfg.SessionTTL, func(id string) app.FlowHooks {
		return app.FlowHooks{
			Transition: func(from, to app.View) {
				observability.ObserveTransition(string(from), string(to))
				log.Debug().Str("session", id).Str("from", string(from)).Str("to", string(to)).Msg("view changed")
			},
			Confirmed: func(c domain.Confirmation) {
				log.Info().
					Str("session", id).
					Str("code", c.Code).
					Str("room", c.RoomName).
					Int("nights", c.Nights).
					Int64("prepaid", c.Prepaid).
					Msg("booking confirmed")
			},
		}
	})
	sessions.OnSize(func(n int) { observability.ActiveSessions.Set(float64(n)) })
	settler := payment.NewSimulator(cfg.SettleValidate, cfg.SettleCharge)

	// http
	srv := server.New(server.Options{
		Logger:       log.Logger,
		RateLimitRPS: cfg.RateLimitRPS,
		RateBurst:    cfg.RateLimitBurst,
		TrustProxy:   cfg.TrustProxy,
	})
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Catalog: catalog, Sessions: sessions, Settler: settler})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("catalog", cfg.CatalogSource).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shCtx)
	})
	g.Go(func() error {
		return observability.Serve(gctx, cfg.MetricsAddr, reg)
	})
	g.Go(func() error {
		return sessions.RunSweeper(gctx, cfg.SweepInterval, func(n, left int) {
			if n > 0 {
				log.Debug().Int("evicted", n).Int("left", left).Msg("idle sessions swept")
			}
		})
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
	log.Info().Msg("api stopped")
}

// openCatalog picks the room source named by the configuration.
func openCatalog(cfg shared.Config) (domain.RoomCatalog, func()) {
	if cfg.CatalogSource != shared.CatalogMySQL {
		log.Info().Int("rooms", len(static.Rooms)).Msg("serving built-in catalog")
		return static.New(static.Rooms...), func() {}
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db), func() { _ = db.Close() }
}
