package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/http_server"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/observability"
	redisad "github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/redis"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/sentiment"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/upstream"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/app"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/shared"
	mysqlrepo "github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := mysqlrepo.Open(ctx, cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql connect failed")
	}
	defer db.Close()
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	log.Info().Msg("database connection ok")

	rdb := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rdb.Close()
	if err := redisad.Ping(ctx, rdb); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	// deps
	repo := mysqlrepo.New(db)
	up, err := upstream.New(cfg.BackendURL, cfg.UpstreamTimeout, cfg.UpstreamRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize upstream client")
	}
	an, err := sentiment.New(cfg.SentimentURL, cfg.SentimentTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize sentiment client")
	}

	catalog := app.NewCatalogService(repo, redisad.NewLocker(rdb))
	dealers := app.NewDealershipService(up, an, cfg.SentimentConcurrency, cfg.ReviewInsertPath)
	auth := app.NewAuthService(repo, redisad.NewSessionStore(rdb), cfg.SessionTTL)

	if cfg.SeedOnStart {
		if err := catalog.EnsureSeeded(ctx); err != nil {
			// reads retry the seed lazily, so the API can still come up
			log.Error().Err(err).Msg("startup seeding failed")
		}
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:       catalog,
		Dealers:       dealers,
		Auth:          auth,
		SecureCookies: cfg.SecureCookies,
		Checks: map[string]func(context.Context) error{
			"mysql": db.PingContext,
			"redis": func(ctx context.Context) error { return redisad.Ping(ctx, rdb) },
		},
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("backend", cfg.BackendURL).Msg("API listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
