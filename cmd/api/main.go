package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/adapters/csvsource"
	server "estate_dashboard/internal/adapters/http_server"
	"estate_dashboard/internal/adapters/observability"
	redisad "estate_dashboard/internal/adapters/redis"
	"estate_dashboard/internal/app"
	"estate_dashboard/internal/domain"
	"estate_dashboard/internal/shared"
	mysqlrepo "estate_dashboard/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// listing source
	var src domain.ListingSource
	switch cfg.DataSource {
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		src = mysqlrepo.New(db)
	default:
		src = csvsource.New(cfg.DataPath)
		log.Info().Str("path", cfg.DataPath).Msg("using CSV listing source")
	}
	tables := app.NewTableCache(src)

	// a missing or malformed dataset is fatal at startup
	if cfg.Preload {
		if _, err := tables.Table(ctx); err != nil {
			log.Fatal().Err(err).Msg("listing table load failed")
		}
	}

	// response cache is optional
	var cache domain.Cache
	if cfg.RedisAddr != "" && cfg.CacheTTLSeconds > 0 {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, continuing without response cache")
		} else {
			cache = rc
		}
	}
	q := app.NewQueryService(tables, cache, cfg.CacheTTL())

	// http
	srv := server.New(server.Options{
		Timeout:   cfg.RequestTimeout,
		RateRPS:   cfg.RateLimitRPS,
		RateBurst: cfg.RateLimitBurst,
	})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Ready: tables.Loaded})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
