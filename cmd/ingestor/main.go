package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"estate_dashboard/internal/adapters/csvsource"
	"estate_dashboard/internal/adapters/observability"
	"estate_dashboard/internal/app"
	"estate_dashboard/internal/shared"
	mysqlrepo "estate_dashboard/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("path", cfg.DataPath).
		Int("workers", cfg.IngestWorkers).
		Int("batch", cfg.IngestBatchSize).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	if err := repo.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	imp := app.NewImportService(csvsource.New(cfg.DataPath), repo)
	n, err := imp.Import(ctx, cfg.IngestBatchSize, cfg.IngestWorkers)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	stored, err := repo.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("count after import failed")
	}
	log.Info().Int("rows", n).Int("stored", stored).Msg("ingestion completed")
}
