package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/hostaway"
	"flex_reviews/internal/adapters/observability"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	"flex_reviews/internal/shared"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.HostawayBase).
		Str("mock", cfg.MockDataPath).
		Bool("skip_invalid", cfg.SeedSkipInvalid).
		Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	// Live API when credentials are present, otherwise the static mock file.
	var source domain.ReviewSource
	if cfg.HostawayKey != "" {
		client, err := hostaway.New(cfg.HostawayBase, cfg.HostawayAccountID, cfg.HostawayKey, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Hostaway client")
		}
		source = client
	} else {
		source = hostaway.NewFileSource(cfg.MockDataPath)
	}

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewIngestionService(source, repo, cache, cfg.SeedSkipInvalid)

	count, err := ing.Seed(ctx, cfg.SeedForce)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	observability.ObserveIngest("written", count)
	log.Info().Int("written", count).Msg("seeding completed")
}
