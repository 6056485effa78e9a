package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/squidpro/auth-system/internal/api"
	"github.com/squidpro/auth-system/internal/core/service"
	"github.com/squidpro/auth-system/internal/infrastructure/config"
	mongostore "github.com/squidpro/auth-system/internal/infrastructure/db/mongo"
	redisstore "github.com/squidpro/auth-system/internal/infrastructure/db/redis"
	"github.com/squidpro/auth-system/internal/infrastructure/ledger"
	"github.com/squidpro/auth-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	accountRepo := mongostore.NewAccountRepository(db)
	if err := accountRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Services ---
	sessionStore := redisstore.NewSessionStore(rdb)
	sessions := service.NewSessionManager(sessionStore, cfg.SessionTTL, log)
	sessions.StartSweeper(ctx, cfg.SweepInterval)

	suppliers := ledger.NewClient(cfg.Ledger.SupplierURL, cfg.Ledger.Secret, cfg.Ledger.Timeout)
	reviewers := ledger.NewClient(cfg.Ledger.ReviewerURL, cfg.Ledger.Secret, cfg.Ledger.Timeout)
	roles := service.NewRoleResolver(suppliers, reviewers, cfg.Ledger.Timeout, log)

	authService := service.NewAuthService(accountRepo, sessions, log)

	// --- HTTP ---
	e := api.NewRouter(db, rdb, authService, roles, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("auth system started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
