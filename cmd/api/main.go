package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school-points-backend/config"
	httpHandler "school-points-backend/internal/adapter/http/handler"
	pgStorage "school-points-backend/internal/adapter/storage/postgres"
	redisStorage "school-points-backend/internal/adapter/storage/redis"
	"school-points-backend/internal/core/ports"
	"school-points-backend/internal/service"
	"school-points-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("school-points-backend", cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting School Points Backend")

	ctx := context.Background()

	// Run pending schema migrations before opening the pool
	if err := pgStorage.Migrate(cfg.Database.DSN(), log); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	scanRepo := pgStorage.NewScanLogRepo(pool)
	profileRepo := pgStorage.NewStudentProfileRepo(pool)
	productRepo := pgStorage.NewProductRepo(pool)
	orderRepo := pgStorage.NewOrderRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	statsCache := redisStorage.NewStatsCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(accountRepo, walletRepo, profileRepo, hashSvc, tokenSvc)
	awardSvc := service.NewAwardService(
		accountRepo,
		walletRepo,
		ledgerRepo,
		scanRepo,
		profileRepo,
		transactor,
		cfg.Award.MaxPoints,
		cfg.Award.MaxReasonLen,
		log,
	)
	reportingSvc := service.NewReportingService(
		accountRepo,
		walletRepo,
		ledgerRepo,
		scanRepo,
		profileRepo,
		statsCache,
		cfg.Award.StatsCacheTTL,
		log,
	)
	storeSvc := service.NewStoreService(accountRepo, walletRepo, ledgerRepo, productRepo, orderRepo, transactor, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		AwardSvc:       awardSvc,
		ReportingSvc:   reportingSvc,
		StoreSvc:       storeSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
