package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/isobridge/internal/adapter/http"
	"github.com/iho/isobridge/internal/adapter/http/handler"
	"github.com/iho/isobridge/internal/adapter/refgen"
	postgresRepo "github.com/iho/isobridge/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/isobridge/internal/adapter/repository/redis"
	"github.com/iho/isobridge/internal/infrastructure/config"
	"github.com/iho/isobridge/internal/infrastructure/logger"
	"github.com/iho/isobridge/internal/infrastructure/postgres"
	"github.com/iho/isobridge/internal/infrastructure/redis"
	"github.com/iho/isobridge/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	appLogger.Info().Msg("connected to redis")

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	settlementRepo := postgresRepo.NewSettlementRepository(pool)
	messageRepo := postgresRepo.NewMessageRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	refGen := refgen.NewUETRGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	bridgeUC := usecase.NewBridgeUseCase(txManager, settlementRepo, messageRepo, auditRepo, refGen, idGen, retrier, appLogger)
	statementUC := usecase.NewStatementUseCase(settlementRepo, messageRepo, auditRepo, idGen, appLogger)
	queryUC := usecase.NewQueryUseCase(settlementRepo, messageRepo, auditRepo, idGen, cache, appLogger)

	// Initialize handlers
	bridgeHandler := handler.NewBridgeHandler(bridgeUC, queryUC)
	statementHandler := handler.NewStatementHandler(statementUC)
	exportHandler := handler.NewExportHandler(queryUC)
	auditHandler := handler.NewAuditHandler(queryUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BridgeHandler:    bridgeHandler,
		StatementHandler: statementHandler,
		ExportHandler:    exportHandler,
		AuditHandler:     auditHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           appLogger,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info().Msg("shutting down server...")

	// Graceful shutdown. In-flight commits finish; the transaction either
	// applies fully or rolls back.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info().Msg("server stopped")
}
