package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/homeplan-finance-core/internal/api_gateway"
	"github.com/homeplan-finance-core/internal/api_gateway/service"
	"github.com/homeplan-finance-core/internal/collaborators"
	"github.com/homeplan-finance-core/internal/config"
	"github.com/homeplan-finance-core/internal/data/mongo"
	"github.com/homeplan-finance-core/internal/data/postgres"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/plan"
	"github.com/homeplan-finance-core/internal/logger"
	"github.com/homeplan-finance-core/internal/platform/cache"
	"github.com/homeplan-finance-core/internal/platform/messaging/producers"
	"github.com/homeplan-finance-core/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api_gateway")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize the plan cache unless disabled
	var planCache service.PlanCache
	var redisCache *cache.RedisCache
	if !cfg.Redis.Disabled {
		redisCache, err = cache.NewRedisCache(appCtx, log, &cfg.Redis)
		if err != nil {
			log.Error("Failed to initialize Redis", "error", err)
			os.Exit(1)
		}
		planCache = redisCache
	}

	// Initialize Kafka producer (publishes to the transfer topic)
	kafkaProducer, err := producers.NewTransferReqMessageProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	applicationRepo := postgres.NewApplicationRepository(log, postgresDB)
	invitationRepo := postgres.NewInvitationRepository(log, postgresDB)
	participantRepo := postgres.NewParticipantRepository(log, postgresDB)
	scheduleRepo := postgres.NewScheduleRepository(log, postgresDB)
	ledgerRepo := mongo.NewRecordRepository(log, mongoDB.Database())

	// Initialize collaborator stubs
	currency, err := money.NewCurrency(cfg.Lending.DefaultCurrency)
	if err != nil {
		log.Error("Invalid default currency", "currency", cfg.Lending.DefaultCurrency, "error", err)
		os.Exit(1)
	}
	identity := collaborators.NewStubIdentityProvider()
	income := collaborators.NewStubIncomeEstimator(currency)
	debt := collaborators.NewStubDebtAggregator(currency)
	catalog := collaborators.NewStubProductCatalog()

	generator, err := plan.NewGenerator(plan.DefaultStrategies)
	if err != nil {
		log.Error("Failed to initialize plan generator", "error", err)
		os.Exit(1)
	}

	// Initialize services
	services := api_gateway.Services{
		Account:  service.NewAccountService(log, accountRepo, scheduleRepo),
		Transfer: service.NewTransferService(log, ledgerRepo, kafkaProducer),
		Plan: service.NewPlanService(
			log, &cfg.Lending,
			identity, income, debt, catalog,
			generator, planCache,
		),
		Origination: service.NewOriginationService(
			log,
			applicationRepo, invitationRepo, participantRepo,
			accountRepo, scheduleRepo,
			catalog, kafkaProducer,
		),
	}

	// Initialize REST server
	server := api_gateway.NewServer(log, cfg, services)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	if redisCache != nil {
		if err = redisCache.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
