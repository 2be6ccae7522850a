package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/homeplan-finance-core/internal/config"
	"github.com/homeplan-finance-core/internal/data/mongo"
	"github.com/homeplan-finance-core/internal/data/postgres"
	"github.com/homeplan-finance-core/internal/logger"
	"github.com/homeplan-finance-core/internal/platform/messaging/consumers"
	"github.com/homeplan-finance-core/internal/platform/messaging/producers"
	"github.com/homeplan-finance-core/internal/platform/persistence"
	"github.com/homeplan-finance-core/internal/transfer/components"
	"github.com/homeplan-finance-core/internal/transfer/consumer"
	"github.com/homeplan-finance-core/internal/transfer/outbox_poller"
	"github.com/homeplan-finance-core/internal/transfer/service"
)

const shutdownGrace = 30 * time.Second

// processor holds every long-lived resource the transfer processor owns so
// shutdown can walk them in one place.
type processor struct {
	log        *slog.Logger
	cfg        *config.Config
	postgresDB *persistence.PostgresDB
	mongoDB    *persistence.MongoDB
	consumer   *consumers.KafkaConsumer
	dlq        *producers.DLQProducer
	processing service.ProcessingService
	handler    *consumer.TransferEventHandler
	poller     *outbox_poller.Poller
}

func newProcessor(ctx context.Context, log *slog.Logger, cfg *config.Config) (*processor, error) {
	postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	mongoDB, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
	if err != nil {
		postgresDB.Close()
		return nil, fmt.Errorf("mongo: %w", err)
	}

	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	ledgerRepo := mongo.NewRecordRepository(log, mongoDB.Database())

	dlqProducer, err := producers.NewDLQProducer(ctx, log, &cfg.Kafka)
	if err != nil {
		return nil, fmt.Errorf("dlq producer: %w", err)
	}
	// NewDLQProducer returns nil when no DLQ topic is configured. Only a
	// non-nil producer may be stored in the interface, otherwise the nil
	// checks downstream stop working.
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	processing := components.CreateProcessingService(
		postgresDB,
		accountRepo,
		outboxRepo,
		ledgerRepo,
		deadLetters,
		log,
		cfg,
	)

	return &processor{
		log:        log,
		cfg:        cfg,
		postgresDB: postgresDB,
		mongoDB:    mongoDB,
		consumer:   consumers.NewKafkaConsumer(ctx, log, &cfg.Kafka),
		dlq:        dlqProducer,
		processing: processing,
		handler:    consumer.NewTransferEventHandler(log, processing, deadLetters),
		poller: outbox_poller.NewPoller(
			&cfg.Outbox,
			outboxRepo,
			outbox_poller.NewLedgerPublisher(ledgerRepo, outboxRepo, log),
			log,
		),
	}, nil
}

// run starts the consumer and the poller and blocks until the context is
// cancelled or one of them fails.
func (p *processor) run(ctx context.Context) error {
	errChan := make(chan error, 1)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		p.log.Info("Starting Kafka consumer",
			"topic", p.cfg.Kafka.TransferTopic,
			"group", p.cfg.Kafka.ConsumerGroup,
		)
		if err := p.consumer.Subscribe(ctx, p.cfg.Kafka.TransferTopic, p.cfg.Kafka.ConsumerGroup, p.handler.HandleMessage); err != nil {
			select {
			case errChan <- fmt.Errorf("kafka consumer: %w", err):
			default:
			}
		}
	}()

	go func() {
		defer wg.Done()
		p.log.Info("Starting Outbox Poller",
			"interval", p.cfg.Outbox.PollingInterval.String(),
			"batch_size", p.cfg.Outbox.BatchSize,
		)
		p.poller.Start(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		p.log.Info("Shutdown signal received")
	case runErr = <-errChan:
		p.log.Error("Service error occurred", "error", runErr)
	}

	p.waitWithGrace(&wg)
	return runErr
}

// waitWithGrace waits for the worker goroutines, giving up after the
// shutdown grace period so a wedged consumer cannot hold the process.
func (p *processor) waitWithGrace(wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("All services stopped successfully")
	case <-time.After(shutdownGrace):
		p.log.Warn("Shutdown timeout reached, forcing exit")
	}
}

func (p *processor) close() {
	if wp, ok := p.processing.(*service.WorkerPoolProcessingService); ok {
		p.log.Info("Shutting down worker pool", "running_workers", wp.Running())
		wp.Shutdown()
	}

	if p.dlq != nil {
		if err := p.dlq.Close(); err != nil {
			p.log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}
	if err := p.consumer.Close(); err != nil {
		p.log.Error("Error closing Kafka consumer", "error", err)
	}

	p.postgresDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := p.mongoDB.Close(ctx); err != nil {
		p.log.Error("Error closing MongoDB connection", "error", err)
	}
}

func main() {
	cfg, err := config.LoadConfig("transfer_processor")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)
	log.Info("Starting Transfer Processor",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	proc, err := newProcessor(ctx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize transfer processor", "error", err)
		os.Exit(1)
	}

	runErr := proc.run(ctx)
	stop()
	proc.close()

	if runErr != nil {
		log.Error("Transfer Processor shutdown with errors", "error", runErr)
		os.Exit(1)
	}
	log.Info("Transfer Processor shutdown completed successfully")
}
