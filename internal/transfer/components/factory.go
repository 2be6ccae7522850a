package components

import (
	"log/slog"

	"github.com/homeplan-finance-core/internal/config"
	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/outbox"
	"github.com/homeplan-finance-core/internal/platform/messaging/producers"
	"github.com/homeplan-finance-core/internal/platform/persistence"
	"github.com/homeplan-finance-core/internal/transfer/service"
)

// CreateProcessingService assembles the settlement pipeline: validator,
// account manager, outbox manager and failure recorder behind the base
// service, wrapped in a worker pool sized from config. If the pool cannot
// be created the unwrapped service is returned so processing still works,
// just without a concurrency cap.
func CreateProcessingService(
	pgDB *persistence.PostgresDB,
	accountRepo account.Repository,
	outboxRepo outbox.Repository,
	ledgerRepo ledger.Repository,
	dlqProducer producers.DeadLetterPublisher,
	logger *slog.Logger,
	cfg *config.Config,
) service.ProcessingService {
	base := service.NewProcessingService(
		pgDB,
		NewTransferValidator(ledgerRepo, logger),
		NewAccountManager(accountRepo, logger),
		NewOutboxManager(outboxRepo, logger),
		NewFailureRecorder(dlqProducer, logger),
		logger,
	)

	pooled, err := service.NewWorkerPoolProcessingService(
		base,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool service, falling back to base service", "error", err)
		return base
	}

	logger.Info("Created worker pool processing service", "pool_size", cfg.WorkerPool.Size)
	return pooled
}
