package service

import (
	"context"
	"log/slog"

	"github.com/panjf2000/ants/v2"

	"github.com/homeplan-finance-core/internal/domain/shared"
)

// WorkerPoolConfig sizes the processing pool.
type WorkerPoolConfig struct {
	Size int
}

// WorkerPoolProcessingService caps how many transfers settle concurrently
// by running the wrapped service on a fixed-size ants pool. The call stays
// synchronous so the consumer's offset commit still reflects the outcome.
type WorkerPoolProcessingService struct {
	base   ProcessingService
	pool   *ants.Pool
	logger *slog.Logger
}

func NewWorkerPoolProcessingService(
	base ProcessingService,
	cfg WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolProcessingService, error) {
	pool, err := ants.NewPool(cfg.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolProcessingService{
		base:   base,
		pool:   pool,
		logger: logger,
	}, nil
}

// ProcessTransfer runs the transfer on a pool worker and waits for its
// result. Submission blocks while every worker is busy, which is the
// backpressure that keeps a burst of requests from overwhelming Postgres.
func (s *WorkerPoolProcessingService) ProcessTransfer(ctx context.Context, request *shared.TransferRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}
	logger.Info("Submitting transfer to worker pool",
		"transfer_id", request.TransferID.String(),
		"dest", request.DestNumber,
	)

	// The worker outlives this stack frame, so hand it its own copy.
	requestCopy := *request
	done := make(chan error, 1)

	if err := s.pool.Submit(func() {
		done <- s.base.ProcessTransfer(ctx, &requestCopy)
	}); err != nil {
		logger.Error("Failed to submit transfer to worker pool",
			"transfer_id", request.TransferID.String(),
			"error", err,
		)
		return err
	}

	return <-done
}

// Shutdown releases the pool. In-flight workers finish their current task.
func (s *WorkerPoolProcessingService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running reports how many workers are currently busy.
func (s *WorkerPoolProcessingService) Running() int {
	return s.pool.Running()
}

// Capacity reports the pool size.
func (s *WorkerPoolProcessingService) Capacity() int {
	return s.pool.Cap()
}
