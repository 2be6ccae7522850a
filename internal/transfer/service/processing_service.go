package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/homeplan-finance-core/internal/platform/persistence"
)

// txBeginner is the one method of pgxpool.Pool the service needs, kept as
// an interface so settlement can be tested without a live pool.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProcessingServiceImpl settles one transfer per call: validate, lock the
// accounts, move the balances and stage the ledger records, all inside a
// single Postgres transaction.
type ProcessingServiceImpl struct {
	db              txBeginner
	validator       TransferValidator
	accountManager  AccountManager
	outboxManager   OutboxManager
	failureRecorder FailureRecorder
	logger          *slog.Logger
}

func NewProcessingService(
	pgDB *persistence.PostgresDB,
	validator TransferValidator,
	accountManager AccountManager,
	outboxManager OutboxManager,
	failureRecorder FailureRecorder,
	logger *slog.Logger,
) ProcessingService {
	return &ProcessingServiceImpl{
		db:              pgDB.Pool(),
		validator:       validator,
		accountManager:  accountManager,
		outboxManager:   outboxManager,
		failureRecorder: failureRecorder,
		logger:          logger,
	}
}

// businessFailureReason maps a domain rejection to the reason string stored
// with the failed transfer. The second return is false for infrastructure
// errors, which must propagate so the message is retried.
func businessFailureReason(err error, request *shared.TransferRequest) (string, bool) {
	switch {
	case errors.Is(err, account.ErrAccountNotFound{}):
		return string(shared.FailureReasonAccountNotFound), true
	case errors.Is(err, account.ErrAccountClosed):
		return string(shared.FailureReasonAccountClosed), true
	case errors.Is(err, shared.ErrInvalidCurrency):
		return fmt.Sprintf(string(shared.FailureReasonCurrencyMismatchFormat), request.Currency, "account_currency"), true
	case errors.Is(err, account.ErrInvalidAmount):
		return string(shared.FailureReasonInvalidAmount), true
	case errors.Is(err, account.ErrInsufficientFunds):
		return string(shared.FailureReasonInsufficientFunds), true
	}
	return "", false
}

// validationFailureReason maps a pre-flight validation error to its stored
// reason. Validation errors are always business rejections.
func validationFailureReason(err error, request *shared.TransferRequest) string {
	switch {
	case errors.Is(err, shared.ErrSameAccount):
		return string(shared.FailureReasonSameAccount)
	case errors.Is(err, shared.ErrInvalidCurrency):
		return fmt.Sprintf(string(shared.FailureReasonCurrencyMismatchFormat), request.Currency, "unknown")
	default:
		return string(shared.FailureReasonInvalidAmount)
	}
}

// recordFailure writes the rejection for later queries. A failure of the
// recorder itself is logged but not returned, the transfer is already a
// terminal reject either way.
func (s *ProcessingServiceImpl) recordFailure(ctx context.Context, logger *slog.Logger, request *shared.TransferRequest, reason string) {
	if err := s.failureRecorder.RecordFailure(ctx, request, reason); err != nil {
		logger.Error("Failed to record transfer failure",
			"transfer_id", request.TransferID.String(),
			"reason", reason,
			"error", err,
		)
	}
}

// ProcessTransfer settles a transfer. Business rejections are recorded and
// acknowledged with a nil return; infrastructure errors propagate so the
// consumer leaves the message uncommitted for retry.
func (s *ProcessingServiceImpl) ProcessTransfer(ctx context.Context, request *shared.TransferRequest) error {
	logger := s.logger
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	logger.Info("Processing transfer", "transfer_id", request.TransferID.String(), "dest", request.DestNumber)

	if err := s.validator.Validate(ctx, request); err != nil {
		logger.Error("Transfer validation failed", "transfer_id", request.TransferID.String(), "error", err)
		s.recordFailure(ctx, logger, request, validationFailureReason(err, request))
		return nil
	}

	settled, err := s.validator.CheckIdempotency(ctx, request)
	if err != nil {
		return err
	}
	if settled {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin database transaction", "transfer_id", request.TransferID.String(), "error", err)
		return fmt.Errorf("failed to begin DB transaction for %s: %w", request.TransferID.String(), err)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered, rolling back transaction", "panic", p, "transfer_id", request.TransferID.String())
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Error("Failed to rollback transaction after error",
					"rollback_error", rbErr, "original_error", err, "transfer_id", request.TransferID.String())
			}
		}
	}()

	result, err := s.accountManager.LockAndTransfer(ctx, tx, request)
	if err != nil {
		if reason, rejected := businessFailureReason(err, request); rejected {
			// err stays set so the defer rolls back and releases the locks.
			logger.Warn("Transfer rejected", "transfer_id", request.TransferID.String(), "reason", reason)
			s.recordFailure(ctx, logger, request, reason)
			return nil
		}
		return err
	}

	if err = s.outboxManager.CreateOutboxEntry(ctx, tx, request, result); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit database transaction",
			"req_id", request.TransferID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to commit DB transaction for transfer %s: %w", request.TransferID.String(), err)
	}

	logger.Info("Database transaction committed successfully", "req_id", request.TransferID.String())
	return nil
}
