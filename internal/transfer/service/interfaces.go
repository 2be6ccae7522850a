// Package service settles transfer requests pulled off the queue: balance
// movement in Postgres with the resulting ledger records staged for Mongo
// through the outbox.
package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/shared"
)

// ProcessingService settles one transfer request per call.
type ProcessingService interface {
	ProcessTransfer(ctx context.Context, request *shared.TransferRequest) error
}

// TransferValidator runs the pre-flight checks. Validate rejects requests
// that can never succeed; CheckIdempotency reports true when the transfer
// has already settled and must not run again.
type TransferValidator interface {
	Validate(ctx context.Context, request *shared.TransferRequest) error
	CheckIdempotency(ctx context.Context, request *shared.TransferRequest) (bool, error)
}

// TransferResult carries the ledger records produced by a settled transfer:
// one debit and one credit, or a single credit for single-sided deposits.
type TransferResult struct {
	Records []*ledger.Record
}

// AccountManager locks both accounts in a stable order and moves the
// balance inside tx.
type AccountManager interface {
	LockAndTransfer(ctx context.Context, tx pgx.Tx, request *shared.TransferRequest) (*TransferResult, error)
}

// OutboxManager stages the settled transfer's ledger records inside the
// same transaction that moved the balances.
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, request *shared.TransferRequest, result *TransferResult) error
}

// FailureRecorder persists terminal rejections so clients can query why a
// transfer never settled.
type FailureRecorder interface {
	RecordFailure(ctx context.Context, request *shared.TransferRequest, failureReason string) error
}
