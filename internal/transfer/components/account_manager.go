package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/homeplan-finance-core/internal/transfer/service"
)

// AccountManagerImpl implements the AccountManager interface
type AccountManagerImpl struct {
	accountRepo account.Repository
	logger      *slog.Logger
}

// NewAccountManager creates a new AccountManagerImpl
func NewAccountManager(accountRepo account.Repository, logger *slog.Logger) service.AccountManager {
	return &AccountManagerImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// LockAndTransfer resolves both accounts, locks them, applies the debit and
// credit, and persists the new balances. Locks are taken in account-ID order
// so two opposing transfers cannot deadlock each other.
func (m *AccountManagerImpl) LockAndTransfer(ctx context.Context, tx pgx.Tx, request *shared.TransferRequest) (*service.TransferResult, error) {
	logger := m.logger
	if request.CorrelationID != "" {
		logger = m.logger.With("correlation_id", request.CorrelationID)
	}

	accountRepoTx := m.accountRepo.WithTx(tx)

	amount, err := money.NewFromString(request.Amount, request.Currency)
	if err != nil {
		return nil, shared.ErrInvalidCurrency
	}

	dest, err := accountRepoTx.GetByNumber(ctx, request.DestNumber)
	if err != nil {
		logger.Warn("Destination account not found", "req_id", request.TransferID.String(), "number", request.DestNumber)
		return nil, err
	}

	if request.SingleSided() {
		return m.creditOnly(ctx, accountRepoTx, logger, request, dest, amount)
	}

	source, err := accountRepoTx.GetByNumber(ctx, request.SourceNumber)
	if err != nil {
		logger.Warn("Source account not found", "req_id", request.TransferID.String(), "number", request.SourceNumber)
		return nil, err
	}

	// Lock in account-ID order regardless of transfer direction
	first, second := source, dest
	if dest.ID.String() < source.ID.String() {
		first, second = dest, source
	}
	if first, err = accountRepoTx.LockForUpdate(ctx, first.ID); err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", first.ID.String(), err)
	}
	if second, err = accountRepoTx.LockForUpdate(ctx, second.ID); err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", second.ID.String(), err)
	}
	if source.ID == first.ID {
		source, dest = first, second
	} else {
		source, dest = second, first
	}
	logger.Info("Accounts locked", "req_id", request.TransferID.String(),
		"source", source.ID.String(), "dest", dest.ID.String(),
		"source_bal", source.Balance.String(), "dest_bal", dest.Balance.String(),
	)

	if err := m.checkCurrency(logger, request, source, amount); err != nil {
		return nil, err
	}
	if err := m.checkCurrency(logger, request, dest, amount); err != nil {
		return nil, err
	}

	if err := source.Debit(amount); err != nil {
		logger.Warn("Failed to debit source account", "req_id", request.TransferID.String(), "error", err, "balance", source.Balance.String())
		return nil, err
	}
	if err := dest.Credit(amount); err != nil {
		logger.Error("Failed to credit destination account", "req_id", request.TransferID.String(), "error", err)
		return nil, err
	}

	if err := accountRepoTx.Update(ctx, source); err != nil {
		return nil, m.updateFailed(logger, request, source, err)
	}
	if err := accountRepoTx.Update(ctx, dest); err != nil {
		return nil, m.updateFailed(logger, request, dest, err)
	}
	logger.Info("Balances updated in DB", "req_id", request.TransferID.String(),
		"source_bal", source.Balance.String(), "dest_bal", dest.Balance.String(),
	)

	debit := ledger.NewRecord(request.TransferID, source.ID, ledger.DirectionDebit, amount, source.Balance, request.Memo)
	credit := ledger.NewRecord(request.TransferID, dest.ID, ledger.DirectionCredit, amount, dest.Balance, request.Memo)
	for _, record := range []*ledger.Record{debit, credit} {
		record.IdempotencyKey = request.IdempotencyKey
		record.CorrelationID = request.CorrelationID
	}

	return &service.TransferResult{Records: []*ledger.Record{debit, credit}}, nil
}

// creditOnly settles a single-sided deposit: funds arrive on the destination
// with no counter-account to debit.
func (m *AccountManagerImpl) creditOnly(ctx context.Context, repo account.Repository, logger *slog.Logger, request *shared.TransferRequest, dest *account.Account, amount money.Money) (*service.TransferResult, error) {
	locked, err := repo.LockForUpdate(ctx, dest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", dest.ID.String(), err)
	}

	if err := m.checkCurrency(logger, request, locked, amount); err != nil {
		return nil, err
	}

	if err := locked.Credit(amount); err != nil {
		logger.Error("Failed to credit destination account", "req_id", request.TransferID.String(), "error", err)
		return nil, err
	}

	if err := repo.Update(ctx, locked); err != nil {
		return nil, m.updateFailed(logger, request, locked, err)
	}
	logger.Info("Single-sided deposit applied", "req_id", request.TransferID.String(), "dest_bal", locked.Balance.String())

	credit := ledger.NewRecord(request.TransferID, locked.ID, ledger.DirectionCredit, amount, locked.Balance, request.Memo)
	credit.IdempotencyKey = request.IdempotencyKey
	credit.CorrelationID = request.CorrelationID

	return &service.TransferResult{Records: []*ledger.Record{credit}}, nil
}

func (m *AccountManagerImpl) checkCurrency(logger *slog.Logger, request *shared.TransferRequest, acc *account.Account, amount money.Money) error {
	if acc.Balance.Currency().Code() != amount.Currency().Code() {
		logger.Error("Currency mismatch", "req_id", request.TransferID.String(),
			"req_curr", amount.Currency().Code(), "acc_curr", acc.Balance.Currency().Code(),
		)
		return shared.ErrInvalidCurrency
	}
	return nil
}

func (m *AccountManagerImpl) updateFailed(logger *slog.Logger, request *shared.TransferRequest, acc *account.Account, err error) error {
	if errors.Is(err, account.ErrConcurrentModification{AccountID: acc.ID}) {
		logger.Warn("Concurrent modification on account update", "req_id", request.TransferID.String(), "acc_id", acc.ID.String())
	} else {
		logger.Error("Failed to update account in DB", "req_id", request.TransferID.String(), "acc_id", acc.ID.String(), "error", err)
	}
	return err
}
