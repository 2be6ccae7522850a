package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/schedule"
)

// AccountServiceImpl opens, looks up and closes accounts through the
// repositories.
type AccountServiceImpl struct {
	accountRepo  account.Repository
	scheduleRepo schedule.Repository
	logger       *slog.Logger
}

func NewAccountService(logger *slog.Logger, accountRepo account.Repository, scheduleRepo schedule.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo:  accountRepo,
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

// CreateAccount opens an account after checking the number is free. The
// unique constraint on number is the real guard, this probe just turns the
// common case into a friendlier error.
func (s *AccountServiceImpl) CreateAccount(ctx context.Context, ownerID uuid.UUID, number string, accType account.Type, openingBalance money.Money) (*account.Account, error) {
	existing, err := s.accountRepo.GetByNumber(ctx, number)
	if err != nil && !errors.Is(err, account.ErrAccountNotFound{}) {
		return nil, err
	}
	if existing != nil {
		return nil, account.ErrDuplicateNumber{Number: number}
	}

	acc, err := account.NewAccount(ownerID, number, accType, openingBalance)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	return acc, nil
}

// GetAccountByID returns the account or account.ErrAccountNotFound.
func (s *AccountServiceImpl) GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

// GetAccountsByOwner lists every account held by the owner.
func (s *AccountServiceImpl) GetAccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	return s.accountRepo.GetByOwnerID(ctx, ownerID)
}

// CloseAccount closes a paid-out account and purges any remaining schedule
// entries. The balance must already be zero; the payout itself moves money
// through the regular transfer path first.
func (s *AccountServiceImpl) CloseAccount(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !acc.Balance.IsZero() {
		return nil, account.ErrBalanceRemaining
	}
	if err := acc.Close(); err != nil {
		return nil, err
	}
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, err
	}

	purged, err := s.scheduleRepo.DeleteByAccountID(ctx, id)
	if err != nil {
		// The account is already closed; leftover entries are harmless and
		// a later closure retry removes them.
		s.logger.Warn("Failed to purge schedule entries for closed account",
			"account_id", id, "error", err)
	}

	s.logger.Info("Account closed",
		"account_id", id,
		"schedule_entries_purged", purged,
	)

	return acc, nil
}
