package components

import (
	"context"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByNumber(ctx context.Context, number string) (*account.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepo) Update(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepo) UpdateBalance(ctx context.Context, id uuid.UUID, delta string, version int) error {
	args := m.Called(ctx, id, delta, version)
	return args.Error(0)
}

func (m *MockAccountRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) WithTx(tx pgx.Tx) account.Repository {
	args := m.Called(tx)
	return args.Get(0).(account.Repository)
}

func mustAccount(t *testing.T, number, balance, currency string) *account.Account {
	t.Helper()
	bal, err := money.NewFromString(balance, currency)
	require.NoError(t, err)
	acc, err := account.NewAccount(uuid.New(), number, account.TypeDemand, bal)
	require.NoError(t, err)
	return acc
}

func TestAccountManager_LockAndTransfer(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("successful transfer debits source and credits destination", func(t *testing.T) {
		mockRepo := &MockAccountRepo{}
		manager := NewAccountManager(mockRepo, logger)

		source := mustAccount(t, "110-2345-678901", "500000", "KRW")
		dest := mustAccount(t, "110-9876-543210", "100000", "KRW")

		mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
		mockRepo.On("GetByNumber", ctx, source.Number).Return(source, nil)
		mockRepo.On("GetByNumber", ctx, dest.Number).Return(dest, nil)
		mockRepo.On("LockForUpdate", ctx, source.ID).Return(source, nil)
		mockRepo.On("LockForUpdate", ctx, dest.ID).Return(dest, nil)
		mockRepo.On("Update", ctx, mock.Anything).Return(nil).Twice()

		request := &shared.TransferRequest{
			TransferID:    uuid.New(),
			SourceNumber:  source.Number,
			DestNumber:    dest.Number,
			Amount:        "250000",
			Currency:      "KRW",
			CorrelationID: "corr-1",
		}

		result, err := manager.LockAndTransfer(ctx, nil, request)
		require.NoError(t, err)
		require.Len(t, result.Records, 2)

		assert.Equal(t, "250000", source.Balance.Amount().String())
		assert.Equal(t, "350000", dest.Balance.Amount().String())
		assert.Equal(t, 2, source.Version)
		assert.Equal(t, 2, dest.Version)

		debit, credit := result.Records[0], result.Records[1]
		assert.Equal(t, ledger.DirectionDebit, debit.Direction)
		assert.Equal(t, "-250000", debit.Amount)
		assert.Equal(t, "250000", debit.BalanceAfter)
		assert.Equal(t, ledger.DirectionCredit, credit.Direction)
		assert.Equal(t, "250000", credit.Amount)
		assert.Equal(t, "350000", credit.BalanceAfter)
		assert.Equal(t, request.TransferID, debit.TransferID)
		assert.Equal(t, request.TransferID, credit.TransferID)
		assert.Equal(t, "corr-1", debit.CorrelationID)

		mockRepo.AssertExpectations(t)
	})

	t.Run("single-sided deposit credits destination only", func(t *testing.T) {
		mockRepo := &MockAccountRepo{}
		manager := NewAccountManager(mockRepo, logger)

		dest := mustAccount(t, "110-9876-543210", "100000", "KRW")

		mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
		mockRepo.On("GetByNumber", ctx, dest.Number).Return(dest, nil)
		mockRepo.On("LockForUpdate", ctx, dest.ID).Return(dest, nil)
		mockRepo.On("Update", ctx, mock.Anything).Return(nil).Once()

		request := &shared.TransferRequest{
			TransferID: uuid.New(),
			DestNumber: dest.Number,
			Amount:     "1000000",
			Currency:   "KRW",
		}

		result, err := manager.LockAndTransfer(ctx, nil, request)
		require.NoError(t, err)
		require.Len(t, result.Records, 1)

		assert.Equal(t, "1100000", dest.Balance.Amount().String())
		assert.Equal(t, ledger.DirectionCredit, result.Records[0].Direction)
		assert.Equal(t, "1000000", result.Records[0].Amount)

		mockRepo.AssertExpectations(t)
	})

	t.Run("insufficient funds leaves both balances untouched", func(t *testing.T) {
		mockRepo := &MockAccountRepo{}
		manager := NewAccountManager(mockRepo, logger)

		source := mustAccount(t, "110-2345-678901", "100000", "KRW")
		dest := mustAccount(t, "110-9876-543210", "100000", "KRW")

		mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
		mockRepo.On("GetByNumber", ctx, source.Number).Return(source, nil)
		mockRepo.On("GetByNumber", ctx, dest.Number).Return(dest, nil)
		mockRepo.On("LockForUpdate", ctx, source.ID).Return(source, nil)
		mockRepo.On("LockForUpdate", ctx, dest.ID).Return(dest, nil)

		request := &shared.TransferRequest{
			TransferID:   uuid.New(),
			SourceNumber: source.Number,
			DestNumber:   dest.Number,
			Amount:       "250000",
			Currency:     "KRW",
		}

		result, err := manager.LockAndTransfer(ctx, nil, request)
		assert.ErrorIs(t, err, account.ErrInsufficientFunds)
		assert.Nil(t, result)
		assert.Equal(t, "100000", source.Balance.Amount().String())
		assert.Equal(t, "100000", dest.Balance.Amount().String())

		mockRepo.AssertExpectations(t)
	})

	t.Run("currency mismatch rejected before any mutation", func(t *testing.T) {
		mockRepo := &MockAccountRepo{}
		manager := NewAccountManager(mockRepo, logger)

		source := mustAccount(t, "110-2345-678901", "5000.00", "USD")
		dest := mustAccount(t, "110-9876-543210", "100000", "KRW")

		mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
		mockRepo.On("GetByNumber", ctx, source.Number).Return(source, nil)
		mockRepo.On("GetByNumber", ctx, dest.Number).Return(dest, nil)
		mockRepo.On("LockForUpdate", ctx, source.ID).Return(source, nil)
		mockRepo.On("LockForUpdate", ctx, dest.ID).Return(dest, nil)

		request := &shared.TransferRequest{
			TransferID:   uuid.New(),
			SourceNumber: source.Number,
			DestNumber:   dest.Number,
			Amount:       "250000",
			Currency:     "KRW",
		}

		result, err := manager.LockAndTransfer(ctx, nil, request)
		assert.ErrorIs(t, err, shared.ErrInvalidCurrency)
		assert.Nil(t, result)
		assert.Equal(t, "5000.00", source.Balance.Amount().StringFixed(2))

		mockRepo.AssertExpectations(t)
	})

	t.Run("destination not found", func(t *testing.T) {
		mockRepo := &MockAccountRepo{}
		manager := NewAccountManager(mockRepo, logger)

		mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
		mockRepo.On("GetByNumber", ctx, "110-0000-000000").Return(nil, account.ErrAccountNotFound{Number: "110-0000-000000"})

		request := &shared.TransferRequest{
			TransferID:   uuid.New(),
			SourceNumber: "110-2345-678901",
			DestNumber:   "110-0000-000000",
			Amount:       "250000",
			Currency:     "KRW",
		}

		result, err := manager.LockAndTransfer(ctx, nil, request)
		assert.ErrorIs(t, err, account.ErrAccountNotFound{})
		assert.Nil(t, result)

		mockRepo.AssertExpectations(t)
	})

	t.Run("closed source account cannot be debited", func(t *testing.T) {
		mockRepo := &MockAccountRepo{}
		manager := NewAccountManager(mockRepo, logger)

		source := mustAccount(t, "110-2345-678901", "500000", "KRW")
		require.NoError(t, source.Close())
		dest := mustAccount(t, "110-9876-543210", "100000", "KRW")

		mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
		mockRepo.On("GetByNumber", ctx, source.Number).Return(source, nil)
		mockRepo.On("GetByNumber", ctx, dest.Number).Return(dest, nil)
		mockRepo.On("LockForUpdate", ctx, source.ID).Return(source, nil)
		mockRepo.On("LockForUpdate", ctx, dest.ID).Return(dest, nil)

		request := &shared.TransferRequest{
			TransferID:   uuid.New(),
			SourceNumber: source.Number,
			DestNumber:   dest.Number,
			Amount:       "250000",
			Currency:     "KRW",
		}

		result, err := manager.LockAndTransfer(ctx, nil, request)
		assert.ErrorIs(t, err, account.ErrAccountClosed)
		assert.Nil(t, result)

		mockRepo.AssertExpectations(t)
	})
}
