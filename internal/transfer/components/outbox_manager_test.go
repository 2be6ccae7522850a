package components

import (
	"context"
	"errors"
	"testing"

	"log/slog"

	"github.com/google/uuid"
	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/outbox"
	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/homeplan-finance-core/internal/transfer/service"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetByTransferID(ctx context.Context, transferID uuid.UUID) (*outbox.Message, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

func settledResult(t *testing.T, transferID uuid.UUID) *service.TransferResult {
	t.Helper()
	amount, err := money.NewFromString("250000", "KRW")
	require.NoError(t, err)
	sourceBal, err := money.NewFromString("250000", "KRW")
	require.NoError(t, err)
	destBal, err := money.NewFromString("350000", "KRW")
	require.NoError(t, err)

	debit := ledger.NewRecord(transferID, uuid.New(), ledger.DirectionDebit, amount, sourceBal, "")
	credit := ledger.NewRecord(transferID, uuid.New(), ledger.DirectionCredit, amount, destBal, "")
	return &service.TransferResult{Records: []*ledger.Record{debit, credit}}
}

func TestOutboxManager_CreateOutboxEntry(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()

	t.Run("stages both ledger records in one message", func(t *testing.T) {
		mockRepo := &MockOutboxRepo{}
		manager := NewOutboxManager(mockRepo, logger)

		transferID := uuid.New()
		result := settledResult(t, transferID)

		mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
		mockRepo.On("Create", ctx, mock.MatchedBy(func(msg *outbox.Message) bool {
			records, err := msg.GetLedgerRecords()
			return err == nil && len(records) == 2 && msg.TransferID == transferID &&
				msg.Status == shared.OutboxStatusPending
		})).Return(nil).Once()

		request := &shared.TransferRequest{TransferID: transferID}
		err := manager.CreateOutboxEntry(ctx, nil, request, result)
		assert.NoError(t, err)

		mockRepo.AssertExpectations(t)
	})

	t.Run("empty result fails before touching the repository", func(t *testing.T) {
		mockRepo := &MockOutboxRepo{}
		manager := NewOutboxManager(mockRepo, logger)

		mockRepo.On("WithTx", mock.Anything).Return(mockRepo)

		request := &shared.TransferRequest{TransferID: uuid.New()}
		err := manager.CreateOutboxEntry(ctx, nil, request, &service.TransferResult{})
		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("repository failure propagates", func(t *testing.T) {
		mockRepo := &MockOutboxRepo{}
		manager := NewOutboxManager(mockRepo, logger)

		transferID := uuid.New()
		result := settledResult(t, transferID)

		mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
		mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("connection reset")).Once()

		request := &shared.TransferRequest{TransferID: transferID}
		err := manager.CreateOutboxEntry(ctx, nil, request, result)
		assert.Error(t, err)

		mockRepo.AssertExpectations(t)
	})
}
