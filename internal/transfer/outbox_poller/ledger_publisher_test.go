package outbox_poller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/outbox"
	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOutboxRepo for testing
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

// MockLedgerRepo for testing
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) CreateMany(ctx context.Context, records []*ledger.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockLedgerRepo) GetByTransferID(ctx context.Context, transferID uuid.UUID) ([]*ledger.Record, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Record), args.Error(1)
}

func (m *MockLedgerRepo) GetByIdempotencyKey(ctx context.Context, idempotencyKey string) (*ledger.Record, error) {
	args := m.Called(ctx, idempotencyKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Record), args.Error(1)
}

func (m *MockLedgerRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Record, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Record), args.Error(1)
}

func (m *MockLedgerRepo) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func settledMessage(t *testing.T, id int64, transferID uuid.UUID) *outbox.Message {
	t.Helper()
	amount, err := money.NewFromString("250000", "KRW")
	require.NoError(t, err)
	sourceBal, err := money.NewFromString("250000", "KRW")
	require.NoError(t, err)
	destBal, err := money.NewFromString("350000", "KRW")
	require.NoError(t, err)

	records := []*ledger.Record{
		ledger.NewRecord(transferID, uuid.New(), ledger.DirectionDebit, amount, sourceBal, ""),
		ledger.NewRecord(transferID, uuid.New(), ledger.DirectionCredit, amount, destBal, ""),
	}
	payload, err := json.Marshal(records)
	require.NoError(t, err)

	return &outbox.Message{
		ID:         id,
		TransferID: transferID,
		Status:     shared.OutboxStatusPending,
		Payload:    payload,
		Attempts:   0,
		CreatedAt:  time.Now(),
	}
}

func newPublisher() (LedgerPublisher, *MockLedgerRepo, *MockOutboxRepo) {
	ledgerRepo := &MockLedgerRepo{}
	outboxRepo := &MockOutboxRepo{}
	return NewLedgerPublisher(ledgerRepo, outboxRepo, slog.Default()), ledgerRepo, outboxRepo
}

func TestLedgerPublisher_PublishToLedger(t *testing.T) {
	ctx := context.Background()
	transferID := uuid.New()
	message := settledMessage(t, 1, transferID)

	t.Run("writes both records and marks the message processed", func(t *testing.T) {
		publisher, ledgerRepo, outboxRepo := newPublisher()

		ledgerRepo.On("CreateMany", mock.Anything, mock.MatchedBy(func(records []*ledger.Record) bool {
			return len(records) == 2 && records[0].TransferID == transferID
		})).Return(nil).Once()
		outboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(nil).Once()

		assert.NoError(t, publisher.PublishToLedger(ctx, message))
		ledgerRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("treats duplicate records as already published", func(t *testing.T) {
		publisher, ledgerRepo, outboxRepo := newPublisher()

		ledgerRepo.On("CreateMany", mock.Anything, mock.Anything).Return(ledger.ErrDuplicateRecord{TransferID: transferID}).Once()
		outboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(nil).Once()

		assert.NoError(t, publisher.PublishToLedger(ctx, message))
		ledgerRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("rejects a payload that does not decode", func(t *testing.T) {
		publisher, ledgerRepo, outboxRepo := newPublisher()

		corrupt := &outbox.Message{
			ID:         1,
			TransferID: transferID,
			Status:     shared.OutboxStatusPending,
			Payload:    []byte("invalid json"),
			CreatedAt:  time.Now(),
		}

		err := publisher.PublishToLedger(ctx, corrupt)
		assert.ErrorContains(t, err, "failed to decode ledger records")
		ledgerRepo.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything)
		outboxRepo.AssertExpectations(t)
	})

	t.Run("propagates a ledger write failure", func(t *testing.T) {
		publisher, ledgerRepo, outboxRepo := newPublisher()

		ledgerRepo.On("CreateMany", mock.Anything, mock.Anything).Return(errors.New("db error")).Once()

		err := publisher.PublishToLedger(ctx, message)
		assert.ErrorContains(t, err, "failed to create ledger records")
		ledgerRepo.AssertExpectations(t)
		outboxRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates a status update failure", func(t *testing.T) {
		publisher, ledgerRepo, outboxRepo := newPublisher()

		ledgerRepo.On("CreateMany", mock.Anything, mock.Anything).Return(nil).Once()
		outboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(errors.New("db error")).Once()

		err := publisher.PublishToLedger(ctx, message)
		assert.ErrorContains(t, err, "failed to mark outbox")
		ledgerRepo.AssertExpectations(t)
		outboxRepo.AssertExpectations(t)
	})
}
