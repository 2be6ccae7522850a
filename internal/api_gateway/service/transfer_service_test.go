package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/shared"
)

// MockLedgerRepo is a mock implementation of ledger.Repository
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

// MockMessagePublisher is a mock implementation of producers.MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func settledPair(t *testing.T, transferID uuid.UUID, idempotencyKey string) []*ledger.Record {
	t.Helper()
	amount, err := money.NewFromString("250000", "KRW")
	require.NoError(t, err)

	debit := ledger.NewRecord(transferID, uuid.New(), ledger.DirectionDebit, amount, money.NewFromInt(750000, money.KRW), "")
	credit := ledger.NewRecord(transferID, uuid.New(), ledger.DirectionCredit, amount, money.NewFromInt(350000, money.KRW), "")
	debit.IdempotencyKey = idempotencyKey
	credit.IdempotencyKey = idempotencyKey
	return []*ledger.Record{debit, credit}
}

func newTransferRequest(idempotencyKey string) *shared.TransferRequest {
	return &shared.TransferRequest{
		TransferID:     uuid.New(),
		SourceNumber:   "110-0000-0001",
		DestNumber:     "110-0000-0002",
		Amount:         "250000",
		Currency:       "KRW",
		IdempotencyKey: idempotencyKey,
		CorrelationID:  "corr-1",
		Timestamp:      time.Now(),
	}
}

func TestTransferService_SubmitTransfer(t *testing.T) {
	logger := slog.Default()

	t.Run("publishes new transfer", func(t *testing.T) {
		request := newTransferRequest("key-1")

		mockLedger := new(MockLedgerRepo)
		mockLedger.On("GetByIdempotencyKey", mock.Anything, "key-1").Return(nil, nil)

		mockProducer := new(MockMessagePublisher)
		mockProducer.On("Publish", mock.Anything, request.TransferID.String(), request).Return(nil)

		svc := NewTransferService(logger, mockLedger, mockProducer)
		transferID, records, err := svc.SubmitTransfer(context.Background(), request)

		require.NoError(t, err)
		assert.Equal(t, request.TransferID.String(), transferID)
		assert.Nil(t, records)
		mockProducer.AssertExpectations(t)
	})

	t.Run("returns settled records for reused idempotency key", func(t *testing.T) {
		request := newTransferRequest("key-2")
		settledID := uuid.New()
		records := settledPair(t, settledID, "key-2")

		mockLedger := new(MockLedgerRepo)
		mockLedger.On("GetByIdempotencyKey", mock.Anything, "key-2").Return(records[0], nil)
		mockLedger.On("GetByTransferID", mock.Anything, settledID).Return(records, nil)

		mockProducer := new(MockMessagePublisher)

		svc := NewTransferService(logger, mockLedger, mockProducer)
		transferID, got, err := svc.SubmitTransfer(context.Background(), request)

		require.NoError(t, err)
		assert.Equal(t, settledID.String(), transferID)
		assert.Len(t, got, 2)
		mockProducer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("skips idempotency check without a key", func(t *testing.T) {
		request := newTransferRequest("")

		mockLedger := new(MockLedgerRepo)
		mockProducer := new(MockMessagePublisher)
		mockProducer.On("Publish", mock.Anything, request.TransferID.String(), request).Return(nil)

		svc := NewTransferService(logger, mockLedger, mockProducer)
		_, _, err := svc.SubmitTransfer(context.Background(), request)

		require.NoError(t, err)
		mockLedger.AssertNotCalled(t, "GetByIdempotencyKey", mock.Anything, mock.Anything)
	})

	t.Run("propagates idempotency lookup failure", func(t *testing.T) {
		request := newTransferRequest("key-3")

		mockLedger := new(MockLedgerRepo)
		mockLedger.On("GetByIdempotencyKey", mock.Anything, "key-3").Return(nil, assert.AnError)

		mockProducer := new(MockMessagePublisher)

		svc := NewTransferService(logger, mockLedger, mockProducer)
		_, _, err := svc.SubmitTransfer(context.Background(), request)

		assert.ErrorIs(t, err, assert.AnError)
		mockProducer.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates publish failure", func(t *testing.T) {
		request := newTransferRequest("")

		mockLedger := new(MockLedgerRepo)
		mockProducer := new(MockMessagePublisher)
		mockProducer.On("Publish", mock.Anything, request.TransferID.String(), request).Return(assert.AnError)

		svc := NewTransferService(logger, mockLedger, mockProducer)
		_, _, err := svc.SubmitTransfer(context.Background(), request)

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestTransferService_GetTransferByID(t *testing.T) {
	logger := slog.Default()

	t.Run("returns settled record pair", func(t *testing.T) {
		transferID := uuid.New()
		records := settledPair(t, transferID, "")

		mockLedger := new(MockLedgerRepo)
		mockLedger.On("GetByTransferID", mock.Anything, transferID).Return(records, nil)

		svc := NewTransferService(logger, mockLedger, new(MockMessagePublisher))
		got, err := svc.GetTransferByID(context.Background(), transferID)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unsettled transfer returns nil without error", func(t *testing.T) {
		transferID := uuid.New()

		mockLedger := new(MockLedgerRepo)
		mockLedger.On("GetByTransferID", mock.Anything, transferID).
			Return(nil, ledger.ErrRecordNotFound{TransferID: transferID})

		svc := NewTransferService(logger, mockLedger, new(MockMessagePublisher))
		got, err := svc.GetTransferByID(context.Background(), transferID)

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("propagates lookup failure", func(t *testing.T) {
		transferID := uuid.New()

		mockLedger := new(MockLedgerRepo)
		mockLedger.On("GetByTransferID", mock.Anything, transferID).Return(nil, assert.AnError)

		svc := NewTransferService(logger, mockLedger, new(MockMessagePublisher))
		_, err := svc.GetTransferByID(context.Background(), transferID)

		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestTransferService_GetHistoryByAccountID(t *testing.T) {
	logger := slog.Default()
	accountID := uuid.New()
	records := settledPair(t, uuid.New(), "")

	t.Run("maps page to limit and offset", func(t *testing.T) {
		mockLedger := new(MockLedgerRepo)
		mockLedger.On("GetByAccountID", mock.Anything, accountID, 10, 20).Return(records, nil)
		mockLedger.On("CountByAccountID", mock.Anything, accountID).Return(int64(42), nil)

		svc := NewTransferService(logger, mockLedger, new(MockMessagePublisher))
		got, total, err := svc.GetHistoryByAccountID(context.Background(), accountID, 3, 10)

		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, int64(42), total)
		mockLedger.AssertExpectations(t)
	})

	t.Run("propagates count failure", func(t *testing.T) {
		mockLedger := new(MockLedgerRepo)
		mockLedger.On("GetByAccountID", mock.Anything, accountID, 10, 0).Return(records, nil)
		mockLedger.On("CountByAccountID", mock.Anything, accountID).Return(int64(0), assert.AnError)

		svc := NewTransferService(logger, mockLedger, new(MockMessagePublisher))
		_, _, err := svc.GetHistoryByAccountID(context.Background(), accountID, 1, 10)

		assert.ErrorIs(t, err, assert.AnError)
	})
}
