package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/money"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func testAccount(t *testing.T) *account.Account {
	t.Helper()
	balance, err := money.NewFromString("1000000", "KRW")
	require.NoError(t, err)
	now := time.Now()
	return &account.Account{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Number:    "110-2345-678901",
		Type:      account.TypeSavings,
		Balance:   balance,
		Status:    account.StatusActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

const selectAccountPattern = `SELECT id, owner_id, number, type, balance, currency, status, version, created_at, updated_at FROM accounts WHERE id = \$1`

func accountRows(acc *account.Account) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "owner_id", "number", "type", "balance", "currency", "status", "version", "created_at", "updated_at"}).
		AddRow(acc.ID, acc.OwnerID, acc.Number, acc.Type, acc.Balance.Amount().String(), acc.Balance.Currency().Code(), acc.Status, acc.Version, acc.CreatedAt, acc.UpdatedAt)
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	acc := testAccount(t)

	query := `
		INSERT INTO accounts \(id, owner_id, number, type, balance, currency, status, version, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9, \$10\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(acc.ID, acc.OwnerID, acc.Number, acc.Type, acc.Balance.Amount().String(), "KRW", acc.Status, acc.Version, acc.CreatedAt, acc.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, acc)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(acc.ID, acc.OwnerID, acc.Number, acc.Type, acc.Balance.Amount().String(), "KRW", acc.Status, acc.Version, acc.CreatedAt, acc.UpdatedAt).
			WillReturnError(expectedErr)

		err := repo.Create(ctx, acc)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create account")
		assert.ErrorIs(t, err, expectedErr) // Check underlying error if wrapped
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	expectedAccount := testAccount(t)
	accID := expectedAccount.ID

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(selectAccountPattern).WithArgs(accID).WillReturnRows(accountRows(expectedAccount))

		acc, err := repo.GetByID(ctx, accID)
		assert.NoError(t, err)
		require.NotNil(t, acc)
		assert.Equal(t, expectedAccount.ID, acc.ID)
		assert.Equal(t, expectedAccount.Number, acc.Number)
		assert.True(t, expectedAccount.Balance.Equal(acc.Balance))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(selectAccountPattern).WithArgs(accID).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByID(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		var accNotFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &accNotFoundErr)
		assert.Equal(t, accID, accNotFoundErr.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(selectAccountPattern).WithArgs(accID).WillReturnError(dbErr)

		acc, err := repo.GetByID(ctx, accID)
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.Contains(t, err.Error(), "failed to get account")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByNumber(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	expectedAccount := testAccount(t)

	query := `SELECT id, owner_id, number, type, balance, currency, status, version, created_at, updated_at FROM accounts WHERE number = \$1`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expectedAccount.Number).WillReturnRows(accountRows(expectedAccount))

		acc, err := repo.GetByNumber(ctx, expectedAccount.Number)
		assert.NoError(t, err)
		require.NotNil(t, acc)
		assert.Equal(t, expectedAccount.ID, acc.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs("999-0000-000000").WillReturnError(pgx.ErrNoRows)

		acc, err := repo.GetByNumber(ctx, "999-0000-000000")
		assert.Error(t, err)
		assert.Nil(t, acc)
		var accNotFoundErr account.ErrAccountNotFound
		assert.ErrorAs(t, err, &accNotFoundErr)
		assert.Equal(t, "999-0000-000000", accNotFoundErr.Number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_UpdateBalance(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	accID := uuid.New()

	query := `
		UPDATE accounts
		SET balance = balance \+ \$1::numeric, version = version \+ 1, updated_at = NOW\(\)
		WHERE id = \$2 AND version = \$3
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs("-250000", accID, 3).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.UpdateBalance(ctx, accID, "-250000", 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("concurrent modification", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs("250000", accID, 3).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0)) // 0 rows affected

		err := repo.UpdateBalance(ctx, accID, "250000", 3)
		assert.Error(t, err)
		var concurrentErr account.ErrConcurrentModification
		assert.ErrorAs(t, err, &concurrentErr)
		assert.Equal(t, accID, concurrentErr.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: logger}
	expectedAccount := testAccount(t)

	query := `SELECT id, owner_id, number, type, balance, currency, status, version, created_at, updated_at FROM accounts WHERE id = \$1 FOR UPDATE`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(expectedAccount.ID).WillReturnRows(accountRows(expectedAccount))

		acc, err := repo.LockForUpdate(ctx, expectedAccount.ID)
		assert.NoError(t, err)
		require.NotNil(t, acc)
		assert.True(t, expectedAccount.Balance.Equal(acc.Balance))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		missing := uuid.New()
		mock.ExpectQuery(query).WithArgs(missing).WillReturnError(pgx.ErrNoRows)

		acc, err := repo.LockForUpdate(ctx, missing)
		assert.Error(t, err)
		assert.Nil(t, acc)
		assert.ErrorIs(t, err, account.ErrAccountNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
