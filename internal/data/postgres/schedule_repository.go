package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/schedule"
	"github.com/homeplan-finance-core/internal/platform/persistence"
)

// ScheduleRepository implements the schedule.Repository interface for PostgreSQL
type ScheduleRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewScheduleRepository creates a new PostgreSQL schedule repository
func NewScheduleRepository(logger *slog.Logger, db *persistence.PostgresDB) schedule.Repository {
	return &ScheduleRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// CreateBatch inserts all entries of one generated schedule. Entries are
// written inside the caller's transaction scope when the querier is a tx.
func (r *ScheduleRepository) CreateBatch(ctx context.Context, entries []schedule.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO schedule_entries (id, account_id, sequence, due_date, principal, interest, total, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, entry := range entries {
		_, err := r.querier.Exec(ctx, query,
			entry.ID,
			entry.AccountID,
			entry.Sequence,
			entry.DueDate,
			entry.Principal.Amount().String(),
			entry.Interest.Amount().String(),
			entry.Total.Amount().String(),
			entry.Total.Currency().Code(),
			entry.Status,
		)
		if err != nil {
			r.logger.Error("Failed to create schedule entry",
				"account_id", entry.AccountID.String(),
				"sequence", entry.Sequence,
				"error", err,
			)
			return fmt.Errorf("failed to create schedule entry %d: %w", entry.Sequence, err)
		}
	}

	return nil
}

// GetByAccountID retrieves all schedule entries for an account ordered by sequence
func (r *ScheduleRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]schedule.Entry, error) {
	query := `
		SELECT id, account_id, sequence, due_date, principal, interest, total, currency, status
		FROM schedule_entries
		WHERE account_id = $1
		ORDER BY sequence ASC
	`

	rows, err := r.querier.Query(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to get schedule entries", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []schedule.Entry
	for rows.Next() {
		entry, err := scanScheduleEntry(rows)
		if err != nil {
			r.logger.Error("Failed to scan schedule entry", "error", err)
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over schedule entries: %w", err)
	}

	return entries, nil
}

// MarkPaid transitions an entry to PAID status.
// Returns ErrEntryNotFound if the entry doesn't exist.
func (r *ScheduleRepository) MarkPaid(ctx context.Context, entryID uuid.UUID) error {
	query := `
		UPDATE schedule_entries
		SET status = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, schedule.EntryStatusPaid, entryID)
	if err != nil {
		r.logger.Error("Failed to mark schedule entry paid", "id", entryID.String(), "error", err)
		return fmt.Errorf("failed to mark schedule entry paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		return schedule.ErrEntryNotFound{EntryID: entryID}
	}

	return nil
}

// DeleteByAccountID removes all entries for an account and reports how many
// were dropped. Used at maturity payout when the product closes.
func (r *ScheduleRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM schedule_entries
		WHERE account_id = $1
	`

	result, err := r.querier.Exec(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to delete schedule entries", "account_id", accountID.String(), "error", err)
		return 0, fmt.Errorf("failed to delete schedule entries: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanScheduleEntry(row pgx.Row) (schedule.Entry, error) {
	var (
		entry     schedule.Entry
		principal string
		interest  string
		total     string
		currency  string
	)
	err := row.Scan(
		&entry.ID,
		&entry.AccountID,
		&entry.Sequence,
		&entry.DueDate,
		&principal,
		&interest,
		&total,
		&currency,
		&entry.Status,
	)
	if err != nil {
		return schedule.Entry{}, err
	}

	if entry.Principal, err = money.NewFromString(principal, currency); err != nil {
		return schedule.Entry{}, fmt.Errorf("failed to parse stored principal: %w", err)
	}
	if entry.Interest, err = money.NewFromString(interest, currency); err != nil {
		return schedule.Entry{}, fmt.Errorf("failed to parse stored interest: %w", err)
	}
	if entry.Total, err = money.NewFromString(total, currency); err != nil {
		return schedule.Entry{}, fmt.Errorf("failed to parse stored total: %w", err)
	}
	return entry, nil
}
