package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/domain/origination"
	"github.com/homeplan-finance-core/internal/platform/persistence"
)

// ParticipantRepository implements origination.ParticipantRepository for PostgreSQL
type ParticipantRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewParticipantRepository creates a new PostgreSQL participant repository
func NewParticipantRepository(logger *slog.Logger, db *persistence.PostgresDB) origination.ParticipantRepository {
	return &ParticipantRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// CreateBatch inserts all holders of one account. Shares are validated
// before persisting so the splits in storage always sum to 100.
func (r *ParticipantRepository) CreateBatch(ctx context.Context, participants []*origination.Participant) error {
	if err := origination.ValidateShares(participants); err != nil {
		return err
	}

	query := `
		INSERT INTO participants (id, account_id, user_id, share_pct, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, p := range participants {
		_, err := r.querier.Exec(ctx, query,
			p.ID,
			p.AccountID,
			p.UserID,
			p.SharePct,
			p.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create participant",
				"account_id", p.AccountID.String(),
				"user_id", p.UserID.String(),
				"error", err,
			)
			return fmt.Errorf("failed to create participant: %w", err)
		}
	}

	return nil
}

// GetByAccountID retrieves all holders of an account
func (r *ParticipantRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*origination.Participant, error) {
	query := `
		SELECT id, account_id, user_id, share_pct, created_at
		FROM participants
		WHERE account_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to get participants", "account_id", accountID.String(), "error", err)
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	var participants []*origination.Participant
	for rows.Next() {
		var p origination.Participant
		err := rows.Scan(&p.ID, &p.AccountID, &p.UserID, &p.SharePct, &p.CreatedAt)
		if err != nil {
			r.logger.Error("Failed to scan participant row", "error", err)
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over participant rows: %w", err)
	}

	return participants, nil
}
