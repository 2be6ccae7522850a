package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/homeplan-finance-core/internal/domain/origination"
	"github.com/homeplan-finance-core/internal/platform/persistence"
)

// InvitationRepository implements origination.InvitationRepository for PostgreSQL
type InvitationRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewInvitationRepository creates a new PostgreSQL invitation repository
func NewInvitationRepository(logger *slog.Logger, db *persistence.PostgresDB) origination.InvitationRepository {
	return &InvitationRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

const invitationColumns = `id, application_id, inviter_id, invitee_id, status, expires_at, created_at, updated_at`

// Create stores a new invitation
func (r *InvitationRepository) Create(ctx context.Context, inv *origination.Invitation) error {
	query := `
		INSERT INTO invitations (id, application_id, inviter_id, invitee_id, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		inv.ID,
		inv.ApplicationID,
		inv.InviterID,
		inv.InviteeID,
		inv.Status,
		inv.ExpiresAt,
		inv.CreatedAt,
		inv.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create invitation", "id", inv.ID.String(), "error", err)
		return fmt.Errorf("failed to create invitation: %w", err)
	}

	return nil
}

// GetByID retrieves an invitation by its ID
func (r *InvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*origination.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE id = $1`

	inv, err := scanInvitation(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, origination.ErrInvitationNotFound{InvitationID: id}
		}
		r.logger.Error("Failed to get invitation", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// GetByInviteeID retrieves all invitations addressed to a party, newest first
func (r *InvitationRepository) GetByInviteeID(ctx context.Context, inviteeID uuid.UUID) ([]*origination.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM invitations WHERE invitee_id = $1 ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query, inviteeID)
	if err != nil {
		r.logger.Error("Failed to get invitations by invitee", "invitee_id", inviteeID.String(), "error", err)
		return nil, fmt.Errorf("failed to get invitations by invitee: %w", err)
	}
	defer rows.Close()

	var invitations []*origination.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			r.logger.Error("Failed to scan invitation row", "error", err)
			return nil, fmt.Errorf("failed to scan invitation row: %w", err)
		}
		invitations = append(invitations, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over invitation rows: %w", err)
	}

	return invitations, nil
}

// Update persists an invitation state transition
func (r *InvitationRepository) Update(ctx context.Context, inv *origination.Invitation) error {
	query := `
		UPDATE invitations
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, inv.Status, inv.UpdatedAt, inv.ID)
	if err != nil {
		r.logger.Error("Failed to update invitation", "id", inv.ID.String(), "error", err)
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return origination.ErrInvitationNotFound{InvitationID: inv.ID}
	}

	return nil
}

func scanInvitation(row pgx.Row) (*origination.Invitation, error) {
	var inv origination.Invitation
	err := row.Scan(
		&inv.ID,
		&inv.ApplicationID,
		&inv.InviterID,
		&inv.InviteeID,
		&inv.Status,
		&inv.ExpiresAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
