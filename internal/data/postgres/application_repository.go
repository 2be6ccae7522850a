package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/origination"
	"github.com/homeplan-finance-core/internal/platform/persistence"
)

// ApplicationRepository implements origination.ApplicationRepository for PostgreSQL
type ApplicationRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewApplicationRepository creates a new PostgreSQL application repository
func NewApplicationRepository(logger *slog.Logger, db *persistence.PostgresDB) origination.ApplicationRepository {
	return &ApplicationRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

const applicationColumns = `id, applicant_id, co_applicant_id, product_id, account_type, requested_amount, currency, annual_rate_pct, term_months, method, status, decision_reason, account_id, version, created_at, updated_at`

// Create stores a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *origination.Application) error {
	query := `
		INSERT INTO applications (id, applicant_id, co_applicant_id, product_id, account_type, requested_amount, currency, annual_rate_pct, term_months, method, status, decision_reason, account_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.querier.Exec(ctx, query,
		app.ID,
		app.ApplicantID,
		nullableUUID(app.CoApplicantID),
		app.ProductID,
		app.AccountType,
		app.RequestedAmount.Amount().String(),
		app.RequestedAmount.Currency().Code(),
		app.AnnualRatePct,
		app.TermMonths,
		app.Method,
		app.Status,
		app.DecisionReason,
		nullableUUID(app.AccountID),
		app.Version,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create application", "id", app.ID.String(), "error", err)
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

// GetByID retrieves an application by its ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*origination.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	app, err := scanApplication(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, origination.ErrApplicationNotFound{ApplicationID: id}
		}
		r.logger.Error("Failed to get application", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// GetByApplicantID retrieves all applications filed by an applicant, newest first
func (r *ApplicationRepository) GetByApplicantID(ctx context.Context, applicantID uuid.UUID) ([]*origination.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE applicant_id = $1 ORDER BY created_at DESC`

	rows, err := r.querier.Query(ctx, query, applicantID)
	if err != nil {
		r.logger.Error("Failed to get applications by applicant", "applicant_id", applicantID.String(), "error", err)
		return nil, fmt.Errorf("failed to get applications by applicant: %w", err)
	}
	defer rows.Close()

	var apps []*origination.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			r.logger.Error("Failed to scan application row", "error", err)
			return nil, fmt.Errorf("failed to scan application row: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over application rows: %w", err)
	}

	return apps, nil
}

// Update persists a state transition under optimistic locking
func (r *ApplicationRepository) Update(ctx context.Context, app *origination.Application) error {
	query := `
		UPDATE applications
		SET co_applicant_id = $1, status = $2, decision_reason = $3, account_id = $4, version = $5, updated_at = $6
		WHERE id = $7 AND version = $8
	`

	result, err := r.querier.Exec(ctx, query,
		nullableUUID(app.CoApplicantID),
		app.Status,
		app.DecisionReason,
		nullableUUID(app.AccountID),
		app.Version,
		app.UpdatedAt,
		app.ID,
		app.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update application", "id", app.ID.String(), "error", err)
		return fmt.Errorf("failed to update application: %w", err)
	}

	if result.RowsAffected() == 0 {
		return origination.ErrApplicationNotFound{ApplicationID: app.ID}
	}

	return nil
}

func scanApplication(row pgx.Row) (*origination.Application, error) {
	var (
		app           origination.Application
		coApplicantID uuid.NullUUID
		accountID     uuid.NullUUID
		amount        string
		currency      string
	)
	err := row.Scan(
		&app.ID,
		&app.ApplicantID,
		&coApplicantID,
		&app.ProductID,
		&app.AccountType,
		&amount,
		&currency,
		&app.AnnualRatePct,
		&app.TermMonths,
		&app.Method,
		&app.Status,
		&app.DecisionReason,
		&accountID,
		&app.Version,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.CoApplicantID = coApplicantID.UUID
	app.AccountID = accountID.UUID
	app.RequestedAmount, err = money.NewFromString(amount, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stored requested amount: %w", err)
	}
	return &app, nil
}

// nullableUUID maps the nil UUID to SQL NULL
func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
