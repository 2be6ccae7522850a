package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/affordability"
	"github.com/homeplan-finance-core/internal/domain/ledger"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/origination"
	"github.com/homeplan-finance-core/internal/domain/plan"
	"github.com/homeplan-finance-core/internal/domain/shared"
)

// AccountService defines the interface for account operations
type AccountService interface {
	// CreateAccount creates a new account with the given details
	// Returns ErrDuplicateNumber if an account with the same number exists
	CreateAccount(ctx context.Context, ownerID uuid.UUID, number string, accType account.Type, openingBalance money.Money) (*account.Account, error)

	// GetAccountByID retrieves an account by its ID
	// Returns ErrAccountNotFound if the account doesn't exist
	GetAccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error)

	// GetAccountsByOwner retrieves every account held by the given owner
	GetAccountsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error)

	// CloseAccount closes a zero-balance account at maturity payout and
	// purges its remaining schedule entries.
	// Returns ErrBalanceRemaining if the account still holds funds
	CloseAccount(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

// TransferService defines the interface for transfer operations
type TransferService interface {
	// SubmitTransfer publishes a transfer request for asynchronous processing.
	// When the idempotency key already settled, the existing record pair is
	// returned instead of publishing again.
	SubmitTransfer(ctx context.Context, request *shared.TransferRequest) (string, []*ledger.Record, error)

	// GetTransferByID retrieves the settled record pair of a transfer.
	// Returns nil records if the transfer has not settled yet
	GetTransferByID(ctx context.Context, transferID uuid.UUID) ([]*ledger.Record, error)

	// GetHistoryByAccountID retrieves the paginated ledger history of an account.
	// Returns records, total count, and any error
	GetHistoryByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*ledger.Record, int64, error)
}

// QuoteRequest carries the inputs of one affordability or plan computation.
type QuoteRequest struct {
	Credential           string
	ProductID            string
	Region               string
	HousingStatus        string
	TargetPrice          money.Money
	CurrentCash          money.Money
	DesiredMonthlySaving money.Money
	SavingTermMonths     int
}

// PlanService defines the interface for affordability quotes and plan
// generation.
type PlanService interface {
	// QuoteAffordability computes the maximum principal for the
	// authenticated user against a product's rate and term.
	QuoteAffordability(ctx context.Context, request *QuoteRequest) (*affordability.Result, error)

	// GeneratePlans prices the strategy set for the authenticated user,
	// serving repeated identical requests from cache.
	GeneratePlans(ctx context.Context, request *QuoteRequest) (*plan.Result, error)
}

// OriginationService drives the application and invitation lifecycles.
type OriginationService interface {
	SubmitApplication(ctx context.Context, applicantID uuid.UUID, productID string, amount money.Money) (*origination.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*origination.Application, error)
	GetApplicationsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*origination.Application, error)
	StartReview(ctx context.Context, applicationID uuid.UUID) (*origination.Application, error)

	// Approve opens the product account, generates its schedule for loan
	// products, registers participants and binds the account to the
	// application.
	Approve(ctx context.Context, applicationID uuid.UUID, reason string) (*origination.Application, error)
	Reject(ctx context.Context, applicationID uuid.UUID, reason string) (*origination.Application, error)

	// Disburse publishes the principal transfer from the loan account to
	// the destination account and marks the application disbursed.
	// Returns the application and the transfer id the processor will settle.
	Disburse(ctx context.Context, applicationID uuid.UUID, destNumber, correlationID string) (*origination.Application, uuid.UUID, error)

	CreateInvitation(ctx context.Context, applicationID, inviterID, inviteeID uuid.UUID) (*origination.Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID uuid.UUID) (*origination.Invitation, error)
	RejectInvitation(ctx context.Context, invitationID uuid.UUID) (*origination.Invitation, error)
	ExpireInvitation(ctx context.Context, invitationID uuid.UUID) (*origination.Invitation, error)
	GetInvitationsByInvitee(ctx context.Context, inviteeID uuid.UUID) ([]*origination.Invitation, error)
}
