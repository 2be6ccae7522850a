package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homeplan-finance-core/internal/collaborators"
	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/finance"
	"github.com/homeplan-finance-core/internal/domain/money"
	"github.com/homeplan-finance-core/internal/domain/origination"
	"github.com/homeplan-finance-core/internal/domain/schedule"
	"github.com/homeplan-finance-core/internal/domain/shared"
	"github.com/homeplan-finance-core/internal/platform/messaging/producers"
)

// OriginationServiceImpl implements the OriginationService interface. It
// orchestrates the application and invitation state machines against the
// account, schedule and participant repositories.
type OriginationServiceImpl struct {
	applicationRepo origination.ApplicationRepository
	invitationRepo  origination.InvitationRepository
	participantRepo origination.ParticipantRepository
	accountRepo     account.Repository
	scheduleRepo    schedule.Repository
	catalog         collaborators.ProductCatalog
	producer        producers.MessagePublisher
	logger          *slog.Logger
}

// NewOriginationService creates a new origination service
func NewOriginationService(
	logger *slog.Logger,
	applicationRepo origination.ApplicationRepository,
	invitationRepo origination.InvitationRepository,
	participantRepo origination.ParticipantRepository,
	accountRepo account.Repository,
	scheduleRepo schedule.Repository,
	catalog collaborators.ProductCatalog,
	producer producers.MessagePublisher,
) OriginationService {
	return &OriginationServiceImpl{
		applicationRepo: applicationRepo,
		invitationRepo:  invitationRepo,
		participantRepo: participantRepo,
		accountRepo:     accountRepo,
		scheduleRepo:    scheduleRepo,
		catalog:         catalog,
		producer:        producer,
		logger:          logger,
	}
}

// productUUID derives a stable application-side id from a catalog product
// code, so applications reference products without the gateway owning the
// catalog's key space.
func productUUID(productID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(productID))
}

// SubmitApplication creates a pending application for the given product.
// The rate, term and repayment method are snapshotted from the catalog at
// submission time.
func (s *OriginationServiceImpl) SubmitApplication(ctx context.Context, applicantID uuid.UUID, productID string, amount money.Money) (*origination.Application, error) {
	product, err := s.catalog.FindProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	method, normalized := finance.ParseRepaymentMethod(product.MethodTag)
	if normalized {
		s.logger.Warn("Unknown repayment method tag, defaulting to equal principal",
			"product_id", product.ID,
			"method_tag", product.MethodTag,
		)
	}

	app, err := origination.NewApplication(
		applicantID,
		productUUID(product.ID),
		product.AccountType,
		amount,
		product.AnnualRatePct,
		product.TermMonths,
		method,
	)
	if err != nil {
		return nil, err
	}

	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("Application submitted",
		"application_id", app.ID,
		"applicant_id", applicantID,
		"product_id", product.ID,
		"amount", amount.String(),
	)

	return app, nil
}

// GetApplication retrieves an application by its ID
func (s *OriginationServiceImpl) GetApplication(ctx context.Context, id uuid.UUID) (*origination.Application, error) {
	return s.applicationRepo.GetByID(ctx, id)
}

// GetApplicationsByApplicant retrieves every application submitted by the applicant
func (s *OriginationServiceImpl) GetApplicationsByApplicant(ctx context.Context, applicantID uuid.UUID) ([]*origination.Application, error) {
	return s.applicationRepo.GetByApplicantID(ctx, applicantID)
}

// StartReview moves a pending application into review
func (s *OriginationServiceImpl) StartReview(ctx context.Context, applicationID uuid.UUID) (*origination.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := app.StartReview(); err != nil {
		return nil, err
	}
	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Approve opens the product account, generates the repayment schedule for
// loan products, registers participants and marks the application approved.
// Loan accounts open funded with the principal so disbursement can move it
// to the customer's account through the regular transfer path.
func (s *OriginationServiceImpl) Approve(ctx context.Context, applicationID uuid.UUID, reason string) (*origination.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	// Rejecting the transition before opening the account keeps a bad
	// approval call from leaving orphan account, schedule and participant
	// rows behind.
	if !app.Approvable() {
		return nil, origination.ErrInvalidStateTransition
	}

	accType := app.AccountType
	if app.Joint() {
		accType = jointVariant(accType)
	}

	opening := money.Zero(app.RequestedAmount.Currency())
	if accType == account.TypeLoan || accType == account.TypeJointLoan {
		opening = app.RequestedAmount
	}

	acc, err := account.NewAccount(app.ApplicantID, accountNumber(app.ID), accType, opening)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	if accType == account.TypeLoan || accType == account.TypeJointLoan {
		// Schedules are materialized only within the persistable window;
		// longer terms are computed on demand instead of stored upfront.
		if app.TermMonths <= schedule.MaxEntries {
			entries, err := schedule.Generate(schedule.LoanTerms{
				Principal:     app.RequestedAmount,
				AnnualRatePct: app.AnnualRatePct,
				TermMonths:    app.TermMonths,
				StartDate:     time.Now(),
				Method:        app.Method,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to generate schedule: %w", err)
			}
			for i := range entries {
				entries[i].AccountID = acc.ID
			}
			if err := s.scheduleRepo.CreateBatch(ctx, entries); err != nil {
				return nil, err
			}
		} else {
			s.logger.Warn("Term exceeds schedule window, skipping upfront materialization",
				"application_id", app.ID,
				"term_months", app.TermMonths,
			)
		}
	}

	participants := origination.NewParticipants(acc.ID, app.ApplicantID, app.CoApplicantID)
	if err := s.participantRepo.CreateBatch(ctx, participants); err != nil {
		return nil, err
	}

	if err := app.Approve(acc.ID, reason); err != nil {
		return nil, err
	}
	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info("Application approved",
		"application_id", app.ID,
		"account_id", acc.ID,
		"account_type", string(accType),
	)

	return app, nil
}

// Reject declines an application with a reason
func (s *OriginationServiceImpl) Reject(ctx context.Context, applicationID uuid.UUID, reason string) (*origination.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if err := app.Reject(reason); err != nil {
		return nil, err
	}
	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// Disburse publishes the principal transfer from the funded loan account to
// the destination account and marks the application disbursed. Settlement
// happens asynchronously in the transfer processor.
func (s *OriginationServiceImpl) Disburse(ctx context.Context, applicationID uuid.UUID, destNumber, correlationID string) (*origination.Application, uuid.UUID, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, uuid.Nil, err
	}

	loanAccount, err := s.accountRepo.GetByID(ctx, app.AccountID)
	if err != nil {
		return nil, uuid.Nil, err
	}

	if err := app.MarkDisbursed(); err != nil {
		return nil, uuid.Nil, err
	}

	request := &shared.TransferRequest{
		TransferID:     uuid.New(),
		SourceNumber:   loanAccount.Number,
		DestNumber:     destNumber,
		Amount:         app.RequestedAmount.Rounded().Amount().String(),
		Currency:       app.RequestedAmount.Currency().Code(),
		Memo:           "loan disbursement " + app.ID.String(),
		IdempotencyKey: "disburse-" + app.ID.String(),
		CorrelationID:  correlationID,
		Timestamp:      time.Now(),
	}
	if err := s.producer.Publish(ctx, request.TransferID.String(), request); err != nil {
		return nil, uuid.Nil, err
	}

	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, uuid.Nil, err
	}

	s.logger.Info("Disbursement transfer published",
		"application_id", app.ID,
		"transfer_id", request.TransferID,
		"dest_number", destNumber,
		"amount", request.Amount,
	)

	return app, request.TransferID, nil
}

// CreateInvitation invites a co-applicant onto a pending application. Only
// the applicant may invite.
func (s *OriginationServiceImpl) CreateInvitation(ctx context.Context, applicationID, inviterID, inviteeID uuid.UUID) (*origination.Invitation, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID != inviterID {
		return nil, origination.ErrNotApplicant
	}
	if app.Status != origination.ApplicationStatusPending {
		return nil, origination.ErrInvalidStateTransition
	}

	inv, err := origination.NewInvitation(applicationID, inviterID, inviteeID)
	if err != nil {
		return nil, err
	}
	if err := s.invitationRepo.Create(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("Invitation created",
		"invitation_id", inv.ID,
		"application_id", applicationID,
		"invitee_id", inviteeID,
	)

	return inv, nil
}

// AcceptInvitation accepts a pending invitation and registers the invitee
// as co-applicant on the application.
func (s *OriginationServiceImpl) AcceptInvitation(ctx context.Context, invitationID uuid.UUID) (*origination.Invitation, error) {
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if err := inv.Accept(time.Now()); err != nil {
		return nil, err
	}

	app, err := s.applicationRepo.GetByID(ctx, inv.ApplicationID)
	if err != nil {
		return nil, err
	}
	if err := app.AcceptJoint(inv.InviteeID); err != nil {
		return nil, err
	}

	if err := s.invitationRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	if err := s.applicationRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	return inv, nil
}

// RejectInvitation declines a pending invitation
func (s *OriginationServiceImpl) RejectInvitation(ctx context.Context, invitationID uuid.UUID) (*origination.Invitation, error) {
	return s.updateInvitation(ctx, invitationID, (*origination.Invitation).Reject)
}

// ExpireInvitation expires a pending invitation past its deadline
func (s *OriginationServiceImpl) ExpireInvitation(ctx context.Context, invitationID uuid.UUID) (*origination.Invitation, error) {
	return s.updateInvitation(ctx, invitationID, (*origination.Invitation).Expire)
}

// GetInvitationsByInvitee retrieves every invitation addressed to the invitee
func (s *OriginationServiceImpl) GetInvitationsByInvitee(ctx context.Context, inviteeID uuid.UUID) ([]*origination.Invitation, error) {
	return s.invitationRepo.GetByInviteeID(ctx, inviteeID)
}

func (s *OriginationServiceImpl) updateInvitation(ctx context.Context, invitationID uuid.UUID, transition func(*origination.Invitation) error) (*origination.Invitation, error) {
	inv, err := s.invitationRepo.GetByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if err := transition(inv); err != nil {
		return nil, err
	}
	if err := s.invitationRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// jointVariant maps a sole account type to its joint counterpart.
func jointVariant(t account.Type) account.Type {
	switch t {
	case account.TypeSavings:
		return account.TypeJointSavings
	case account.TypeLoan:
		return account.TypeJointLoan
	default:
		return t
	}
}

// accountNumber derives a product account number from the application id.
func accountNumber(applicationID uuid.UUID) string {
	return "HP-" + strings.ToUpper(strings.ReplaceAll(applicationID.String(), "-", "")[:12])
}
