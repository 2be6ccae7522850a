// Package origination holds the invitation and application state machines
// that drive account opening, schedule generation and disbursement.
package origination

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/finance"
	"github.com/homeplan-finance-core/internal/domain/money"
)

// Common errors
var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInvalidAmount          = errors.New("requested amount must be positive")
	ErrInvalidTerm            = errors.New("term months must be positive")
	ErrEmptyApplicant         = errors.New("applicant id is required")
	ErrEmptyProduct           = errors.New("product id is required")
)

// ApplicationStatus is the lifecycle state of a loan or savings application.
type ApplicationStatus string

const (
	ApplicationStatusPending       ApplicationStatus = "PENDING"
	ApplicationStatusUnderReview   ApplicationStatus = "UNDER_REVIEW"
	ApplicationStatusJointAccepted ApplicationStatus = "JOINT_ACCEPTED"
	ApplicationStatusApproved      ApplicationStatus = "APPROVED"
	ApplicationStatusDisbursed     ApplicationStatus = "DISBURSED"
	ApplicationStatusRejected      ApplicationStatus = "REJECTED"
)

// Application is a loan or savings application.
//
// Transitions: PENDING -> UNDER_REVIEW -> APPROVED -> DISBURSED, with
// REJECTED reachable from PENDING or UNDER_REVIEW and JOINT_ACCEPTED a side
// entry from PENDING when a co-applicant invitation is accepted.
type Application struct {
	ID              uuid.UUID               `json:"id"`
	ApplicantID     uuid.UUID               `json:"applicant_id"`
	CoApplicantID   uuid.UUID               `json:"co_applicant_id,omitempty"`
	ProductID       uuid.UUID               `json:"product_id"`
	AccountType     account.Type            `json:"account_type"`
	RequestedAmount money.Money             `json:"requested_amount"`
	AnnualRatePct   decimal.Decimal         `json:"annual_rate_pct"`
	TermMonths      int                     `json:"term_months"`
	Method          finance.RepaymentMethod `json:"method"`
	Status          ApplicationStatus       `json:"status"`
	DecisionReason  string                  `json:"decision_reason,omitempty"`
	AccountID       uuid.UUID               `json:"account_id,omitempty"` // Set on approval
	Version         int                     `json:"version"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// NewApplication creates a pending application.
func NewApplication(applicantID, productID uuid.UUID, accType account.Type, amount money.Money, annualRatePct decimal.Decimal, termMonths int, method finance.RepaymentMethod) (*Application, error) {
	if applicantID == uuid.Nil {
		return nil, ErrEmptyApplicant
	}
	if productID == uuid.Nil {
		return nil, ErrEmptyProduct
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if termMonths <= 0 {
		return nil, ErrInvalidTerm
	}

	now := time.Now()
	return &Application{
		ID:              uuid.New(),
		ApplicantID:     applicantID,
		ProductID:       productID,
		AccountType:     accType,
		RequestedAmount: amount,
		AnnualRatePct:   annualRatePct,
		TermMonths:      termMonths,
		Method:          method,
		Status:          ApplicationStatusPending,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// StartReview transitions PENDING -> UNDER_REVIEW.
func (a *Application) StartReview() error {
	if a.Status != ApplicationStatusPending {
		return ErrInvalidStateTransition
	}
	a.transition(ApplicationStatusUnderReview)
	return nil
}

// AcceptJoint transitions PENDING -> JOINT_ACCEPTED when the co-applicant
// invitation is accepted, and registers the co-applicant.
func (a *Application) AcceptJoint(coApplicantID uuid.UUID) error {
	if a.Status != ApplicationStatusPending {
		return ErrInvalidStateTransition
	}
	a.CoApplicantID = coApplicantID
	a.transition(ApplicationStatusJointAccepted)
	return nil
}

// Approvable reports whether the application is in a state that allows
// approval. Callers that persist side effects of an approval should check
// this before writing anything.
func (a *Application) Approvable() bool {
	return a.Status == ApplicationStatusUnderReview || a.Status == ApplicationStatusJointAccepted
}

// Approve transitions UNDER_REVIEW (or JOINT_ACCEPTED) -> APPROVED and
// binds the account the approval created.
func (a *Application) Approve(accountID uuid.UUID, reason string) error {
	if !a.Approvable() {
		return ErrInvalidStateTransition
	}
	a.AccountID = accountID
	a.DecisionReason = reason
	a.transition(ApplicationStatusApproved)
	return nil
}

// Reject transitions PENDING or UNDER_REVIEW -> REJECTED.
func (a *Application) Reject(reason string) error {
	if a.Status != ApplicationStatusPending && a.Status != ApplicationStatusUnderReview {
		return ErrInvalidStateTransition
	}
	a.DecisionReason = reason
	a.transition(ApplicationStatusRejected)
	return nil
}

// MarkDisbursed transitions APPROVED -> DISBURSED.
func (a *Application) MarkDisbursed() error {
	if a.Status != ApplicationStatusApproved {
		return ErrInvalidStateTransition
	}
	a.transition(ApplicationStatusDisbursed)
	return nil
}

// Joint reports whether a co-applicant is registered.
func (a *Application) Joint() bool {
	return a.CoApplicantID != uuid.Nil
}

func (a *Application) transition(next ApplicationStatus) {
	a.Status = next
	a.UpdatedAt = time.Now()
	a.Version++
}
