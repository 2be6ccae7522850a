// Package collaborators defines the contracts of external systems the core
// consumes. Only stub adapters live here; real integrations are deployed
// separately and satisfy the same interfaces.
package collaborators

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/money"
)

var (
	ErrUnauthorized    = errors.New("credential could not be validated")
	ErrProductNotFound = errors.New("product not found")
)

// IdentityProvider validates a caller credential and resolves the user id.
type IdentityProvider interface {
	Authenticate(ctx context.Context, credential string) (uuid.UUID, error)
}

// IncomeEstimator reports a user's verified annual income. The boolean is
// false when no income data exists for the user; the amount is then zero
// rather than an error.
type IncomeEstimator interface {
	AnnualIncome(ctx context.Context, userID uuid.UUID) (money.Money, bool, error)
}

// DebtAggregator sums the annual debt service of all externally held loan,
// card and installment obligations under their respective repayment methods.
type DebtAggregator interface {
	ExistingAnnualDebtService(ctx context.Context, userID uuid.UUID) (money.Money, error)
}

// ProductDescriptor describes a savings or loan product offered to applicants.
// MethodTag carries the catalog's repayment-method tag verbatim; consumers
// normalize it with finance.ParseRepaymentMethod since external catalogs are
// not bound to our variant set.
type ProductDescriptor struct {
	ID            string
	Name          string
	AccountType   account.Type
	AnnualRatePct decimal.Decimal
	TermMonths    int
	MethodTag     string
}

// ProductCatalog looks up product descriptors by id.
type ProductCatalog interface {
	FindProduct(ctx context.Context, productID string) (*ProductDescriptor, error)
}
