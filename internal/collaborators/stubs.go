package collaborators

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeplan-finance-core/internal/domain/account"
	"github.com/homeplan-finance-core/internal/domain/money"
)

var (
	_ IdentityProvider = (*StubIdentityProvider)(nil)
	_ IncomeEstimator  = (*StubIncomeEstimator)(nil)
	_ DebtAggregator   = (*StubDebtAggregator)(nil)
	_ ProductCatalog   = (*StubProductCatalog)(nil)
)

// StubIdentityProvider validates credentials of the form "user:<uuid>".
// Deterministic, so test scenarios are repeatable.
type StubIdentityProvider struct{}

func NewStubIdentityProvider() *StubIdentityProvider {
	return &StubIdentityProvider{}
}

func (p *StubIdentityProvider) Authenticate(_ context.Context, credential string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(credential, "user:")
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return userID, nil
}

// StubIncomeEstimator derives a deterministic annual income from a hash of
// the user id, in the range 30,000,000 to 90,000,000 whole units. User ids
// whose hash lands on a multiple of 17 report no income data.
type StubIncomeEstimator struct {
	currency money.Currency
}

func NewStubIncomeEstimator(currency money.Currency) *StubIncomeEstimator {
	return &StubIncomeEstimator{currency: currency}
}

func (e *StubIncomeEstimator) AnnualIncome(_ context.Context, userID uuid.UUID) (money.Money, bool, error) {
	h := sha256.Sum256([]byte(userID.String()))
	num := binary.BigEndian.Uint64(h[:8])

	if num%17 == 0 {
		return money.Zero(e.currency), false, nil
	}

	income := int64(30_000_000 + num%60_000_001) // range [30M, 90M]
	return money.NewFromInt(income, e.currency), true, nil
}

// StubDebtAggregator reports a deterministic existing annual debt service
// between zero and 12,000,000 whole units, derived from the user id.
type StubDebtAggregator struct {
	currency money.Currency
}

func NewStubDebtAggregator(currency money.Currency) *StubDebtAggregator {
	return &StubDebtAggregator{currency: currency}
}

func (a *StubDebtAggregator) ExistingAnnualDebtService(_ context.Context, userID uuid.UUID) (money.Money, error) {
	h := sha256.Sum256([]byte("debt:" + userID.String()))
	num := binary.BigEndian.Uint64(h[:8])

	debt := int64(num % 12_000_001) // range [0, 12M]
	return money.NewFromInt(debt, a.currency), nil
}

// StubProductCatalog serves a fixed set of products from memory.
type StubProductCatalog struct {
	products map[string]*ProductDescriptor
}

func NewStubProductCatalog() *StubProductCatalog {
	return &StubProductCatalog{
		products: map[string]*ProductDescriptor{
			"HOME-LOAN-30Y": {
				ID:            "HOME-LOAN-30Y",
				Name:          "Home Purchase Loan 30y",
				AccountType:   account.TypeLoan,
				AnnualRatePct: decimal.NewFromFloat(4.0),
				TermMonths:    360,
				MethodTag:     "EQUAL_INSTALLMENT",
			},
			"HOME-LOAN-20Y": {
				ID:            "HOME-LOAN-20Y",
				Name:          "Home Purchase Loan 20y",
				AccountType:   account.TypeLoan,
				AnnualRatePct: decimal.NewFromFloat(3.8),
				TermMonths:    240,
				MethodTag:     "EQUAL_PRINCIPAL",
			},
			"JEONSE-LOAN-2Y": {
				ID:            "JEONSE-LOAN-2Y",
				Name:          "Jeonse Deposit Loan 2y",
				AccountType:   account.TypeLoan,
				AnnualRatePct: decimal.NewFromFloat(3.5),
				TermMonths:    24,
				MethodTag:     "BULLET",
			},
			"HOME-SAVING-10Y": {
				ID:            "HOME-SAVING-10Y",
				Name:          "Housing Subscription Saving 10y",
				AccountType:   account.TypeSavings,
				AnnualRatePct: decimal.NewFromFloat(2.5),
				TermMonths:    120,
				MethodTag:     "EQUAL_PRINCIPAL",
			},
			"JOINT-SAVING-5Y": {
				ID:            "JOINT-SAVING-5Y",
				Name:          "Joint Housing Saving 5y",
				AccountType:   account.TypeJointSavings,
				AnnualRatePct: decimal.NewFromFloat(3.0),
				TermMonths:    60,
				MethodTag:     "EQUAL_PRINCIPAL",
			},
		},
	}
}

func (c *StubProductCatalog) FindProduct(_ context.Context, productID string) (*ProductDescriptor, error) {
	product, ok := c.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return product, nil
}
