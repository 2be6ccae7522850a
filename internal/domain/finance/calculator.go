// Package finance provides the pure rate and ratio calculations backing
// affordability checks: per-period payments, debt-service ratios, stressed
// rates and regulatory loan-to-value ceilings.
package finance

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/homeplan-finance-core/internal/domain/money"
)

var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidTerm      = errors.New("term months must be positive")
	ErrNegativeRate     = errors.New("annual rate must not be negative")
)

var (
	hundred      = decimal.NewFromInt(100)
	twelve       = decimal.NewFromInt(12)
	monthsPerPct = decimal.NewFromInt(1200)
)

// MonthlyRate converts an annual percentage rate to a monthly decimal rate.
func MonthlyRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return annualRatePct.Div(monthsPerPct)
}

// annuityPow computes (1+r)^n via float64; the power calculation is the
// single place floating point enters, everything else stays decimal.
func annuityPow(monthlyRate decimal.Decimal, months int) decimal.Decimal {
	f := math.Pow(monthlyRate.Add(decimal.NewFromInt(1)).InexactFloat64(), float64(months))
	return decimal.NewFromFloat(f)
}

// MonthlyPayment returns the first-period payment for the given repayment
// method. For equal installments this is the constant annuity payment
// M = P*r*(1+r)^n / ((1+r)^n - 1); a zero rate degrades to a linear split.
// For equal principal it is the first (largest) period's payment, and for
// bullet loans the interest-only payment.
func MonthlyPayment(principal money.Money, annualRatePct decimal.Decimal, months int, method RepaymentMethod) (money.Money, error) {
	if !principal.IsPositive() {
		return money.Money{}, ErrInvalidPrincipal
	}
	if months <= 0 {
		return money.Money{}, ErrInvalidTerm
	}
	if annualRatePct.IsNegative() {
		return money.Money{}, ErrNegativeRate
	}

	r := MonthlyRate(annualRatePct)
	n := decimal.NewFromInt(int64(months))

	switch method {
	case MethodEqualPrincipal:
		// Constant principal plus first-period interest on the full balance.
		principalPart := principal.Div(n)
		interest := principal.Mul(r)
		return principalPart.Add(interest)
	case MethodBullet:
		return principal.Mul(r), nil
	default: // MethodEqualInstallment
		if r.IsZero() {
			return principal.Div(n), nil
		}
		pow := annuityPow(r, months)
		// P * r * (1+r)^n / ((1+r)^n - 1)
		return principal.Mul(r).Mul(pow).Div(pow.Sub(decimal.NewFromInt(1))), nil
	}
}

// AnnualDebtService returns twelve times the first-period monthly payment,
// the figure debt-service ratios are computed against.
func AnnualDebtService(principal money.Money, annualRatePct decimal.Decimal, months int, method RepaymentMethod) (money.Money, error) {
	m, err := MonthlyPayment(principal, annualRatePct, months, method)
	if err != nil {
		return money.Money{}, err
	}
	return m.Mul(twelve), nil
}

// Ratio returns numerator/denominator as a percentage. A zero denominator
// yields 0% rather than an error; the division is undefined, not a failure.
func Ratio(numeratorAnnual, denominatorAnnual money.Money) decimal.Decimal {
	if denominatorAnnual.IsZero() {
		return decimal.Zero
	}
	return numeratorAnnual.Amount().Div(denominatorAnnual.Amount()).Mul(hundred)
}
