// Package plan turns one affordability request into a fixed set of named
// strategies. Each strategy targets a fraction of the regulatory ratio
// ceiling; a strategy that fails validation is dropped with a warning,
// never replaced, and never aborts the others.
package plan

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/homeplan-finance-core/internal/domain/affordability"
	"github.com/homeplan-finance-core/internal/domain/finance"
	"github.com/homeplan-finance-core/internal/domain/money"
)

// ErrNoStrategies indicates an empty strategy list.
var ErrNoStrategies = errors.New("at least one strategy is required")

// Strategy names a target fraction of the ratio ceiling.
type Strategy struct {
	Name     string
	Fraction decimal.Decimal
}

// DefaultStrategies is the fixed, ordered strategy list. Output ordering
// follows this list.
var DefaultStrategies = []Strategy{
	{Name: "conservative", Fraction: decimal.RequireFromString("0.60")},
	{Name: "balanced", Fraction: decimal.RequireFromString("0.70")},
	{Name: "aggressive", Fraction: decimal.RequireFromString("0.80")},
}

// SavingOutcome classifies a caller-supplied contribution against the
// savings gap.
type SavingOutcome string

const (
	SavingSufficient   SavingOutcome = "SUFFICIENT"
	SavingPartial      SavingOutcome = "PARTIALLY_SUFFICIENT"
	SavingInsufficient SavingOutcome = "INSUFFICIENT"
)

// Input carries everything one plan-set generation needs.
type Input struct {
	AnnualIncome              money.Money
	ExistingAnnualDebtService money.Money
	AnnualRatePct             decimal.Decimal
	TermMonths                int
	Method                    finance.RepaymentMethod
	RatioCeilingPct           decimal.Decimal
	Region                    finance.Region
	HousingStatus             finance.HousingStatus
	TargetPrice               money.Money
	CurrentCash               money.Money
	ExternalMaxAmount         money.Money
	// DesiredMonthlySaving, when positive, is classified against the
	// required contribution instead of replacing it.
	DesiredMonthlySaving money.Money
	SavingTermMonths     int
}

// Plan is one priced strategy.
type Plan struct {
	Strategy              string          `json:"strategy"`
	LoanAmount            money.Money     `json:"loan_amount"`
	MonthlyPayment        money.Money     `json:"monthly_payment"`
	RatioPct              decimal.Decimal `json:"ratio_pct"`
	StressedRatioPct      decimal.Decimal `json:"stressed_ratio_pct"`
	RequiredMonthlySaving money.Money     `json:"required_monthly_saving"`
	SavingsMaturityAmount money.Money     `json:"savings_maturity_amount"`
	SavingOutcome         SavingOutcome   `json:"saving_outcome,omitempty"`
	Feasible              bool            `json:"feasible"`
}

// Result is the ordered plan list plus warnings for dropped strategies.
type Result struct {
	Plans    []Plan   `json:"plans"`
	Warnings []string `json:"warnings,omitempty"`
}

// Generator prices strategies. It is stateless; all computation is pure.
type Generator struct {
	strategies []Strategy
}

// NewGenerator creates a Generator over the given ordered strategies.
func NewGenerator(strategies []Strategy) (*Generator, error) {
	if len(strategies) == 0 {
		return nil, ErrNoStrategies
	}
	return &Generator{strategies: strategies}, nil
}

// Generate prices every strategy in order. Per-strategy failures produce a
// warning entry and omit the plan; only input-level validation errors abort.
func (g *Generator) Generate(in Input) (Result, error) {
	if in.AnnualIncome.IsNegative() {
		return Result{}, affordability.ErrInvalidIncome
	}
	if !in.RatioCeilingPct.IsPositive() {
		return Result{}, affordability.ErrInvalidCeiling
	}

	currency := in.AnnualIncome.Currency()
	ltvCap := ltvCappedAmount(in)

	var res Result
	for _, s := range g.strategies {
		solved, err := affordability.MaxPrincipal(affordability.Context{
			AnnualIncome:              in.AnnualIncome,
			ExistingAnnualDebtService: in.ExistingAnnualDebtService,
			AnnualRatePct:             in.AnnualRatePct,
			TermMonths:                in.TermMonths,
			Method:                    in.Method,
			TargetRatioPct:            in.RatioCeilingPct.Mul(s.Fraction),
			AbsoluteCeilingPct:        in.RatioCeilingPct,
			LTVCappedAmount:           ltvCap,
			ExternalMaxAmount:         in.ExternalMaxAmount,
		})
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", s.Name, err))
			continue
		}
		if solved.Rejected || !solved.MaxPrincipal.IsPositive() {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: no principal satisfies the ratio target", s.Name))
			continue
		}

		// Resilience check under the stressed rate: the plan survives only
		// if the stressed ratio stays under the absolute ceiling.
		stressedRatio, err := g.stressedRatio(in, solved.MaxPrincipal)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", s.Name, err))
			continue
		}
		if stressedRatio.GreaterThan(in.RatioCeilingPct) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: stressed ratio %s exceeds ceiling", s.Name, stressedRatio.StringFixed(2)))
			continue
		}

		p := Plan{
			Strategy:         s.Name,
			LoanAmount:       solved.MaxPrincipal,
			MonthlyPayment:   solved.MonthlyPayment,
			RatioPct:         solved.AchievedRatioPct,
			StressedRatioPct: stressedRatio,
			Feasible:         true,
		}

		gap := priceGap(in, solved.MaxPrincipal, currency)
		if gap.IsPositive() && in.SavingTermMonths > 0 {
			p.RequiredMonthlySaving = RequiredContribution(gap, in.AnnualRatePct, in.SavingTermMonths).Rounded()
			p.SavingsMaturityAmount = MaturityValue(p.RequiredMonthlySaving, in.AnnualRatePct, in.SavingTermMonths).Rounded()
			if in.DesiredMonthlySaving.IsPositive() {
				p.SavingOutcome = classify(gap, in.DesiredMonthlySaving, in.AnnualRatePct, in.SavingTermMonths)
			}
		} else {
			p.RequiredMonthlySaving = money.Zero(currency)
			p.SavingsMaturityAmount = money.Zero(currency)
		}

		res.Plans = append(res.Plans, p)
	}
	return res, nil
}

// stressedRatio recomputes the debt-service ratio for the solved principal
// under the region's stressed rate.
func (g *Generator) stressedRatio(in Input, principal money.Money) (decimal.Decimal, error) {
	stressed := finance.StressRate(in.Region, in.AnnualRatePct)
	payment, err := finance.MonthlyPayment(principal, stressed, in.TermMonths, in.Method)
	if err != nil {
		return decimal.Zero, err
	}
	annual, err := in.ExistingAnnualDebtService.Add(payment.Mul(decimal.NewFromInt(12)))
	if err != nil {
		annual = payment.Mul(decimal.NewFromInt(12))
	}
	return finance.Ratio(annual, in.AnnualIncome), nil
}

// ltvCappedAmount converts the regional LTV ceiling into an absolute cap on
// the principal. Without a target price there is nothing to cap against.
func ltvCappedAmount(in Input) money.Money {
	if !in.TargetPrice.IsPositive() {
		return money.Money{}
	}
	pct := finance.LTVLimit(in.Region, in.HousingStatus)
	return in.TargetPrice.Mul(pct.Div(decimal.NewFromInt(100)))
}

// priceGap is the part of the target price covered by neither the loan nor
// cash on hand.
func priceGap(in Input, principal money.Money, currency money.Currency) money.Money {
	if !in.TargetPrice.IsPositive() {
		return money.Zero(currency)
	}
	covered := principal
	if in.CurrentCash.IsPositive() {
		if sum, err := covered.Add(in.CurrentCash); err == nil {
			covered = sum
		}
	}
	gap, err := in.TargetPrice.Sub(covered)
	if err != nil || !gap.IsPositive() {
		return money.Zero(currency)
	}
	return gap
}

// RequiredContribution inverts the future-value annuity formula:
// contribution = gap * r / ((1+r)^n - 1), with a zero rate handled as a
// linear division.
func RequiredContribution(gap money.Money, annualRatePct decimal.Decimal, months int) money.Money {
	r := finance.MonthlyRate(annualRatePct)
	n := decimal.NewFromInt(int64(months))
	if r.IsZero() {
		return gap.Div(n)
	}
	pow := powMonthly(r, months)
	return gap.Mul(r).Div(pow.Sub(decimal.NewFromInt(1)))
}

// MaturityValue projects the future value of a fixed monthly contribution:
// c * ((1+r)^n - 1) / r.
func MaturityValue(contribution money.Money, annualRatePct decimal.Decimal, months int) money.Money {
	r := finance.MonthlyRate(annualRatePct)
	n := decimal.NewFromInt(int64(months))
	if r.IsZero() {
		return contribution.Mul(n)
	}
	pow := powMonthly(r, months)
	return contribution.Mul(pow.Sub(decimal.NewFromInt(1))).Div(r)
}

// classify compares the projected maturity value of the desired
// contribution against the gap. Partial means it closes at least half.
func classify(gap, desired money.Money, annualRatePct decimal.Decimal, months int) SavingOutcome {
	projected := MaturityValue(desired, annualRatePct, months)
	if projected.GreaterThanOrEqual(gap) {
		return SavingSufficient
	}
	if projected.Mul(decimal.NewFromInt(2)).GreaterThanOrEqual(gap) {
		return SavingPartial
	}
	return SavingInsufficient
}

func powMonthly(r decimal.Decimal, months int) decimal.Decimal {
	return decimal.NewFromFloat(math.Pow(r.Add(decimal.NewFromInt(1)).InexactFloat64(), float64(months)))
}
