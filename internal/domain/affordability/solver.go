// Package affordability finds the maximal loan principal whose debt
// service keeps a borrower under a regulatory ratio ceiling. The annuity
// closed form is authoritative for equal-installment and bullet loans;
// equal-principal loans have no clean inverse and use a bounded bisection
// over the same payment function.
package affordability

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"

	"github.com/homeplan-finance-core/internal/domain/finance"
	"github.com/homeplan-finance-core/internal/domain/money"
)

// BisectionIterations bounds the fallback search. Termination is
// guaranteed regardless of input.
const BisectionIterations = 50

// incomeBoundFactor bounds the bisection interval at ten times annual
// income.
var incomeBoundFactor = decimal.NewFromInt(10)

var (
	ErrInvalidIncome  = errors.New("annual income must not be negative")
	ErrInvalidCeiling = errors.New("ratio ceiling must be positive")
)

// Context carries the inputs of one affordability search. TargetRatioPct is
// the ratio the search converges to; AbsoluteCeilingPct is the hard
// regulatory ceiling the clamped result is re-checked against (plan
// strategies target a fraction of the ceiling, so the two differ).
// LTVCappedAmount and ExternalMaxAmount are upper clamps; a zero value
// means the clamp is absent.
type Context struct {
	AnnualIncome              money.Money
	ExistingAnnualDebtService money.Money
	AnnualRatePct             decimal.Decimal
	TermMonths                int
	Method                    finance.RepaymentMethod
	TargetRatioPct            decimal.Decimal
	AbsoluteCeilingPct        decimal.Decimal
	LTVCappedAmount           money.Money
	ExternalMaxAmount         money.Money
}

// Result is the outcome of a search. A zero MaxPrincipal with Rejected set
// means no principal satisfies the ceiling; that is a value, not an error.
type Result struct {
	MaxPrincipal     money.Money
	MonthlyPayment   money.Money
	AchievedRatioPct decimal.Decimal
	Rejected         bool
}

// MaxPrincipal finds the largest principal P such that
// ratio(existingDebtService + annualPayment(P), income) <= target, clamps
// it to the LTV cap and the external ceiling, and re-checks the clamped
// amount against the absolute regulatory ceiling.
func MaxPrincipal(ctx Context) (Result, error) {
	if ctx.AnnualIncome.IsNegative() {
		return Result{}, ErrInvalidIncome
	}
	if !ctx.TargetRatioPct.IsPositive() {
		return Result{}, ErrInvalidCeiling
	}
	if ctx.TermMonths <= 0 {
		return Result{}, finance.ErrInvalidTerm
	}
	if ctx.AnnualRatePct.IsNegative() {
		return Result{}, finance.ErrNegativeRate
	}

	currency := ctx.AnnualIncome.Currency()
	zero := money.Zero(currency)
	if ctx.ExistingAnnualDebtService.Currency().Code() == "" {
		ctx.ExistingAnnualDebtService = zero
	}

	// Maximal new monthly payment after existing obligations.
	allowedAnnual := ctx.AnnualIncome.Mul(ctx.TargetRatioPct.Div(decimal.NewFromInt(100)))
	headroom, err := allowedAnnual.Sub(ctx.ExistingAnnualDebtService)
	if err != nil {
		return Result{}, err
	}
	if !headroom.IsPositive() {
		// Existing debt alone already exceeds the ceiling.
		return Result{MaxPrincipal: zero, MonthlyPayment: zero, Rejected: true}, nil
	}
	maxMonthly := headroom.Div(decimal.NewFromInt(12))

	var principal money.Money
	switch ctx.Method {
	case finance.MethodEqualPrincipal:
		principal = bisect(ctx, maxMonthly)
	default:
		principal = invertClosedForm(ctx, maxMonthly)
	}
	if !principal.IsPositive() {
		return Result{MaxPrincipal: zero, MonthlyPayment: zero, Rejected: true}, nil
	}

	// Clamp to the LTV cap and the externally supplied ceiling.
	principal = clamp(principal, ctx.LTVCappedAmount)
	principal = clamp(principal, ctx.ExternalMaxAmount)
	// Floor to the minor unit: rounding up could nudge the ratio past the
	// ceiling it was solved against.
	principal = money.New(principal.Amount().RoundDown(currency.Exponent()), currency)
	if !principal.IsPositive() {
		return Result{MaxPrincipal: zero, MonthlyPayment: zero, Rejected: true}, nil
	}

	// Clamping must not reintroduce a violation of the hard ceiling.
	monthly, err := finance.MonthlyPayment(principal, ctx.AnnualRatePct, ctx.TermMonths, ctx.Method)
	if err != nil {
		return Result{}, err
	}
	achieved := achievedRatio(ctx, monthly)
	absolute := ctx.AbsoluteCeilingPct
	if !absolute.IsPositive() {
		absolute = ctx.TargetRatioPct
	}
	if achieved.GreaterThan(absolute) {
		return Result{MaxPrincipal: zero, MonthlyPayment: zero, AchievedRatioPct: achieved, Rejected: true}, nil
	}

	return Result{
		MaxPrincipal:     principal,
		MonthlyPayment:   monthly.Rounded(),
		AchievedRatioPct: achieved,
	}, nil
}

// invertClosedForm inverts the payment formula directly. Equal-installment
// uses P = M*((1+r)^n - 1) / (r*(1+r)^n); bullet uses P = M/r. A zero rate
// degrades to the linear P = M*n, which for a bullet loan means the ratio
// imposes no bound and the income-based search bound applies.
func invertClosedForm(ctx Context, maxMonthly money.Money) money.Money {
	r := finance.MonthlyRate(ctx.AnnualRatePct)
	if r.IsZero() {
		if ctx.Method == finance.MethodBullet {
			return ctx.AnnualIncome.Mul(incomeBoundFactor)
		}
		return maxMonthly.Mul(decimal.NewFromInt(int64(ctx.TermMonths)))
	}
	if ctx.Method == finance.MethodBullet {
		return maxMonthly.Div(r)
	}
	pow := decimal.NewFromFloat(math.Pow(r.Add(decimal.NewFromInt(1)).InexactFloat64(), float64(ctx.TermMonths)))
	return maxMonthly.Mul(pow.Sub(decimal.NewFromInt(1))).Div(r.Mul(pow))
}

// bisect searches [0, 10*annualIncome] for the boundary where the monthly
// payment reaches maxMonthly. The payment is monotonic in the principal, so
// the midpoint test converges from below; the iteration count is fixed.
func bisect(ctx Context, maxMonthly money.Money) money.Money {
	low := decimal.Zero
	high := ctx.AnnualIncome.Mul(incomeBoundFactor).Amount()
	currency := ctx.AnnualIncome.Currency()

	for i := 0; i < BisectionIterations; i++ {
		mid := low.Add(high).Div(decimal.NewFromInt(2))
		if mid.IsZero() {
			break
		}
		payment, err := finance.MonthlyPayment(money.New(mid, currency), ctx.AnnualRatePct, ctx.TermMonths, ctx.Method)
		if err != nil {
			return money.Zero(currency)
		}
		if maxMonthly.LessThan(payment) {
			high = mid
		} else {
			low = mid
		}
	}
	return money.New(low, currency)
}

func achievedRatio(ctx Context, monthly money.Money) decimal.Decimal {
	annualNew := monthly.Mul(decimal.NewFromInt(12))
	total, err := ctx.ExistingAnnualDebtService.Add(annualNew)
	if err != nil {
		return decimal.Zero
	}
	return finance.Ratio(total, ctx.AnnualIncome)
}

func clamp(p, cap money.Money) money.Money {
	if cap.IsPositive() && cap.LessThan(p) {
		return cap
	}
	return p
}
