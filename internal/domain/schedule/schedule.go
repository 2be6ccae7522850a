// Package schedule generates repayment and deposit schedules. Each
// generator walks monthly from the start date and emits entries rounded to
// the currency minor unit; every intermediate figure keeps full decimal
// precision and the final period absorbs any rounding residue so the sum of
// principal components equals the original principal exactly.
package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/homeplan-finance-core/internal/domain/finance"
	"github.com/homeplan-finance-core/internal/domain/money"
)

// MaxEntries caps schedule length. It is a safety bound against malformed
// inputs producing unbounded sequences, not a business rule.
const MaxEntries = 120

// defaultHorizonMonths applies when terms carry no explicit end date.
const defaultHorizonMonths = 12

var (
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrTermTooLong      = errors.New("term exceeds maximum schedule length")
	ErrEndBeforeStart   = errors.New("end date must not precede start date")
)

// EntryStatus marks whether a schedule entry has been settled.
type EntryStatus string

const (
	EntryStatusPending EntryStatus = "PENDING"
	EntryStatusPaid    EntryStatus = "PAID"
)

// Entry is one period of a repayment or deposit schedule.
type Entry struct {
	ID        uuid.UUID   `json:"id"`
	AccountID uuid.UUID   `json:"account_id"`
	Sequence  int         `json:"sequence"`
	DueDate   time.Time   `json:"due_date"`
	Principal money.Money `json:"principal"`
	Interest  money.Money `json:"interest"`
	Total     money.Money `json:"total"`
	Status    EntryStatus `json:"status"`
}

// LoanTerms describes the loan a schedule is generated for. EndDate is
// optional; when absent the horizon defaults to twelve months past the
// start date and TermMonths drives the entry count.
type LoanTerms struct {
	Principal     money.Money
	AnnualRatePct decimal.Decimal
	TermMonths    int
	StartDate     time.Time
	EndDate       *time.Time
	Method        finance.RepaymentMethod
}

// periods resolves the entry count from the terms: explicit term months
// win, otherwise the count is derived from the date range (end inclusive).
func (t LoanTerms) periods() (int, error) {
	n := t.TermMonths
	if n <= 0 {
		end := t.StartDate.AddDate(0, defaultHorizonMonths, 0)
		if t.EndDate != nil {
			end = *t.EndDate
		}
		if end.Before(t.StartDate) {
			return 0, ErrEndBeforeStart
		}
		n = monthsBetween(t.StartDate, end) + 1
	}
	if n > MaxEntries {
		return 0, ErrTermTooLong
	}
	return n, nil
}

func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// Generate produces the repayment schedule for the given terms, dispatching
// on the repayment method.
func Generate(terms LoanTerms) ([]Entry, error) {
	if !terms.Principal.IsPositive() {
		return nil, ErrInvalidPrincipal
	}
	if terms.AnnualRatePct.IsNegative() {
		return nil, finance.ErrNegativeRate
	}
	n, err := terms.periods()
	if err != nil {
		return nil, err
	}

	switch terms.Method {
	case finance.MethodEqualPrincipal:
		return generateEqualPrincipal(terms, n), nil
	case finance.MethodBullet:
		return generateBullet(terms, n), nil
	default:
		return generateEqualInstallment(terms, n), nil
	}
}

// generateEqualInstallment computes the constant annuity payment once, then
// splits each period into interest on the remaining balance and principal.
// The final period sets principal to the remaining balance exactly instead
// of using the formula.
func generateEqualInstallment(terms LoanTerms, n int) []Entry {
	r := finance.MonthlyRate(terms.AnnualRatePct)
	payment, _ := finance.MonthlyPayment(terms.Principal, terms.AnnualRatePct, n, finance.MethodEqualInstallment)

	entries := make([]Entry, 0, n)
	remaining := terms.Principal
	for i := 0; i < n; i++ {
		interest := remaining.Mul(r).Rounded()
		var principal money.Money
		if i == n-1 {
			principal = remaining.Rounded()
		} else {
			principal, _ = payment.Rounded().Sub(interest)
		}
		remaining, _ = remaining.Sub(principal)
		entries = append(entries, newEntry(terms.StartDate, i, principal, interest))
	}
	return entries
}

// generateEqualPrincipal repays principal/n every period with interest on
// the declining balance, so totals strictly decrease.
func generateEqualPrincipal(terms LoanTerms, n int) []Entry {
	r := finance.MonthlyRate(terms.AnnualRatePct)
	share := terms.Principal.Div(decimal.NewFromInt(int64(n))).Rounded()

	entries := make([]Entry, 0, n)
	remaining := terms.Principal
	for i := 0; i < n; i++ {
		interest := remaining.Mul(r).Rounded()
		principal := share
		if i == n-1 {
			principal = remaining.Rounded()
		}
		remaining, _ = remaining.Sub(principal)
		entries = append(entries, newEntry(terms.StartDate, i, principal, interest))
	}
	return entries
}

// generateBullet pays interest only until the maturity period, which repays
// the full remaining balance plus its interest.
func generateBullet(terms LoanTerms, n int) []Entry {
	r := finance.MonthlyRate(terms.AnnualRatePct)

	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		interest := terms.Principal.Mul(r).Rounded()
		principal := money.Zero(terms.Principal.Currency())
		if i == n-1 {
			principal = terms.Principal.Rounded()
		}
		entries = append(entries, newEntry(terms.StartDate, i, principal, interest))
	}
	return entries
}

// GenerateFixedAmount produces equal deposit rows monthly from start
// through end inclusive, the shape used for savings contributions. The
// entry count is subject to the same MaxEntries cap.
func GenerateFixedAmount(start, end time.Time, amount money.Money) ([]Entry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if end.Before(start) {
		return nil, ErrEndBeforeStart
	}
	n := monthsBetween(start, end) + 1
	if n > MaxEntries {
		return nil, ErrTermTooLong
	}

	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, newEntry(start, i, amount.Rounded(), money.Zero(amount.Currency())))
	}
	return entries, nil
}

func newEntry(start time.Time, seq int, principal, interest money.Money) Entry {
	total, _ := principal.Add(interest)
	return Entry{
		ID:        uuid.New(),
		Sequence:  seq + 1,
		DueDate:   start.AddDate(0, seq, 0),
		Principal: principal,
		Interest:  interest,
		Total:     total,
		Status:    EntryStatusPending,
	}
}
