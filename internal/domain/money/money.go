// Package money provides an exact-decimal monetary value object.
// All balance and schedule arithmetic in the system goes through this type;
// rounding to the currency minor unit happens only at settlement boundaries
// via Rounded, never mid-computation.
package money

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch indicates an operation across two different currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Currency is an ISO 4217 currency code with its minor-unit exponent.
type Currency struct {
	code     string
	exponent int32
}

// minorUnits maps currency codes to their minor-unit exponent. Codes not
// listed use two fractional digits.
var minorUnits = map[string]int32{
	"KRW": 0,
	"JPY": 0,
	"VND": 0,
}

// NewCurrency creates a Currency after validating the code is exactly
// 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if len(code) != 3 {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be a 3-letter code", code)
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return Currency{}, fmt.Errorf("invalid currency code %q: must be uppercase letters", code)
		}
	}
	exp := int32(2)
	if e, ok := minorUnits[code]; ok {
		exp = e
	}
	return Currency{code: code, exponent: exp}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for
// package-level variable initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code.
func (c Currency) Code() string { return c.code }

// Exponent returns the number of fractional digits in the minor unit.
func (c Currency) Exponent() int32 { return c.exponent }

func (c Currency) String() string { return c.code }

// Common currencies.
var (
	KRW = MustCurrency("KRW")
	USD = MustCurrency("USD")
)

// Money is an immutable monetary amount with currency. Fields are
// unexported to enforce immutability.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates a Money value from a decimal amount and currency.
func New(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// NewFromInt creates a Money value from whole currency units.
func NewFromInt(amount int64, currency Currency) Money {
	return Money{amount: decimal.NewFromInt(amount), currency: currency}
}

// NewFromString parses an amount string and currency code into a Money value.
func NewFromString(amount string, currency string) (Money, error) {
	cur, err := NewCurrency(currency)
	if err != nil {
		return Money{}, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return Money{amount: d, currency: cur}, nil
}

// Zero returns a Money value of zero in the given currency.
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency.
func (m Money) Currency() Currency { return m.currency }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Add returns the sum of m and other. Fails if the currencies differ.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot add %s to %s", ErrCurrencyMismatch, other.currency, m.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns the difference of m minus other. Fails if the currencies differ.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: cannot subtract %s from %s", ErrCurrencyMismatch, other.currency, m.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Mul returns m multiplied by the given factor.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Div returns m divided by the given divisor.
func (m Money) Div(divisor decimal.Decimal) Money {
	return Money{amount: m.amount.Div(divisor), currency: m.currency}
}

// Neg returns m with the sign of the amount flipped.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs returns m with the absolute value of the amount.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Cmp compares m against other. Fails if the currencies differ.
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("%w: cannot compare %s with %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return m.amount.Cmp(other.amount), nil
}

// GreaterThanOrEqual reports m >= other for same-currency values.
// A currency mismatch reports false.
func (m Money) GreaterThanOrEqual(other Money) bool {
	c, err := m.Cmp(other)
	return err == nil && c >= 0
}

// LessThan reports m < other for same-currency values.
// A currency mismatch reports false.
func (m Money) LessThan(other Money) bool {
	c, err := m.Cmp(other)
	return err == nil && c < 0
}

// Equal reports whether both the amount and currency are equal.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Rounded returns m rounded half-up to the currency minor unit. This is the
// only place rounding is applied; intermediate results keep full precision.
func (m Money) Rounded() Money {
	return Money{amount: m.amount.Round(m.currency.exponent), currency: m.currency}
}

// moneyJSON is the wire form of Money. The amount travels as a decimal
// string so no JSON layer coerces it to float.
type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount.String(), Currency: m.currency.code})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Money) UnmarshalJSON(data []byte) error {
	var w moneyJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	parsed, err := NewFromString(w.Amount, w.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// String formats the Money value as "<amount> <currency>".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.exponent), m.currency.code)
}
