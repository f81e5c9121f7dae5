package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a lower-case ISO 4217 currency code as used by Stripe and the storefront
type Currency string

const (
	EUR Currency = "eur"
	USD Currency = "usd"
	GBP Currency = "gbp"
	CHF Currency = "chf"
	JPY Currency = "jpy"
)

// DefaultCurrency is the store's default currency
const DefaultCurrency = EUR

// zeroDecimalCurrencies are charged in whole units by Stripe
var zeroDecimalCurrencies = map[Currency]bool{
	JPY:   true,
	"krw": true,
	"vnd": true,
	"clp": true,
}

// ParseCurrency normalizes and validates a currency code
func ParseCurrency(code string) (Currency, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("invalid currency code: %q", code)
	}
	return Currency(code), nil
}

// Upper returns the upper-case ISO form, e.g. "EUR"
func (c Currency) Upper() string {
	return strings.ToUpper(string(c))
}

// Exponent returns the number of minor-unit digits for the currency
func (c Currency) Exponent() int32 {
	if zeroDecimalCurrencies[c] {
		return 0
	}
	return 2
}

// Money is an immutable monetary amount in a single currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustMoney creates Money and panics on an empty currency. Intended for constants and tests.
func MustMoney(amount string, currency Currency) Money {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	m, err := NewMoney(d, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromMinor creates Money from an amount in minor units (cents)
func NewMoneyFromMinor(minor int64, currency Currency) Money {
	return Money{
		amount:   decimal.New(minor, -currency.Exponent()),
		currency: currency,
	}
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns the sum of both amounts. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// MultiplyByInt returns a new Money multiplied by an integer
func (m Money) MultiplyByInt(factor int64) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(factor)), currency: m.currency}
}

// MinorUnits returns the amount in the currency's smallest unit, rounded half-up
func (m Money) MinorUnits() int64 {
	return m.amount.Shift(m.currency.Exponent()).Round(0).IntPart()
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// GreaterThan reports whether m exceeds other. Currencies must match.
func (m Money) GreaterThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	return m.amount.GreaterThan(other.amount), nil
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.Exponent()), m.currency.Upper())
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency_code"`
	}{
		Amount:   m.amount.StringFixed(m.currency.Exponent()),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency_code"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	m.amount = amount
	m.currency = v.Currency
	return nil
}
