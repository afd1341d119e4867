package types

import "github.com/shopspring/decimal"

// Money is an amount in a single currency as the commerce backend reports it.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Add returns the sum of two amounts. The receiver's currency wins when the
// receiver is non-empty; callers are expected to only add within one checkout.
func (m Money) Add(other Money) Money {
	currency := m.Currency
	if currency == "" {
		currency = other.Currency
	}
	return Money{
		Amount:   m.Amount.Add(other.Amount),
		Currency: currency,
	}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}
