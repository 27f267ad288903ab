package domain

import "github.com/shopspring/decimal"

// Money is an amount as reported by the commerce gateway. Amounts travel as
// decimal strings ("19.99") and are never converted through float64.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode,omitempty"`
}

// Mul returns the amount multiplied by n in the same currency.
func (m Money) Mul(n int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(n))), CurrencyCode: m.CurrencyCode}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}
