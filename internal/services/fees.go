package services

import (
	"tradewallet/internal/money"
	"tradewallet/internal/store"

	"github.com/shopspring/decimal"
)

const (
	FeeTypePercentage = "percentage"
	FeeTypeFixed      = "fixed"
)

var oneHundred = decimal.NewFromInt(100)

// TradeFee computes the fee for a fiat notional under the currency's fee
// policy. Pure; unknown fee types charge nothing rather than guessing.
func TradeFee(currency store.TradeCurrency, notional decimal.Decimal) decimal.Decimal {
	switch currency.FeeType {
	case FeeTypePercentage:
		return money.RoundFiat(notional.Mul(currency.Fee).Div(oneHundred))
	case FeeTypeFixed:
		return money.RoundFiat(currency.Fee)
	default:
		return decimal.Zero
	}
}
