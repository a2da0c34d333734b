package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	// FiatPlaces is the scale of every Naira amount written to storage.
	FiatPlaces = 2
	// CryptoPlaces is the scale of every asset-native amount written to storage.
	CryptoPlaces = 8
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// ParseAmount parses a strictly positive decimal amount with at most
// maxPlaces fractional digits.
func ParseAmount(input string, maxPlaces int32) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(input)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.Exponent() < -maxPlaces {
		return decimal.Zero, ErrTooManyDecimals
	}
	return amount, nil
}

// RoundFiat rounds half-up to the fiat scale.
func RoundFiat(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(FiatPlaces)
}

// RoundCrypto rounds half-up to the asset-native scale.
func RoundCrypto(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CryptoPlaces)
}

func FormatFiat(amount decimal.Decimal) string {
	return amount.StringFixed(FiatPlaces)
}

func FormatCrypto(amount decimal.Decimal) string {
	return amount.StringFixed(CryptoPlaces)
}
