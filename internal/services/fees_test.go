package services

import (
	"testing"

	"tradewallet/internal/store"
)

func TestTradeFeePercentage(t *testing.T) {
	currency := store.TradeCurrency{Fee: mustDecimal(t, "1.5"), FeeType: FeeTypePercentage}
	fee := TradeFee(currency, mustDecimal(t, "10000"))
	if !fee.Equal(mustDecimal(t, "150")) {
		t.Fatalf("unexpected fee: %s", fee)
	}
}

func TestTradeFeePercentageRoundsToFiatScale(t *testing.T) {
	currency := store.TradeCurrency{Fee: mustDecimal(t, "1.5"), FeeType: FeeTypePercentage}
	// 99.99 * 1.5% = 1.49985, rounds half-up to 1.50.
	fee := TradeFee(currency, mustDecimal(t, "99.99"))
	if fee.StringFixed(2) != "1.50" {
		t.Fatalf("unexpected fee: %s", fee)
	}
}

func TestTradeFeeFixed(t *testing.T) {
	currency := store.TradeCurrency{Fee: mustDecimal(t, "100"), FeeType: FeeTypeFixed}
	fee := TradeFee(currency, mustDecimal(t, "25.00"))
	if !fee.Equal(mustDecimal(t, "100")) {
		t.Fatalf("unexpected fee: %s", fee)
	}
}

func TestTradeFeeUnknownTypeChargesNothing(t *testing.T) {
	currency := store.TradeCurrency{Fee: mustDecimal(t, "100"), FeeType: "tiered"}
	fee := TradeFee(currency, mustDecimal(t, "10000"))
	if !fee.IsZero() {
		t.Fatalf("unexpected fee: %s", fee)
	}
}
