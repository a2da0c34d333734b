package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"tradewallet/internal/money"
	"tradewallet/internal/services"
	"tradewallet/internal/store"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps business errors onto stable HTTP codes. Anything
// unrecognised is reported generically; internals never leak.
func respondServiceError(w http.ResponseWriter, err error) {
	var belowMin *services.BelowMinimumTradeError
	var settlement *services.SettlementError
	switch {
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrTooManyDecimals):
		respondError(w, http.StatusBadRequest, "invalid_amount")
	case errors.As(err, &belowMin):
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":           "below_minimum_trade",
			"message":         belowMin.Error(),
			"minimum":         money.FormatCrypto(belowMin.MinCrypto),
			"minimum_in_fiat": money.FormatFiat(belowMin.MinFiat),
		})
	case errors.Is(err, services.ErrCurrencyNotFound):
		respondError(w, http.StatusNotFound, "currency_not_found")
	case errors.Is(err, services.ErrRateUnavailable):
		respondError(w, http.StatusServiceUnavailable, "rate_unavailable")
	case errors.Is(err, services.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, "insufficient_funds")
	case errors.Is(err, services.ErrInsufficientHolding):
		respondError(w, http.StatusBadRequest, "insufficient_holding")
	case errors.Is(err, services.ErrFeeExceedsProceeds):
		respondError(w, http.StatusBadRequest, "fee_exceeds_proceeds")
	case errors.Is(err, services.ErrDuplicateEntry):
		respondError(w, http.StatusConflict, "duplicate_request")
	case errors.As(err, &settlement):
		respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":     "settlement_failed",
			"reference": settlement.Code,
		})
	default:
		respondError(w, http.StatusInternalServerError, "operation_failed")
	}
}

func transactionResponse(txn store.Transaction) map[string]any {
	resp := map[string]any{
		"id":           txn.ID,
		"type":         txn.Type,
		"status":       txn.Status,
		"amount":       money.FormatFiat(txn.Amount),
		"fee":          money.FormatFiat(txn.Fee),
		"total_amount": money.FormatFiat(txn.TotalAmount),
		"reference":    txn.Reference,
		"created_at":   txn.CreatedAt,
	}
	if txn.TradeCurrencyID != nil {
		resp["trade_currency_id"] = *txn.TradeCurrencyID
	}
	if txn.FeeRate.Valid {
		resp["fee_rate"] = txn.FeeRate.Decimal.String()
	}
	if txn.FeeRateType != nil {
		resp["fee_rate_type"] = *txn.FeeRateType
	}
	if txn.ConversionRate.Valid {
		resp["conversion_rate"] = txn.ConversionRate.Decimal.String()
	}
	if txn.CryptoAmount.Valid {
		resp["crypto_amount"] = money.FormatCrypto(txn.CryptoAmount.Decimal)
	}
	return resp
}

func walletLogResponse(entry store.WalletLog) map[string]any {
	return map[string]any{
		"id":              entry.ID,
		"reference":       entry.Reference,
		"type":            entry.Type,
		"amount":          money.FormatFiat(entry.Amount),
		"initial_balance": money.FormatFiat(entry.InitialBalance),
		"final_balance":   money.FormatFiat(entry.FinalBalance),
		"created_at":      entry.CreatedAt,
	}
}
