package handlers

import (
	"net/http"
	"strconv"
	"time"

	"tradewallet/internal/middleware"
	"tradewallet/internal/money"
	"tradewallet/internal/store"
)

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter := store.TransactionFilter{
		Type:       r.URL.Query().Get("type"),
		Status:     r.URL.Query().Get("status"),
		CurrencyID: r.URL.Query().Get("currency_id"),
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date")
			return
		}
		filter.From = &parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date")
			return
		}
		// Inclusive end of day.
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	limit, offset := paginationParams(r, 20, 100)
	transactions, err := h.transactions.ListByUser(r.Context(), userID, filter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list transactions")
		return
	}
	payload := make([]map[string]any, 0, len(transactions))
	for _, txn := range transactions {
		payload = append(payload, transactionResponse(txn))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": payload,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *Handler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencies.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list currencies")
		return
	}
	payload := make([]map[string]any, 0, len(currencies))
	for _, currency := range currencies {
		payload = append(payload, map[string]any{
			"id":               currency.ID,
			"symbol":           currency.Symbol,
			"name":             currency.Name,
			"fee":              currency.Fee.String(),
			"fee_type":         currency.FeeType,
			"min_trade_amount": money.FormatCrypto(currency.MinTradeAmount),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"currencies": payload})
}

func paginationParams(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
