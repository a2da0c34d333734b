package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"tradewallet/internal/middleware"
	"tradewallet/internal/money"
	"tradewallet/internal/services"
)

type tradeRequest struct {
	CurrencyID string `json:"currency_id"`
	Amount     string `json:"amount"`
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	h.applyTrade(w, r, h.trades.Buy)
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	h.applyTrade(w, r, h.trades.Sell)
}

func (h *Handler) applyTrade(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, req services.TradeRequest) (services.TradeResult, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.CurrencyID == "" {
		respondError(w, http.StatusBadRequest, "currency_id is required")
		return
	}
	amount, err := money.ParseAmount(req.Amount, money.CryptoPlaces)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	result, err := apply(r.Context(), services.TradeRequest{
		UserID:       userID,
		CurrencyID:   req.CurrencyID,
		CryptoAmount: amount,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transaction":     transactionResponse(result.Transaction),
		"wallet_log":      walletLogResponse(result.WalletLog),
		"wallet_balance":  money.FormatFiat(result.WalletBalance),
		"holding_balance": money.FormatCrypto(result.Holding.Balance),
	})
}

func (h *Handler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	holdings, err := h.holdings.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list holdings")
		return
	}
	payload := make([]map[string]any, 0, len(holdings))
	for _, holding := range holdings {
		payload = append(payload, map[string]any{
			"trade_currency_id": holding.TradeCurrencyID,
			"symbol":            holding.Symbol,
			"name":              holding.Name,
			"balance":           money.FormatCrypto(holding.Balance),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"holdings": payload})
}
