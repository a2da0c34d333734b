package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"tradewallet/internal/auth"
	"tradewallet/internal/middleware"
	"tradewallet/internal/money"
	"tradewallet/internal/services"
	"tradewallet/internal/websocket"
)

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	balance, err := h.ledger.BalanceOf(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to read wallet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"currency": h.cfg.FiatCurrency,
		"balance":  money.FormatFiat(balance),
	})
}

func (h *Handler) ListWalletLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, offset := paginationParams(r, 20, 100)
	logs, err := h.walletLogs.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list wallet logs")
		return
	}
	payload := make([]map[string]any, 0, len(logs))
	for _, entry := range logs {
		payload = append(payload, walletLogResponse(entry))
	}
	respondJSON(w, http.StatusOK, map[string]any{"logs": payload})
}

type fundingRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.applyFunding(w, r, h.funding.Deposit)
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.applyFunding(w, r, h.funding.Withdraw)
}

func (h *Handler) applyFunding(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, req services.FundingRequest) (services.FundingResult, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req fundingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := money.ParseAmount(req.Amount, money.FiatPlaces)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	result, err := apply(r.Context(), services.FundingRequest{UserID: userID, Amount: amount})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"transaction": transactionResponse(result.Transaction),
		"wallet_log":  walletLogResponse(result.WalletLog),
		"balance":     money.FormatFiat(result.Balance),
	})
}

// WSBalances authenticates via the token query parameter because browsers
// cannot set headers on websocket upgrades.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.UserID)
}
