package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"tradewallet/internal/store"

	"github.com/shopspring/decimal"
)

func TestListTransactionsParsesFilters(t *testing.T) {
	var gotFilter store.TransactionFilter
	handler := newTestHandler(handlerStubs{
		transactions: stubTransactionStore{
			listFn: func(_ context.Context, userID string, filter store.TransactionFilter, limit, offset int) ([]store.Transaction, error) {
				if userID != "user-1" || limit != 20 || offset != 0 {
					t.Fatalf("unexpected list args: %s %d %d", userID, limit, offset)
				}
				gotFilter = filter
				return []store.Transaction{{ID: "txn-1", Type: "buy", Status: "completed"}}, nil
			},
		},
	})

	rr := serveAuthed(handler.ListTransactions, authedRequest(t, http.MethodGet,
		"/transactions?type=buy&status=completed&currency_id=cur-btc&from=2025-01-01&to=2025-01-31", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if gotFilter.Type != "buy" || gotFilter.Status != "completed" || gotFilter.CurrencyID != "cur-btc" {
		t.Fatalf("unexpected filter: %#v", gotFilter)
	}
	if gotFilter.From == nil || !gotFilter.From.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from: %v", gotFilter.From)
	}
	if gotFilter.To == nil || gotFilter.To.Before(time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC)) {
		t.Fatalf("to must cover the whole day: %v", gotFilter.To)
	}
}

func TestListTransactionsRejectsBadDates(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		transactions: stubTransactionStore{
			listFn: func(context.Context, string, store.TransactionFilter, int, int) ([]store.Transaction, error) {
				t.Fatalf("store must not be called")
				return nil, nil
			},
		},
	})

	rr := serveAuthed(handler.ListTransactions, authedRequest(t, http.MethodGet, "/transactions?from=yesterday", ""))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestListTransactionsClampsPagination(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		transactions: stubTransactionStore{
			listFn: func(_ context.Context, _ string, _ store.TransactionFilter, limit, offset int) ([]store.Transaction, error) {
				// Out-of-range values fall back to the defaults.
				if limit != 20 || offset != 0 {
					t.Fatalf("unexpected pagination: %d %d", limit, offset)
				}
				return nil, nil
			},
		},
	})

	rr := serveAuthed(handler.ListTransactions, authedRequest(t, http.MethodGet, "/transactions?limit=5000&offset=-3", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestListCurrencies(t *testing.T) {
	handler := newTestHandler(handlerStubs{
		currencies: stubCurrencyStore{
			listFn: func(context.Context) ([]store.TradeCurrency, error) {
				return []store.TradeCurrency{
					{
						ID: "cur-btc", Symbol: "BTC", Name: "Bitcoin",
						Fee:            decimal.RequireFromString("1.5"),
						FeeType:        "percentage",
						MinTradeAmount: decimal.RequireFromString("0.0001"),
					},
				}, nil
			},
		},
	})

	rr := serveAuthed(handler.ListCurrencies, authedRequest(t, http.MethodGet, "/currencies", ""))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload map[string][]map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload["currencies"]) != 1 {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	currency := payload["currencies"][0]
	if currency["symbol"] != "BTC" || currency["fee_type"] != "percentage" || currency["min_trade_amount"] != "0.00010000" {
		t.Fatalf("unexpected currency payload: %#v", currency)
	}
}
