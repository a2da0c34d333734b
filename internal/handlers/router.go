package handlers

import (
	"net/http"

	"tradewallet/internal/config"
	"tradewallet/internal/db"
	"tradewallet/internal/middleware"
	"tradewallet/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	txRunner     db.TxRunner
	cfg          config.Config
	users        UserStore
	currencies   CurrencyStore
	walletLogs   WalletLogStore
	holdings     HoldingStore
	transactions TransactionStore
	ledger       Ledger
	trades       TradeService
	funding      FundingService
	audit        AuditStore
	hub          *websocket.Hub
}

func New(txRunner db.TxRunner, cfg config.Config, users UserStore, currencies CurrencyStore, walletLogs WalletLogStore, holdings HoldingStore, transactions TransactionStore, ledger Ledger, trades TradeService, funding FundingService, audit AuditStore, hub *websocket.Hub) *Handler {
	return &Handler{
		txRunner:     txRunner,
		cfg:          cfg,
		users:        users,
		currencies:   currencies,
		walletLogs:   walletLogs,
		holdings:     holdings,
		transactions: transactions,
		ledger:       ledger,
		trades:       trades,
		funding:      funding,
		audit:        audit,
		hub:          hub,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{h.cfg.AllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(middleware.Auth(h.cfg.JWTSecret)).Get("/me", h.Me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.cfg.JWTSecret))
		r.Get("/wallet", h.GetWallet)
		r.Get("/wallet/logs", h.ListWalletLogs)
		r.Post("/wallet/deposit", h.Deposit)
		r.Post("/wallet/withdraw", h.Withdraw)
		r.Post("/trade/buy", h.Buy)
		r.Post("/trade/sell", h.Sell)
		r.Get("/transactions", h.ListTransactions)
		r.Get("/currencies", h.ListCurrencies)
		r.Get("/holdings", h.ListHoldings)
	})

	router.Get("/ws/balances", h.WSBalances)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}
