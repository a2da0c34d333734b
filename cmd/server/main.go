package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tradewallet/internal/config"
	"tradewallet/internal/db"
	"tradewallet/internal/handlers"
	"tradewallet/internal/rates"
	"tradewallet/internal/services"
	"tradewallet/internal/store"
	"tradewallet/internal/websocket"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer database.Close()

	users := store.NewUserStore(database)
	wallets := store.NewWalletStore(database)
	walletLogs := store.NewWalletLogStore(database)
	holdings := store.NewHoldingStore(database)
	currencies := store.NewCurrencyStore(database)
	transactions := store.NewTransactionStore(database)
	audit := store.NewAuditStore(database)
	txRunner := db.NewTxRunner(database)
	hub := websocket.NewHub()

	rateClient := rates.NewClient(cfg.RateBaseURL, cfg.FiatCurrency, cfg.RateTimeout)
	ledger := services.NewLedgerService(wallets, walletLogs, cfg.FiatCurrency)
	holdingService := services.NewHoldingService(holdings)
	recorder := services.NewTransactionRecorder(transactions, database)
	trades := services.NewTradeService(txRunner, currencies, rateClient, ledger, holdingService, recorder, audit, hub, cfg.FiatCurrency)
	funding := services.NewFundingService(txRunner, recorder, ledger, audit, hub, cfg.FiatCurrency)

	handler := handlers.New(txRunner, cfg, users, currencies, walletLogs, holdings, transactions, ledger, trades, funding, audit, hub)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("tradewallet API listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
