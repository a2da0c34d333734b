package handlers

import (
	"context"

	"tradewallet/internal/services"
	"tradewallet/internal/store"

	"github.com/shopspring/decimal"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, name, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, userID string) (store.User, error)
}

type CurrencyStore interface {
	List(ctx context.Context) ([]store.TradeCurrency, error)
}

type WalletLogStore interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]store.WalletLog, error)
}

type HoldingStore interface {
	ListByUser(ctx context.Context, userID string) ([]store.HoldingWithCurrency, error)
}

type TransactionStore interface {
	ListByUser(ctx context.Context, userID string, filter store.TransactionFilter, limit, offset int) ([]store.Transaction, error)
}

type Ledger interface {
	BalanceOf(ctx context.Context, userID string) (decimal.Decimal, error)
}

type TradeService interface {
	Buy(ctx context.Context, req services.TradeRequest) (services.TradeResult, error)
	Sell(ctx context.Context, req services.TradeRequest) (services.TradeResult, error)
}

type FundingService interface {
	Deposit(ctx context.Context, req services.FundingRequest) (services.FundingResult, error)
	Withdraw(ctx context.Context, req services.FundingRequest) (services.FundingResult, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}
