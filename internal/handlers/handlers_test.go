package handlers

import (
	"context"
	"time"

	"tradewallet/internal/config"
	"tradewallet/internal/services"
	"tradewallet/internal/store"
	"tradewallet/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type stubUserStore struct {
	createFn     func(ctx context.Context, tx store.Execer, id, name, email, passwordHash string) error
	getByEmailFn func(ctx context.Context, email string) (store.User, error)
	getByIDFn    func(ctx context.Context, userID string) (store.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, name, email, passwordHash string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, name, email, passwordHash)
}

func (s stubUserStore) GetByEmail(ctx context.Context, email string) (store.User, error) {
	return s.getByEmailFn(ctx, email)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (store.User, error) {
	return s.getByIDFn(ctx, userID)
}

type stubCurrencyStore struct {
	listFn func(ctx context.Context) ([]store.TradeCurrency, error)
}

func (s stubCurrencyStore) List(ctx context.Context) ([]store.TradeCurrency, error) {
	return s.listFn(ctx)
}

type stubWalletLogStore struct {
	listFn func(ctx context.Context, userID string, limit, offset int) ([]store.WalletLog, error)
}

func (s stubWalletLogStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]store.WalletLog, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, limit, offset)
}

type stubHoldingStore struct {
	listFn func(ctx context.Context, userID string) ([]store.HoldingWithCurrency, error)
}

func (s stubHoldingStore) ListByUser(ctx context.Context, userID string) ([]store.HoldingWithCurrency, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID)
}

type stubTransactionStore struct {
	listFn func(ctx context.Context, userID string, filter store.TransactionFilter, limit, offset int) ([]store.Transaction, error)
}

func (s stubTransactionStore) ListByUser(ctx context.Context, userID string, filter store.TransactionFilter, limit, offset int) ([]store.Transaction, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, userID, filter, limit, offset)
}

type stubLedger struct {
	balanceFn func(ctx context.Context, userID string) (decimal.Decimal, error)
}

func (s stubLedger) BalanceOf(ctx context.Context, userID string) (decimal.Decimal, error) {
	if s.balanceFn == nil {
		return decimal.Zero, nil
	}
	return s.balanceFn(ctx, userID)
}

type stubTradeService struct {
	buyFn  func(ctx context.Context, req services.TradeRequest) (services.TradeResult, error)
	sellFn func(ctx context.Context, req services.TradeRequest) (services.TradeResult, error)
}

func (s stubTradeService) Buy(ctx context.Context, req services.TradeRequest) (services.TradeResult, error) {
	return s.buyFn(ctx, req)
}

func (s stubTradeService) Sell(ctx context.Context, req services.TradeRequest) (services.TradeResult, error) {
	return s.sellFn(ctx, req)
}

type stubFundingService struct {
	depositFn  func(ctx context.Context, req services.FundingRequest) (services.FundingResult, error)
	withdrawFn func(ctx context.Context, req services.FundingRequest) (services.FundingResult, error)
}

func (s stubFundingService) Deposit(ctx context.Context, req services.FundingRequest) (services.FundingResult, error) {
	return s.depositFn(ctx, req)
}

func (s stubFundingService) Withdraw(ctx context.Context, req services.FundingRequest) (services.FundingResult, error) {
	return s.withdrawFn(ctx, req)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type handlerStubs struct {
	txRunner     fakeTxRunner
	users        stubUserStore
	currencies   stubCurrencyStore
	walletLogs   stubWalletLogStore
	holdings     stubHoldingStore
	transactions stubTransactionStore
	ledger       stubLedger
	trades       stubTradeService
	funding      stubFundingService
	audit        stubAuditStore
}

func newTestHandler(stubs handlerStubs) *Handler {
	cfg := config.Config{
		JWTSecret:    "secret",
		TokenTTL:     time.Hour,
		FiatCurrency: "NGN",
	}
	return New(stubs.txRunner, cfg, stubs.users, stubs.currencies, stubs.walletLogs,
		stubs.holdings, stubs.transactions, stubs.ledger, stubs.trades, stubs.funding,
		stubs.audit, websocket.NewHub())
}
