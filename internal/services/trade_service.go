package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"tradewallet/internal/db"
	"tradewallet/internal/money"
	"tradewallet/internal/store"
	"tradewallet/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrCurrencyNotFound   = errors.New("trade currency not found")
	ErrRateUnavailable    = errors.New("exchange rate unavailable")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrFeeExceedsProceeds = errors.New("fee exceeds sale proceeds")
)

// BelowMinimumTradeError rejects trades under the currency's minimum,
// reporting the minimum in both native and fiat terms.
type BelowMinimumTradeError struct {
	Symbol    string
	MinCrypto decimal.Decimal
	MinFiat   decimal.Decimal
}

func (e *BelowMinimumTradeError) Error() string {
	return fmt.Sprintf("minimum trade for %s is %s (%s in fiat)",
		e.Symbol, money.FormatCrypto(e.MinCrypto), money.FormatFiat(e.MinFiat))
}

type CurrencyStore interface {
	GetByID(ctx context.Context, currencyID string) (store.TradeCurrency, error)
}

type RateProvider interface {
	Rate(ctx context.Context, symbol string) (decimal.Decimal, error)
}

type Ledger interface {
	BalanceOf(ctx context.Context, userID string) (decimal.Decimal, error)
	ApplyEntry(ctx context.Context, tx store.Tx, input EntryInput) (store.WalletLog, error)
}

type Holdings interface {
	BalanceOf(ctx context.Context, userID, currencyID string) (decimal.Decimal, error)
	Adjust(ctx context.Context, tx store.Tx, userID, currencyID string, delta decimal.Decimal) (store.CryptoHolding, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type BalanceHub interface {
	BroadcastBalance(userID string, update websocket.BalanceUpdate)
}

// TradeService drives the buy and sell sagas. It owns no storage: it
// sequences the currency lookup, the external quote, the fee math and the
// atomic-unit boundary around ledger, holdings and recorder.
type TradeService struct {
	txRunner     db.TxRunner
	currencies   CurrencyStore
	rates        RateProvider
	ledger       Ledger
	holdings     Holdings
	recorder     Recorder
	audit        AuditStore
	hub          BalanceHub
	fiatCurrency string
}

func NewTradeService(txRunner db.TxRunner, currencies CurrencyStore, rates RateProvider, ledger Ledger, holdings Holdings, recorder Recorder, audit AuditStore, hub BalanceHub, fiatCurrency string) *TradeService {
	return &TradeService{
		txRunner:     txRunner,
		currencies:   currencies,
		rates:        rates,
		ledger:       ledger,
		holdings:     holdings,
		recorder:     recorder,
		audit:        audit,
		hub:          hub,
		fiatCurrency: fiatCurrency,
	}
}

type TradeRequest struct {
	UserID       string
	CurrencyID   string
	CryptoAmount decimal.Decimal
}

type TradeResult struct {
	Transaction   store.Transaction
	WalletLog     store.WalletLog
	Holding       store.CryptoHolding
	WalletBalance decimal.Decimal
}

// tradePlan carries everything computed before any storage mutation.
type tradePlan struct {
	currency     store.TradeCurrency
	rate         decimal.Decimal
	cryptoAmount decimal.Decimal
	notional     decimal.Decimal
	fee          decimal.Decimal
}

func (s *TradeService) Buy(ctx context.Context, req TradeRequest) (TradeResult, error) {
	plan, err := s.prepare(ctx, req)
	if err != nil {
		return TradeResult{}, err
	}
	totalDebit := plan.notional.Add(plan.fee)

	balance, err := s.ledger.BalanceOf(ctx, req.UserID)
	if err != nil {
		return TradeResult{}, err
	}
	if balance.LessThan(totalDebit) {
		return TradeResult{}, ErrInsufficientFunds
	}

	txn, err := s.recorder.Create(ctx, RecordInput{
		UserID:         req.UserID,
		Type:           TypeBuy,
		Amount:         plan.notional,
		Currency:       &plan.currency,
		Fee:            plan.fee,
		ConversionRate: plan.rate,
		CryptoAmount:   plan.cryptoAmount,
	})
	if err != nil {
		return TradeResult{}, err
	}

	var holding store.CryptoHolding
	var walletLog store.WalletLog
	err = settle(ctx, s.txRunner, s.recorder, txn.ID, func(tx *sqlx.Tx) error {
		var err error
		holding, err = s.holdings.Adjust(ctx, tx, req.UserID, plan.currency.ID, plan.cryptoAmount)
		if err != nil {
			return err
		}
		walletLog, err = s.ledger.ApplyEntry(ctx, tx, EntryInput{
			UserID:         req.UserID,
			Amount:         totalDebit,
			Direction:      DirectionDebit,
			Reference:      txn.Reference,
			IdempotencyKey: txn.IdempotencyKey,
		})
		if err != nil {
			return err
		}
		return s.logAudit(ctx, tx, req.UserID, "trade_buy", txn.ID, plan.currency.Symbol)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return TradeResult{}, ErrInsufficientFunds
		}
		return TradeResult{}, classifySettlementErr("buy", err)
	}

	txn.Status = StatusCompleted
	s.broadcast(req.UserID, plan.currency.Symbol, walletLog.FinalBalance, holding.Balance)
	return TradeResult{
		Transaction:   txn,
		WalletLog:     walletLog,
		Holding:       holding,
		WalletBalance: walletLog.FinalBalance,
	}, nil
}

func (s *TradeService) Sell(ctx context.Context, req TradeRequest) (TradeResult, error) {
	plan, err := s.prepare(ctx, req)
	if err != nil {
		return TradeResult{}, err
	}
	proceeds := plan.notional.Sub(plan.fee)
	if !proceeds.IsPositive() {
		return TradeResult{}, ErrFeeExceedsProceeds
	}

	holdingBalance, err := s.holdings.BalanceOf(ctx, req.UserID, plan.currency.ID)
	if err != nil {
		return TradeResult{}, err
	}
	if holdingBalance.LessThan(plan.cryptoAmount) {
		return TradeResult{}, ErrInsufficientHolding
	}

	txn, err := s.recorder.Create(ctx, RecordInput{
		UserID:         req.UserID,
		Type:           TypeSell,
		Amount:         plan.notional,
		Currency:       &plan.currency,
		Fee:            plan.fee,
		ConversionRate: plan.rate,
		CryptoAmount:   plan.cryptoAmount,
	})
	if err != nil {
		return TradeResult{}, err
	}

	var holding store.CryptoHolding
	var walletLog store.WalletLog
	err = settle(ctx, s.txRunner, s.recorder, txn.ID, func(tx *sqlx.Tx) error {
		var err error
		holding, err = s.holdings.Adjust(ctx, tx, req.UserID, plan.currency.ID, plan.cryptoAmount.Neg())
		if err != nil {
			return err
		}
		walletLog, err = s.ledger.ApplyEntry(ctx, tx, EntryInput{
			UserID:         req.UserID,
			Amount:         proceeds,
			Direction:      DirectionCredit,
			Reference:      txn.Reference,
			IdempotencyKey: txn.IdempotencyKey,
		})
		if err != nil {
			return err
		}
		return s.logAudit(ctx, tx, req.UserID, "trade_sell", txn.ID, plan.currency.Symbol)
	})
	if err != nil {
		return TradeResult{}, classifySettlementErr("sell", err)
	}

	txn.Status = StatusCompleted
	s.broadcast(req.UserID, plan.currency.Symbol, walletLog.FinalBalance, holding.Balance)
	return TradeResult{
		Transaction:   txn,
		WalletLog:     walletLog,
		Holding:       holding,
		WalletBalance: walletLog.FinalBalance,
	}, nil
}

// prepare runs the precondition chain shared by buy and sell: currency
// lookup, external quote (before any lock is taken), rounding, minimum-trade
// check and fee. No storage has been mutated when it returns.
func (s *TradeService) prepare(ctx context.Context, req TradeRequest) (tradePlan, error) {
	if !req.CryptoAmount.IsPositive() {
		return tradePlan{}, ErrInvalidAmount
	}
	currency, err := s.currencies.GetByID(ctx, req.CurrencyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tradePlan{}, ErrCurrencyNotFound
		}
		return tradePlan{}, err
	}
	rate, err := s.rates.Rate(ctx, currency.Symbol)
	if err != nil {
		return tradePlan{}, ErrRateUnavailable
	}

	cryptoAmount := money.RoundCrypto(req.CryptoAmount)
	notional := money.RoundFiat(cryptoAmount.Mul(rate))
	if cryptoAmount.LessThan(currency.MinTradeAmount) {
		return tradePlan{}, &BelowMinimumTradeError{
			Symbol:    currency.Symbol,
			MinCrypto: currency.MinTradeAmount,
			MinFiat:   money.RoundFiat(currency.MinTradeAmount.Mul(rate)),
		}
	}
	return tradePlan{
		currency:     currency,
		rate:         rate,
		cryptoAmount: cryptoAmount,
		notional:     notional,
		fee:          TradeFee(currency, notional),
	}, nil
}

func (s *TradeService) logAudit(ctx context.Context, tx store.Execer, userID, action, transactionID, symbol string) error {
	data, _ := json.Marshal(map[string]string{
		"transaction_id": transactionID,
		"symbol":         symbol,
	})
	return s.audit.Log(ctx, tx, userID, action, "transaction", transactionID, string(data))
}

func (s *TradeService) broadcast(userID, symbol string, walletBalance, holdingBalance decimal.Decimal) {
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Kind:     "wallet",
		Currency: s.fiatCurrency,
		Balance:  money.FormatFiat(walletBalance),
	})
	s.hub.BroadcastBalance(userID, websocket.BalanceUpdate{
		Kind:     "holding",
		Currency: symbol,
		Balance:  money.FormatCrypto(holdingBalance),
	})
}
