package services

import (
	"context"
	"encoding/json"
	"errors"

	"tradewallet/internal/db"
	"tradewallet/internal/money"
	"tradewallet/internal/store"
	"tradewallet/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// FundingService handles pure fiat wallet movements: deposits and
// withdrawals. Same create-then-settle shape as trades, with no holdings
// and no fee.
type FundingService struct {
	txRunner     db.TxRunner
	recorder     Recorder
	ledger       Ledger
	audit        AuditStore
	hub          BalanceHub
	fiatCurrency string
}

func NewFundingService(txRunner db.TxRunner, recorder Recorder, ledger Ledger, audit AuditStore, hub BalanceHub, fiatCurrency string) *FundingService {
	return &FundingService{
		txRunner:     txRunner,
		recorder:     recorder,
		ledger:       ledger,
		audit:        audit,
		hub:          hub,
		fiatCurrency: fiatCurrency,
	}
}

type FundingRequest struct {
	UserID string
	Amount decimal.Decimal
}

type FundingResult struct {
	Transaction store.Transaction
	WalletLog   store.WalletLog
	Balance     decimal.Decimal
}

func (s *FundingService) Deposit(ctx context.Context, req FundingRequest) (FundingResult, error) {
	return s.apply(ctx, req, TypeDeposit, DirectionCredit)
}

func (s *FundingService) Withdraw(ctx context.Context, req FundingRequest) (FundingResult, error) {
	balance, err := s.ledger.BalanceOf(ctx, req.UserID)
	if err != nil {
		return FundingResult{}, err
	}
	if balance.LessThan(req.Amount) {
		return FundingResult{}, ErrInsufficientFunds
	}
	return s.apply(ctx, req, TypeWithdraw, DirectionDebit)
}

func (s *FundingService) apply(ctx context.Context, req FundingRequest, txType, direction string) (FundingResult, error) {
	if !req.Amount.IsPositive() {
		return FundingResult{}, ErrInvalidAmount
	}
	amount := money.RoundFiat(req.Amount)

	txn, err := s.recorder.Create(ctx, RecordInput{
		UserID: req.UserID,
		Type:   txType,
		Amount: amount,
	})
	if err != nil {
		return FundingResult{}, err
	}

	var walletLog store.WalletLog
	err = settle(ctx, s.txRunner, s.recorder, txn.ID, func(tx *sqlx.Tx) error {
		var err error
		walletLog, err = s.ledger.ApplyEntry(ctx, tx, EntryInput{
			UserID:         req.UserID,
			Amount:         amount,
			Direction:      direction,
			Reference:      txn.Reference,
			IdempotencyKey: txn.IdempotencyKey,
		})
		if err != nil {
			return err
		}
		data, _ := json.Marshal(map[string]string{"transaction_id": txn.ID})
		return s.audit.Log(ctx, tx, req.UserID, txType, "transaction", txn.ID, string(data))
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return FundingResult{}, ErrInsufficientFunds
		}
		return FundingResult{}, classifySettlementErr(txType, err)
	}

	txn.Status = StatusCompleted
	s.hub.BroadcastBalance(req.UserID, websocket.BalanceUpdate{
		Kind:     "wallet",
		Currency: s.fiatCurrency,
		Balance:  money.FormatFiat(walletLog.FinalBalance),
	})
	return FundingResult{
		Transaction: txn,
		WalletLog:   walletLog,
		Balance:     walletLog.FinalBalance,
	}, nil
}
