package services

import (
	"context"

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

type stubWalletStore struct {
	getByUserFn     func(ctx context.Context, userID string) (store.Wallet, error)
	getForUpdateFn  func(ctx context.Context, tx store.Getter, userID string) (store.Wallet, error)
	createFn        func(ctx context.Context, tx store.Execer, id, userID, currency string) error
	updateBalanceFn func(ctx context.Context, tx store.Execer, walletID string, balance decimal.Decimal) error
}

func (s stubWalletStore) GetByUser(ctx context.Context, userID string) (store.Wallet, error) {
	if s.getByUserFn == nil {
		return store.Wallet{}, nil
	}
	return s.getByUserFn(ctx, userID)
}

func (s stubWalletStore) GetForUpdate(ctx context.Context, tx store.Getter, userID string) (store.Wallet, error) {
	return s.getForUpdateFn(ctx, tx, userID)
}

func (s stubWalletStore) Create(ctx context.Context, tx store.Execer, id, userID, currency string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, userID, currency)
}

func (s stubWalletStore) UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance decimal.Decimal) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, walletID, balance)
}

type stubWalletLogStore struct {
	insertFn func(ctx context.Context, tx store.Execer, input store.WalletLogInput) error
	existsFn func(ctx context.Context, tx store.Getter, key string) (bool, error)
}

func (s stubWalletLogStore) Insert(ctx context.Context, tx store.Execer, input store.WalletLogInput) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, input)
}

func (s stubWalletLogStore) ExistsByIdempotencyKey(ctx context.Context, tx store.Getter, key string) (bool, error) {
	if s.existsFn == nil {
		return false, nil
	}
	return s.existsFn(ctx, tx, key)
}

type stubHoldingStore struct {
	getFn           func(ctx context.Context, userID, currencyID string) (store.CryptoHolding, error)
	getForUpdateFn  func(ctx context.Context, tx store.Getter, userID, currencyID string) (store.CryptoHolding, error)
	createFn        func(ctx context.Context, tx store.Execer, id, userID, currencyID string) error
	updateBalanceFn func(ctx context.Context, tx store.Execer, holdingID string, balance decimal.Decimal) error
}

func (s stubHoldingStore) GetByUserAndCurrency(ctx context.Context, userID, currencyID string) (store.CryptoHolding, error) {
	if s.getFn == nil {
		return store.CryptoHolding{}, nil
	}
	return s.getFn(ctx, userID, currencyID)
}

func (s stubHoldingStore) GetForUpdate(ctx context.Context, tx store.Getter, userID, currencyID string) (store.CryptoHolding, error) {
	return s.getForUpdateFn(ctx, tx, userID, currencyID)
}

func (s stubHoldingStore) Create(ctx context.Context, tx store.Execer, id, userID, currencyID string) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, userID, currencyID)
}

func (s stubHoldingStore) UpdateBalance(ctx context.Context, tx store.Execer, holdingID string, balance decimal.Decimal) error {
	if s.updateBalanceFn == nil {
		return nil
	}
	return s.updateBalanceFn(ctx, tx, holdingID, balance)
}

type stubTransactionStore struct {
	createFn     func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	transitionFn func(ctx context.Context, tx store.Execer, transactionID, fromStatus, toStatus string) (int64, error)
}

func (s stubTransactionStore) Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, input)
}

func (s stubTransactionStore) TransitionStatus(ctx context.Context, tx store.Execer, transactionID, fromStatus, toStatus string) (int64, error) {
	if s.transitionFn == nil {
		return 1, nil
	}
	return s.transitionFn(ctx, tx, transactionID, fromStatus, toStatus)
}

type stubCurrencyStore struct {
	getByIDFn func(ctx context.Context, currencyID string) (store.TradeCurrency, error)
}

func (s stubCurrencyStore) GetByID(ctx context.Context, currencyID string) (store.TradeCurrency, error) {
	return s.getByIDFn(ctx, currencyID)
}

type stubRateProvider struct {
	rateFn func(ctx context.Context, symbol string) (decimal.Decimal, error)
}

func (s stubRateProvider) Rate(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return s.rateFn(ctx, symbol)
}

type stubLedger struct {
	balanceFn func(ctx context.Context, userID string) (decimal.Decimal, error)
	applyFn   func(ctx context.Context, tx store.Tx, input EntryInput) (store.WalletLog, error)
}

func (s stubLedger) BalanceOf(ctx context.Context, userID string) (decimal.Decimal, error) {
	if s.balanceFn == nil {
		return decimal.Zero, nil
	}
	return s.balanceFn(ctx, userID)
}

func (s stubLedger) ApplyEntry(ctx context.Context, tx store.Tx, input EntryInput) (store.WalletLog, error) {
	if s.applyFn == nil {
		return store.WalletLog{}, nil
	}
	return s.applyFn(ctx, tx, input)
}

type stubHoldings struct {
	balanceFn func(ctx context.Context, userID, currencyID string) (decimal.Decimal, error)
	adjustFn  func(ctx context.Context, tx store.Tx, userID, currencyID string, delta decimal.Decimal) (store.CryptoHolding, error)
}

func (s stubHoldings) BalanceOf(ctx context.Context, userID, currencyID string) (decimal.Decimal, error) {
	if s.balanceFn == nil {
		return decimal.Zero, nil
	}
	return s.balanceFn(ctx, userID, currencyID)
}

func (s stubHoldings) Adjust(ctx context.Context, tx store.Tx, userID, currencyID string, delta decimal.Decimal) (store.CryptoHolding, error) {
	if s.adjustFn == nil {
		return store.CryptoHolding{}, nil
	}
	return s.adjustFn(ctx, tx, userID, currencyID, delta)
}

type stubRecorder struct {
	createFn     func(ctx context.Context, input RecordInput) (store.Transaction, error)
	completeFn   func(ctx context.Context, tx store.Execer, transactionID string) error
	markFailedFn func(ctx context.Context, transactionID string) error
}

func (s *stubRecorder) Create(ctx context.Context, input RecordInput) (store.Transaction, error) {
	if s.createFn == nil {
		return store.Transaction{ID: "txn-1", Reference: "ref-1", IdempotencyKey: "key-1", Status: StatusInitiated}, nil
	}
	return s.createFn(ctx, input)
}

func (s *stubRecorder) Complete(ctx context.Context, tx store.Execer, transactionID string) error {
	if s.completeFn == nil {
		return nil
	}
	return s.completeFn(ctx, tx, transactionID)
}

func (s *stubRecorder) MarkFailed(ctx context.Context, transactionID string) error {
	if s.markFailedFn == nil {
		return nil
	}
	return s.markFailedFn(ctx, transactionID)
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

type stubHub struct {
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ string, update websocket.BalanceUpdate) {
	s.calls = append(s.calls, update)
}

func mustDecimal(t interface{ Fatalf(string, ...any) }, value string) decimal.Decimal {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", value, err)
	}
	return amount
}
