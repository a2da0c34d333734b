package services

import (
	"context"
	"database/sql"
	"errors"

	"tradewallet/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrDuplicateEntry      = errors.New("ledger entry already applied")
	ErrInvalidEntry        = errors.New("invalid ledger entry")
)

type WalletStore interface {
	GetByUser(ctx context.Context, userID string) (store.Wallet, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (store.Wallet, error)
	Create(ctx context.Context, tx store.Execer, id, userID, currency string) error
	UpdateBalance(ctx context.Context, tx store.Execer, walletID string, balance decimal.Decimal) error
}

type WalletLogStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.WalletLogInput) error
	ExistsByIdempotencyKey(ctx context.Context, tx store.Getter, key string) (bool, error)
}

// LedgerService is the only path that changes a wallet balance. Every
// mutation happens under the wallet row lock and appends a wallet log row in
// the same transaction.
type LedgerService struct {
	wallets      WalletStore
	logs         WalletLogStore
	fiatCurrency string
}

func NewLedgerService(wallets WalletStore, logs WalletLogStore, fiatCurrency string) *LedgerService {
	return &LedgerService{wallets: wallets, logs: logs, fiatCurrency: fiatCurrency}
}

type EntryInput struct {
	UserID         string
	Amount         decimal.Decimal
	Direction      string
	Reference      string
	IdempotencyKey string
}

// BalanceOf reads the wallet balance without holding any lock. A user
// without a wallet has a zero balance.
func (s *LedgerService) BalanceOf(ctx context.Context, userID string) (decimal.Decimal, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return wallet.Balance, nil
}

// ApplyEntry mutates the wallet balance and appends the log row inside the
// caller's transaction. The wallet row stays locked until that transaction
// ends, so concurrent entries for the same user are totally ordered.
func (s *LedgerService) ApplyEntry(ctx context.Context, tx store.Tx, input EntryInput) (store.WalletLog, error) {
	if !input.Amount.IsPositive() {
		return store.WalletLog{}, ErrInvalidEntry
	}
	if input.Direction != DirectionCredit && input.Direction != DirectionDebit {
		return store.WalletLog{}, ErrInvalidEntry
	}

	wallet, err := s.wallets.GetForUpdate(ctx, tx, input.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.wallets.Create(ctx, tx, uuid.NewString(), input.UserID, s.fiatCurrency); err != nil {
			return store.WalletLog{}, err
		}
		// Re-acquire so the lock covers the row the balance is read from.
		wallet, err = s.wallets.GetForUpdate(ctx, tx, input.UserID)
	}
	if err != nil {
		return store.WalletLog{}, err
	}

	exists, err := s.logs.ExistsByIdempotencyKey(ctx, tx, input.IdempotencyKey)
	if err != nil {
		return store.WalletLog{}, err
	}
	if exists {
		return store.WalletLog{}, ErrDuplicateEntry
	}

	initial := wallet.Balance
	var final decimal.Decimal
	if input.Direction == DirectionDebit {
		if input.Amount.GreaterThan(initial) {
			return store.WalletLog{}, ErrInsufficientBalance
		}
		final = initial.Sub(input.Amount)
	} else {
		final = initial.Add(input.Amount)
	}

	if err := s.wallets.UpdateBalance(ctx, tx, wallet.ID, final); err != nil {
		return store.WalletLog{}, err
	}
	logInput := store.WalletLogInput{
		ID:             uuid.NewString(),
		UserID:         input.UserID,
		Reference:      input.Reference,
		Type:           input.Direction,
		Amount:         input.Amount,
		InitialBalance: initial,
		FinalBalance:   final,
		IdempotencyKey: input.IdempotencyKey,
	}
	if err := s.logs.Insert(ctx, tx, logInput); err != nil {
		if isUniqueViolation(err) {
			return store.WalletLog{}, ErrDuplicateEntry
		}
		return store.WalletLog{}, err
	}
	return store.WalletLog{
		ID:             logInput.ID,
		UserID:         logInput.UserID,
		Reference:      logInput.Reference,
		Type:           logInput.Type,
		Amount:         logInput.Amount,
		InitialBalance: logInput.InitialBalance,
		FinalBalance:   logInput.FinalBalance,
		IdempotencyKey: logInput.IdempotencyKey,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
