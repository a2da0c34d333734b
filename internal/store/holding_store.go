package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type HoldingStore struct {
	db DB
}

type CryptoHolding struct {
	ID              string          `db:"id"`
	UserID          string          `db:"user_id"`
	TradeCurrencyID string          `db:"trade_currency_id"`
	Balance         decimal.Decimal `db:"balance"`
	CreatedAt       time.Time       `db:"created_at"`
}

type HoldingWithCurrency struct {
	ID              string          `db:"id"`
	TradeCurrencyID string          `db:"trade_currency_id"`
	Symbol          string          `db:"symbol"`
	Name            string          `db:"name"`
	Balance         decimal.Decimal `db:"balance"`
}

func NewHoldingStore(db DB) *HoldingStore {
	return &HoldingStore{db: db}
}

func (s *HoldingStore) GetByUserAndCurrency(ctx context.Context, userID, currencyID string) (CryptoHolding, error) {
	var row CryptoHolding
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, trade_currency_id, balance, created_at
		FROM crypto_holdings
		WHERE user_id = $1 AND trade_currency_id = $2
	`, userID, currencyID)
	if err != nil {
		return CryptoHolding{}, err
	}
	return row, nil
}

// GetForUpdate locks the (user, asset) holding row so concurrent sells of the
// same asset are totally ordered.
func (s *HoldingStore) GetForUpdate(ctx context.Context, tx Getter, userID, currencyID string) (CryptoHolding, error) {
	var row CryptoHolding
	err := tx.GetContext(ctx, &row, `
		SELECT id, user_id, trade_currency_id, balance, created_at
		FROM crypto_holdings
		WHERE user_id = $1 AND trade_currency_id = $2
		FOR UPDATE
	`, userID, currencyID)
	if err != nil {
		return CryptoHolding{}, err
	}
	return row, nil
}

func (s *HoldingStore) Create(ctx context.Context, tx Execer, id, userID, currencyID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO crypto_holdings (id, user_id, trade_currency_id, balance)
		VALUES ($1, $2, $3, 0)
	`, id, userID, currencyID)
	return err
}

func (s *HoldingStore) UpdateBalance(ctx context.Context, tx Execer, holdingID string, balance decimal.Decimal) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE crypto_holdings
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, holdingID)
	return err
}

func (s *HoldingStore) ListByUser(ctx context.Context, userID string) ([]HoldingWithCurrency, error) {
	var rows []HoldingWithCurrency
	err := s.db.SelectContext(ctx, &rows, `
		SELECT h.id, h.trade_currency_id, c.symbol, c.name, h.balance
		FROM crypto_holdings h
		JOIN trade_currencies c ON c.id = h.trade_currency_id
		WHERE h.user_id = $1
		ORDER BY c.symbol
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
