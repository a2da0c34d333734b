package store

import (
	"context"

	"github.com/shopspring/decimal"
)

type CurrencyStore struct {
	db DB
}

// TradeCurrency is read-only reference data at settlement time; the fee
// policy is frozen onto the transaction when a trade is recorded.
type TradeCurrency struct {
	ID             string          `db:"id"`
	Symbol         string          `db:"symbol"`
	Name           string          `db:"name"`
	Fee            decimal.Decimal `db:"fee"`
	FeeType        string          `db:"fee_type"`
	MinTradeAmount decimal.Decimal `db:"min_trade_amount"`
}

func NewCurrencyStore(db DB) *CurrencyStore {
	return &CurrencyStore{db: db}
}

func (s *CurrencyStore) GetByID(ctx context.Context, currencyID string) (TradeCurrency, error) {
	var row TradeCurrency
	err := s.db.GetContext(ctx, &row, `
		SELECT id, symbol, name, fee, fee_type, min_trade_amount
		FROM trade_currencies
		WHERE id = $1
	`, currencyID)
	if err != nil {
		return TradeCurrency{}, err
	}
	return row, nil
}

func (s *CurrencyStore) GetBySymbol(ctx context.Context, symbol string) (TradeCurrency, error) {
	var row TradeCurrency
	err := s.db.GetContext(ctx, &row, `
		SELECT id, symbol, name, fee, fee_type, min_trade_amount
		FROM trade_currencies
		WHERE symbol = $1
	`, symbol)
	if err != nil {
		return TradeCurrency{}, err
	}
	return row, nil
}

func (s *CurrencyStore) List(ctx context.Context) ([]TradeCurrency, error) {
	var rows []TradeCurrency
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, symbol, name, fee, fee_type, min_trade_amount
		FROM trade_currencies
		ORDER BY symbol
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
