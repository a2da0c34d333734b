package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStore struct {
	db DB
}

type Transaction struct {
	ID              string              `db:"id"`
	UserID          string              `db:"user_id"`
	TradeCurrencyID *string             `db:"trade_currency_id"`
	Type            string              `db:"type"`
	Status          string              `db:"status"`
	Amount          decimal.Decimal     `db:"amount"`
	Fee             decimal.Decimal     `db:"fee"`
	FeeRate         decimal.NullDecimal `db:"fee_rate"`
	FeeRateType     *string             `db:"fee_rate_type"`
	TotalAmount     decimal.Decimal     `db:"total_amount"`
	ConversionRate  decimal.NullDecimal `db:"conversion_rate"`
	CryptoAmount    decimal.NullDecimal `db:"crypto_amount"`
	Reference       string              `db:"reference"`
	IdempotencyKey  string              `db:"idempotency_key"`
	CreatedAt       time.Time           `db:"created_at"`
}

type TransactionInput struct {
	ID              string
	UserID          string
	TradeCurrencyID *string
	Type            string
	Status          string
	Amount          decimal.Decimal
	Fee             decimal.Decimal
	FeeRate         decimal.NullDecimal
	FeeRateType     *string
	TotalAmount     decimal.Decimal
	ConversionRate  decimal.NullDecimal
	CryptoAmount    decimal.NullDecimal
	Reference       string
	IdempotencyKey  string
}

// TransactionFilter narrows ListByUser; zero values mean "no filter".
type TransactionFilter struct {
	Type       string
	Status     string
	CurrencyID string
	From       *time.Time
	To         *time.Time
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Execer, input TransactionInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, trade_currency_id, type, status, amount, fee, fee_rate, fee_rate_type, total_amount, conversion_rate, crypto_amount, reference, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, input.ID, input.UserID, input.TradeCurrencyID, input.Type, input.Status,
		input.Amount, input.Fee, input.FeeRate, input.FeeRateType, input.TotalAmount,
		input.ConversionRate, input.CryptoAmount, input.Reference, input.IdempotencyKey)
	return err
}

// TransitionStatus moves a transaction from one status to another and reports
// how many rows changed, so callers can enforce single-shot transitions.
func (s *TransactionStore) TransitionStatus(ctx context.Context, tx Execer, transactionID, fromStatus, toStatus string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, toStatus, transactionID, fromStatus)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (Transaction, error) {
	var row Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, trade_currency_id, type, status, amount, fee, fee_rate, fee_rate_type, total_amount, conversion_rate, crypto_amount, reference, idempotency_key, created_at
		FROM transactions
		WHERE id = $1
	`, transactionID)
	if err != nil {
		return Transaction{}, err
	}
	return row, nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, filter TransactionFilter, limit, offset int) ([]Transaction, error) {
	query := `
		SELECT id, user_id, trade_currency_id, type, status, amount, fee, fee_rate, fee_rate_type, total_amount, conversion_rate, crypto_amount, reference, idempotency_key, created_at
		FROM transactions
		WHERE user_id = $1
	`
	args := []any{userID}
	param := 2
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", param)
		args = append(args, filter.Type)
		param++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", param)
		args = append(args, filter.Status)
		param++
	}
	if filter.CurrencyID != "" {
		query += fmt.Sprintf(" AND trade_currency_id = $%d", param)
		args = append(args, filter.CurrencyID)
		param++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", param)
		args = append(args, *filter.From)
		param++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", param)
		args = append(args, *filter.To)
		param++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", param, param+1)
	args = append(args, limit, offset)

	var rows []Transaction
	err := s.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
