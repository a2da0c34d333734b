package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type WalletLogStore struct {
	db DB
}

// WalletLog rows are append-only: inserted once per committed ledger
// mutation, never updated or deleted.
type WalletLog struct {
	ID             string          `db:"id"`
	UserID         string          `db:"user_id"`
	Reference      string          `db:"reference"`
	Type           string          `db:"type"`
	Amount         decimal.Decimal `db:"amount"`
	InitialBalance decimal.Decimal `db:"initial_balance"`
	FinalBalance   decimal.Decimal `db:"final_balance"`
	IdempotencyKey string          `db:"idempotency_key"`
	CreatedAt      time.Time       `db:"created_at"`
}

type WalletLogInput struct {
	ID             string
	UserID         string
	Reference      string
	Type           string
	Amount         decimal.Decimal
	InitialBalance decimal.Decimal
	FinalBalance   decimal.Decimal
	IdempotencyKey string
}

func NewWalletLogStore(db DB) *WalletLogStore {
	return &WalletLogStore{db: db}
}

func (s *WalletLogStore) Insert(ctx context.Context, tx Execer, input WalletLogInput) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_logs (id, user_id, reference, type, amount, initial_balance, final_balance, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, input.ID, input.UserID, input.Reference, input.Type, input.Amount, input.InitialBalance, input.FinalBalance, input.IdempotencyKey)
	return err
}

func (s *WalletLogStore) ExistsByIdempotencyKey(ctx context.Context, tx Getter, key string) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM wallet_logs WHERE idempotency_key = $1)
	`, key)
	return exists, err
}

func (s *WalletLogStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]WalletLog, error) {
	var rows []WalletLog
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, reference, type, amount, initial_balance, final_balance, idempotency_key, created_at
		FROM wallet_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
