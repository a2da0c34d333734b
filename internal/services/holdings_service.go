package services

import (
	"context"
	"database/sql"
	"errors"

	"tradewallet/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInsufficientHolding = errors.New("insufficient crypto balance")

type HoldingStore interface {
	GetByUserAndCurrency(ctx context.Context, userID, currencyID string) (store.CryptoHolding, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID, currencyID string) (store.CryptoHolding, error)
	Create(ctx context.Context, tx store.Execer, id, userID, currencyID string) error
	UpdateBalance(ctx context.Context, tx store.Execer, holdingID string, balance decimal.Decimal) error
}

// HoldingService owns every crypto holding mutation.
type HoldingService struct {
	holdings HoldingStore
}

func NewHoldingService(holdings HoldingStore) *HoldingService {
	return &HoldingService{holdings: holdings}
}

// BalanceOf reads a holding balance without locking; a missing holding is a
// zero balance.
func (s *HoldingService) BalanceOf(ctx context.Context, userID, currencyID string) (decimal.Decimal, error) {
	holding, err := s.holdings.GetByUserAndCurrency(ctx, userID, currencyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return holding.Balance, nil
}

// Adjust applies a signed delta to the (user, asset) holding inside the
// caller's transaction, creating the holding on first acquisition. A delta
// that would take the balance negative fails with ErrInsufficientHolding.
func (s *HoldingService) Adjust(ctx context.Context, tx store.Tx, userID, currencyID string, delta decimal.Decimal) (store.CryptoHolding, error) {
	holding, err := s.holdings.GetForUpdate(ctx, tx, userID, currencyID)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.holdings.Create(ctx, tx, uuid.NewString(), userID, currencyID); err != nil {
			return store.CryptoHolding{}, err
		}
		holding, err = s.holdings.GetForUpdate(ctx, tx, userID, currencyID)
	}
	if err != nil {
		return store.CryptoHolding{}, err
	}

	balance := holding.Balance.Add(delta)
	if balance.IsNegative() {
		return store.CryptoHolding{}, ErrInsufficientHolding
	}
	if err := s.holdings.UpdateBalance(ctx, tx, holding.ID, balance); err != nil {
		return store.CryptoHolding{}, err
	}
	holding.Balance = balance
	return holding, nil
}
