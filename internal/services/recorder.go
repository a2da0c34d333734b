package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tradewallet/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeDeposit  = "deposit"
	TypeWithdraw = "withdraw"
	TypeBuy      = "buy"
	TypeSell     = "sell"

	StatusInitiated = "initiated"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidTransition      = errors.New("transaction is not in a transitionable state")
)

type TransactionStore interface {
	Create(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	TransitionStatus(ctx context.Context, tx store.Execer, transactionID, fromStatus, toStatus string) (int64, error)
}

// TransactionRecorder owns every transactions-table write. Economic fields
// are frozen at creation; the only transitions are initiated -> completed and
// initiated -> failed.
type TransactionRecorder struct {
	transactions TransactionStore
	db           store.Execer
}

// NewTransactionRecorder takes the store plus a direct Execer so the
// initiated row and the failed transition commit outside the settlement
// transaction and survive its rollback.
func NewTransactionRecorder(transactions TransactionStore, db store.Execer) *TransactionRecorder {
	return &TransactionRecorder{transactions: transactions, db: db}
}

type RecordInput struct {
	UserID         string
	Type           string
	Amount         decimal.Decimal
	Currency       *store.TradeCurrency
	Fee            decimal.Decimal
	ConversionRate decimal.Decimal
	CryptoAmount   decimal.Decimal
}

// Create writes and commits the transaction row in state initiated with the
// fee, total, rate and crypto amount frozen.
func (r *TransactionRecorder) Create(ctx context.Context, input RecordInput) (store.Transaction, error) {
	total, err := totalAmount(input.Type, input.Amount, input.Fee)
	if err != nil {
		return store.Transaction{}, err
	}

	reference := uuid.NewString()
	currencyID := ""
	var currencyIDPtr *string
	var feeRate decimal.NullDecimal
	var feeRateType *string
	var conversionRate, cryptoAmount decimal.NullDecimal
	if input.Currency != nil {
		currencyID = input.Currency.ID
		currencyIDPtr = &input.Currency.ID
		feeRate = decimal.NewNullDecimal(input.Currency.Fee)
		feeRateType = &input.Currency.FeeType
		conversionRate = decimal.NewNullDecimal(input.ConversionRate)
		cryptoAmount = decimal.NewNullDecimal(input.CryptoAmount)
	}
	idempotencyKey := strings.Join([]string{
		input.UserID, input.Type, input.Amount.String(), currencyID, reference,
	}, "|")

	row := store.TransactionInput{
		ID:              uuid.NewString(),
		UserID:          input.UserID,
		TradeCurrencyID: currencyIDPtr,
		Type:            input.Type,
		Status:          StatusInitiated,
		Amount:          input.Amount,
		Fee:             input.Fee,
		FeeRate:         feeRate,
		FeeRateType:     feeRateType,
		TotalAmount:     total,
		ConversionRate:  conversionRate,
		CryptoAmount:    cryptoAmount,
		Reference:       reference,
		IdempotencyKey:  idempotencyKey,
	}
	if err := r.transactions.Create(ctx, r.db, row); err != nil {
		if isUniqueViolation(err) {
			return store.Transaction{}, ErrDuplicateEntry
		}
		return store.Transaction{}, err
	}
	return store.Transaction{
		ID:              row.ID,
		UserID:          row.UserID,
		TradeCurrencyID: row.TradeCurrencyID,
		Type:            row.Type,
		Status:          row.Status,
		Amount:          row.Amount,
		Fee:             row.Fee,
		FeeRate:         row.FeeRate,
		FeeRateType:     row.FeeRateType,
		TotalAmount:     row.TotalAmount,
		ConversionRate:  row.ConversionRate,
		CryptoAmount:    row.CryptoAmount,
		Reference:       row.Reference,
		IdempotencyKey:  row.IdempotencyKey,
	}, nil
}

// Complete transitions the row to completed inside the settlement
// transaction, so it commits together with the balance mutations.
func (r *TransactionRecorder) Complete(ctx context.Context, tx store.Execer, transactionID string) error {
	return r.transition(ctx, tx, transactionID, StatusCompleted)
}

// MarkFailed transitions the row to failed outside any settlement
// transaction, after a rollback.
func (r *TransactionRecorder) MarkFailed(ctx context.Context, transactionID string) error {
	return r.transition(ctx, r.db, transactionID, StatusFailed)
}

func (r *TransactionRecorder) transition(ctx context.Context, tx store.Execer, transactionID, toStatus string) error {
	rows, err := r.transactions.TransitionStatus(ctx, tx, transactionID, StatusInitiated, toStatus)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func totalAmount(txType string, amount, fee decimal.Decimal) (decimal.Decimal, error) {
	switch txType {
	case TypeBuy:
		return amount.Add(fee), nil
	case TypeSell:
		return amount.Sub(fee), nil
	case TypeDeposit, TypeWithdraw:
		return amount, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidTransactionType, txType)
	}
}
