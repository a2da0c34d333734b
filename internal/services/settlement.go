package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"tradewallet/internal/db"
	"tradewallet/internal/store"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SettlementError is what callers see when the atomic unit itself fails for
// a non-business reason. The root cause stays in the logs, keyed by Code.
type SettlementError struct {
	Code string
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement failed, reference %s", e.Code)
}

// Recorder is the slice of TransactionRecorder the orchestrators need.
type Recorder interface {
	Create(ctx context.Context, input RecordInput) (store.Transaction, error)
	Complete(ctx context.Context, tx store.Execer, transactionID string) error
	MarkFailed(ctx context.Context, transactionID string) error
}

// settle runs the balance mutations and the completed transition as one
// transaction. If anything inside fails, the transaction rolls back and the
// already-committed row is marked failed, so the audit trail of the attempt
// survives.
func settle(ctx context.Context, runner db.TxRunner, rec Recorder, transactionID string, mutate func(tx *sqlx.Tx) error) error {
	err := runner.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := mutate(tx); err != nil {
			return err
		}
		return rec.Complete(ctx, tx, transactionID)
	})
	if err == nil {
		return nil
	}
	if markErr := rec.MarkFailed(ctx, transactionID); markErr != nil {
		log.Printf("could not mark transaction %s failed: %v", transactionID, markErr)
	}
	return err
}

// classifySettlementErr passes business rejections through untouched and
// converts everything else into an opaque SettlementError, logging the root
// cause with the correlation code.
func classifySettlementErr(action string, err error) error {
	if isBusinessError(err) {
		return err
	}
	code := correlationCode()
	log.Printf("%s settlement failed (ref %s): %v", action, code, err)
	return &SettlementError{Code: code}
}

func isBusinessError(err error) bool {
	return errors.Is(err, ErrDuplicateEntry) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientHolding)
}

func correlationCode() string {
	return "C" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
