package services

import (
	"context"
	"errors"
	"testing"

	"tradewallet/internal/store"

	"github.com/jmoiron/sqlx"
)

func TestSettleCompletesWithMutations(t *testing.T) {
	completed := false
	mutated := false
	rec := &stubRecorder{
		completeFn: func(_ context.Context, _ store.Execer, transactionID string) error {
			if !mutated {
				t.Fatalf("complete must run after the mutations")
			}
			if transactionID != "txn-1" {
				t.Fatalf("unexpected transaction id: %s", transactionID)
			}
			completed = true
			return nil
		},
		markFailedFn: func(context.Context, string) error {
			t.Fatalf("a successful settlement must not be marked failed")
			return nil
		},
	}

	err := settle(context.Background(), fakeTxRunner{}, rec, "txn-1", func(*sqlx.Tx) error {
		mutated = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !completed {
		t.Fatalf("expected complete transition")
	}
}

func TestSettleMarksFailedOnMutationError(t *testing.T) {
	boom := errors.New("boom")
	markedFailed := false
	rec := &stubRecorder{
		completeFn: func(context.Context, store.Execer, string) error {
			t.Fatalf("complete must not run when a mutation fails")
			return nil
		},
		markFailedFn: func(_ context.Context, transactionID string) error {
			if transactionID != "txn-1" {
				t.Fatalf("unexpected transaction id: %s", transactionID)
			}
			markedFailed = true
			return nil
		},
	}

	err := settle(context.Background(), fakeTxRunner{}, rec, "txn-1", func(*sqlx.Tx) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !markedFailed {
		t.Fatalf("expected failed transition")
	}
}

func TestSettleMarksFailedWhenTransactionCannotStart(t *testing.T) {
	markedFailed := false
	rec := &stubRecorder{
		markFailedFn: func(context.Context, string) error {
			markedFailed = true
			return nil
		},
	}

	err := settle(context.Background(), fakeTxRunner{err: errors.New("db down")}, rec, "txn-1", func(*sqlx.Tx) error {
		t.Fatalf("mutations must not run")
		return nil
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !markedFailed {
		t.Fatalf("expected failed transition")
	}
}

func TestClassifySettlementErrPassesBusinessErrors(t *testing.T) {
	for _, business := range []error{ErrDuplicateEntry, ErrInsufficientBalance, ErrInsufficientHolding} {
		if got := classifySettlementErr("buy", business); got != business {
			t.Fatalf("expected %v to pass through, got %v", business, got)
		}
	}
}

func TestClassifySettlementErrWrapsUnknown(t *testing.T) {
	err := classifySettlementErr("sell", errors.New("connection reset"))
	var settlement *SettlementError
	if !errors.As(err, &settlement) {
		t.Fatalf("expected SettlementError, got %v", err)
	}
	if len(settlement.Code) != 11 || settlement.Code[0] != 'C' {
		t.Fatalf("unexpected correlation code: %s", settlement.Code)
	}
}
