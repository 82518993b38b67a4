// Package ledger owns the single write path of the system: appending a
// transaction and maintaining the owning account's stored balance. The
// balance is a derived value; after any append completes it equals the sum
// of all signed transaction amounts ever applied to that account. No other
// component writes balances.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bank-ledger/models"
)

type Ledger struct {
	store Store

	// onAppend, when set, runs after every successful append. Used to
	// invalidate report caches.
	onAppend func(ctx context.Context)
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// OnAppend registers a hook invoked after each successful append.
func (l *Ledger) OnAppend(fn func(ctx context.Context)) {
	l.onAppend = fn
}

// Append records a transaction against an account and updates the account's
// balance in the same atomic unit. Deposits add the amount, withdrawals
// subtract it. Withdrawals may push the balance negative; overdrafts are
// permitted and only surface in the overdraft report.
func (l *Ledger) Append(ctx context.Context, accountID string, txType models.TransactionType, amount decimal.Decimal, timestamp time.Time, method string) (models.Transaction, error) {
	if !amount.IsPositive() {
		return models.Transaction{}, ErrInvalidAmount
	}

	var delta decimal.Decimal
	switch txType {
	case models.Deposit:
		delta = amount
	case models.Withdrawal:
		delta = amount.Neg()
	default:
		return models.Transaction{}, fmt.Errorf("%w: %q", ErrUnsupportedType, txType)
	}

	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	tx := models.Transaction{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Type:      txType,
		Amount:    amount,
		Timestamp: timestamp,
		Method:    method,
	}

	if err := l.store.AppendTransaction(ctx, tx, delta); err != nil {
		return models.Transaction{}, err
	}

	if l.onAppend != nil {
		l.onAppend(ctx)
	}
	return tx, nil
}
