package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bank-ledger/ledger"
	"bank-ledger/models"
)

// Statement returns the customer's transactions for one calendar month,
// ascending by timestamp (ties by transaction id). A customer with no
// matching transactions gets an empty statement, not an error. Balances are
// never consulted.
func (e *Engine) Statement(ctx context.Context, customerID string, year int, month time.Month) ([]models.Transaction, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month out of range", ledger.ErrValidation)
	}

	if _, err := e.store.Customer(ctx, customerID); err != nil {
		return nil, err
	}

	accounts, err := e.store.AccountsByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	out := []models.Transaction{}
	for _, a := range accounts {
		txs, err := e.store.TransactionsByAccount(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		for _, t := range txs {
			if !t.Timestamp.Before(from) && t.Timestamp.Before(to) {
				out = append(out, t)
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
