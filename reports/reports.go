// Package reports derives read-only summaries from the entity store. Every
// operation is a pure fold over current store contents; nothing here writes.
// Reads are not snapshot-isolated across accounts: a report computed while
// appends are in flight may mix balances from before and after an append,
// which is an accepted staleness window.
package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/ledger"
	"bank-ledger/models"
)

type Engine struct {
	store ledger.Store
	cache *Cache // nil disables caching
}

func NewEngine(store ledger.Store, cache *Cache) *Engine {
	return &Engine{store: store, cache: cache}
}

// CustomerSummary returns one row per customer, ordered by customer id.
// Customers without accounts appear with zeroed aggregates.
func (e *Engine) CustomerSummary(ctx context.Context) ([]models.CustomerSummaryRow, error) {
	if rows, ok := e.cache.GetSummary(ctx); ok {
		return rows, nil
	}

	customers, err := e.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := e.store.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	loans, err := e.store.Loans(ctx)
	if err != nil {
		return nil, err
	}

	accountOwner := make(map[string]string, len(accounts))
	rows := make([]models.CustomerSummaryRow, 0, len(customers))
	index := make(map[string]int, len(customers))
	for i, c := range customers {
		index[c.ID] = i
		rows = append(rows, models.CustomerSummaryRow{
			CustomerID:   c.ID,
			FullName:     c.FullName,
			TotalBalance: decimal.Zero,
		})
	}
	for _, a := range accounts {
		accountOwner[a.ID] = a.CustomerID
		if i, ok := index[a.CustomerID]; ok {
			rows[i].TotalAccounts++
			rows[i].TotalBalance = rows[i].TotalBalance.Add(a.Balance)
		}
	}
	for _, l := range loans {
		if l.Status != models.LoanActive {
			continue
		}
		if i, ok := index[accountOwner[l.AccountID]]; ok {
			rows[i].ActiveLoans++
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].CustomerID < rows[j].CustomerID })
	e.cache.SetSummary(ctx, rows)
	return rows, nil
}

// BranchFlow totals deposits and withdrawals per branch. An account's
// activity is attributed to its owner's home branch; the source data has no
// direct account-to-branch link, so treat the attribution as approximate.
// Customers without a home branch contribute to no row.
func (e *Engine) BranchFlow(ctx context.Context) ([]models.BranchFlowRow, error) {
	branches, err := e.store.Branches(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := e.store.Customers(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := e.store.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := e.store.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	homeBranch := make(map[string]string, len(customers))
	for _, c := range customers {
		homeBranch[c.ID] = c.HomeBranchID
	}
	accountBranch := make(map[string]string, len(accounts))
	for _, a := range accounts {
		accountBranch[a.ID] = homeBranch[a.CustomerID]
	}

	rows := make([]models.BranchFlowRow, 0, len(branches))
	index := make(map[string]int, len(branches))
	for i, b := range branches {
		index[b.ID] = i
		rows = append(rows, models.BranchFlowRow{
			BranchID:         b.ID,
			BranchName:       b.Name,
			TotalDeposits:    decimal.Zero,
			TotalWithdrawals: decimal.Zero,
		})
	}
	for _, t := range transactions {
		i, ok := index[accountBranch[t.AccountID]]
		if !ok {
			continue
		}
		switch t.Type {
		case models.Deposit:
			rows[i].TotalDeposits = rows[i].TotalDeposits.Add(t.Amount)
		case models.Withdrawal:
			rows[i].TotalWithdrawals = rows[i].TotalWithdrawals.Add(t.Amount)
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].BranchID < rows[j].BranchID })
	return rows, nil
}

// DormantAccounts returns ids of accounts with no transaction timestamped
// within [referenceDate-window, referenceDate].
func (e *Engine) DormantAccounts(ctx context.Context, referenceDate time.Time, window time.Duration) ([]string, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive", ledger.ErrValidation)
	}

	accounts, err := e.store.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	transactions, err := e.store.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	from := referenceDate.Add(-window)
	active := make(map[string]bool)
	for _, t := range transactions {
		if !t.Timestamp.Before(from) && !t.Timestamp.After(referenceDate) {
			active[t.AccountID] = true
		}
	}

	out := []string{}
	for _, a := range accounts {
		if !active[a.ID] {
			out = append(out, a.ID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// OverdraftFrequency counts negative-balance accounts per customer. Only
// customers with at least one overdrawn account appear; rows are ordered by
// count descending, then customer id ascending.
func (e *Engine) OverdraftFrequency(ctx context.Context) ([]models.OverdraftRow, error) {
	accounts, err := e.store.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, a := range accounts {
		if a.Balance.IsNegative() {
			counts[a.CustomerID]++
		}
	}

	rows := make([]models.OverdraftRow, 0, len(counts))
	for id, n := range counts {
		rows = append(rows, models.OverdraftRow{CustomerID: id, OverdrawnAccounts: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].OverdrawnAccounts != rows[j].OverdrawnAccounts {
			return rows[i].OverdrawnAccounts > rows[j].OverdrawnAccounts
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
	return rows, nil
}

// TopBalances returns the n customers with the highest total balance,
// descending, ties broken by customer id ascending. Fewer than n customers
// yields fewer rows.
func (e *Engine) TopBalances(ctx context.Context, n int) ([]models.CustomerSummaryRow, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n must be >= 1", ledger.ErrValidation)
	}

	rows, err := e.CustomerSummary(ctx)
	if err != nil {
		return nil, err
	}
	sorted := make([]models.CustomerSummaryRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].TotalBalance.Equal(sorted[j].TotalBalance) {
			return sorted[i].TotalBalance.GreaterThan(sorted[j].TotalBalance)
		}
		return sorted[i].CustomerID < sorted[j].CustomerID
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted, nil
}

// MonthlyLoanInterestEstimate sums one month of simple interest
// (amount * rate / 100 / 12) over active loans, grouped by the calendar
// month of the loan's start date and rounded half-up to two decimals.
func (e *Engine) MonthlyLoanInterestEstimate(ctx context.Context) ([]models.MonthlyInterestRow, error) {
	loans, err := e.store.Loans(ctx)
	if err != nil {
		return nil, err
	}

	months := make(map[string]decimal.Decimal)
	for _, l := range loans {
		if l.Status != models.LoanActive {
			continue
		}
		month := l.StartDate.Format("2006-01")
		interest := l.Amount.Mul(l.InterestRate).Div(decimal.NewFromInt(1200))
		months[month] = months[month].Add(interest)
	}

	rows := make([]models.MonthlyInterestRow, 0, len(months))
	for month, total := range months {
		rows = append(rows, models.MonthlyInterestRow{Month: month, Estimate: total.Round(2)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
	return rows, nil
}
