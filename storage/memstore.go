// Package storage provides the two ledger.Store backends: MySQL for real
// deployments and an in-memory store for tests and local demos.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"bank-ledger/ledger"
	"bank-ledger/models"
)

// Mem is a mutex-guarded in-memory ledger.Store. A single mutex serializes
// every operation, so appends on the same account cannot interleave. All
// reads return copies; callers never see internal state.
type Mem struct {
	mu           sync.Mutex
	customers    map[string]models.Customer
	branches     map[string]models.Branch
	accounts     map[string]models.Account
	transactions []models.Transaction
	loans        map[string]models.Loan
}

func NewMem() *Mem {
	return &Mem{
		customers: make(map[string]models.Customer),
		branches:  make(map[string]models.Branch),
		accounts:  make(map[string]models.Account),
		loans:     make(map[string]models.Loan),
	}
}

func (m *Mem) CreateCustomer(ctx context.Context, c models.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[c.ID]; ok {
		return ledger.ErrDuplicateID
	}
	if c.HomeBranchID != "" {
		if _, ok := m.branches[c.HomeBranchID]; !ok {
			return ledger.ErrBranchNotFound
		}
	}
	m.customers[c.ID] = c
	return nil
}

func (m *Mem) CreateBranch(ctx context.Context, b models.Branch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.branches[b.ID]; ok {
		return ledger.ErrDuplicateID
	}
	m.branches[b.ID] = b
	return nil
}

func (m *Mem) CreateAccount(ctx context.Context, a models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.ID]; ok {
		return ledger.ErrDuplicateID
	}
	if _, ok := m.customers[a.CustomerID]; !ok {
		return ledger.ErrCustomerNotFound
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *Mem) CreateLoan(ctx context.Context, l models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[l.ID]; ok {
		return ledger.ErrDuplicateID
	}
	if _, ok := m.accounts[l.AccountID]; !ok {
		return ledger.ErrAccountNotFound
	}
	m.loans[l.ID] = l
	return nil
}

func (m *Mem) Customer(ctx context.Context, id string) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return models.Customer{}, ledger.ErrCustomerNotFound
	}
	return c, nil
}

func (m *Mem) Customers(ctx context.Context) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Mem) Branches(ctx context.Context) ([]models.Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Branch, 0, len(m.branches))
	for _, b := range m.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Mem) Account(ctx context.Context, id string) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return models.Account{}, ledger.ErrAccountNotFound
	}
	return a, nil
}

func (m *Mem) Accounts(ctx context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Mem) AccountsByCustomer(ctx context.Context, customerID string) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Account
	for _, a := range m.accounts {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Mem) Transactions(ctx context.Context) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out, nil
}

func (m *Mem) TransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.transactions {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Mem) Loans(ctx context.Context) ([]models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Loan, 0, len(m.loans))
	for _, l := range m.loans {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AppendTransaction records tx and applies delta to the account balance
// under the store mutex, so both changes land together or not at all.
func (m *Mem) AppendTransaction(ctx context.Context, tx models.Transaction, delta decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[tx.AccountID]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	if a.Status != models.AccountActive {
		return ledger.ErrAccountNotEligible
	}
	a.Balance = a.Balance.Add(delta)
	m.accounts[tx.AccountID] = a
	m.transactions = append(m.transactions, tx)
	return nil
}
