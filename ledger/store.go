package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"bank-ledger/models"
)

// Store is the entity store the ledger and the report queries run against.
// Implementations must enforce the referential constraints of the data
// model: an account references an existing customer, a transaction or loan
// references an existing account.
type Store interface {
	CreateCustomer(ctx context.Context, c models.Customer) error
	CreateBranch(ctx context.Context, b models.Branch) error
	CreateAccount(ctx context.Context, a models.Account) error
	CreateLoan(ctx context.Context, l models.Loan) error

	Customer(ctx context.Context, id string) (models.Customer, error)
	Customers(ctx context.Context) ([]models.Customer, error)
	Branches(ctx context.Context) ([]models.Branch, error)
	Account(ctx context.Context, id string) (models.Account, error)
	Accounts(ctx context.Context) ([]models.Account, error)
	AccountsByCustomer(ctx context.Context, customerID string) ([]models.Account, error)
	Transactions(ctx context.Context) ([]models.Transaction, error)
	TransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error)
	Loans(ctx context.Context) ([]models.Loan, error)

	// AppendTransaction persists tx and applies delta to the owning
	// account's balance as one atomic unit. The account row is locked for
	// the duration so concurrent appends on the same account serialize.
	// Returns ErrAccountNotFound if the account is missing and
	// ErrAccountNotEligible if its status forbids mutation; in both cases
	// nothing is persisted.
	AppendTransaction(ctx context.Context, tx models.Transaction, delta decimal.Decimal) error
}
