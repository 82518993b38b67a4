package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"bank-ledger/ledger"
	"bank-ledger/models"
)

// mapCreateError translates MySQL constraint violations into the domain
// sentinels the in-memory store returns, so both backends surface the same
// errors for duplicate ids and dangling references. missing is the sentinel
// for the parent entity a foreign key points at.
func mapCreateError(err error, missing error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case 1062: // duplicate primary key
			return ledger.ErrDuplicateID
		case 1452: // foreign key constraint fails
			return missing
		}
	}
	return err
}

// MySQL implements ledger.Store on a relational database. The append path
// locks the account row (SELECT ... FOR UPDATE) so concurrent appends on
// the same account serialize; everything else is plain reads.
type MySQL struct {
	db *sql.DB
}

func NewMySQL(db *sql.DB) *MySQL {
	return &MySQL{db: db}
}

func (s *MySQL) CreateCustomer(ctx context.Context, c models.Customer) error {
	var homeBranch sql.NullString
	if c.HomeBranchID != "" {
		homeBranch = sql.NullString{String: c.HomeBranchID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO customers (id, full_name, email, telephone, date_of_birth, registered_at, home_branch_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.FullName, c.Email, c.Telephone, c.DateOfBirth, c.RegisteredAt, homeBranch)
	if err != nil {
		return fmt.Errorf("insert customer: %w", mapCreateError(err, ledger.ErrBranchNotFound))
	}
	return nil
}

func (s *MySQL) CreateBranch(ctx context.Context, b models.Branch) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO branches (id, name, address, city, manager) VALUES (?, ?, ?, ?, ?)",
		b.ID, b.Name, b.Address, b.City, b.Manager)
	if err != nil {
		return fmt.Errorf("insert branch: %w", mapCreateError(err, ledger.ErrBranchNotFound))
	}
	return nil
}

func (s *MySQL) CreateAccount(ctx context.Context, a models.Account) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO accounts (id, customer_id, type, balance, created_at, status) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, a.CustomerID, a.Type, a.Balance, a.CreatedAt, a.Status)
	if err != nil {
		return fmt.Errorf("insert account: %w", mapCreateError(err, ledger.ErrCustomerNotFound))
	}
	return nil
}

func (s *MySQL) CreateLoan(ctx context.Context, l models.Loan) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO loans (id, account_id, type, amount, interest_rate, start_date, end_date, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		l.ID, l.AccountID, l.Type, l.Amount, l.InterestRate, l.StartDate, l.EndDate, l.Status)
	if err != nil {
		return fmt.Errorf("insert loan: %w", mapCreateError(err, ledger.ErrAccountNotFound))
	}
	return nil
}

func (s *MySQL) Customer(ctx context.Context, id string) (models.Customer, error) {
	var c models.Customer
	var homeBranch sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT id, full_name, email, telephone, date_of_birth, registered_at, home_branch_id FROM customers WHERE id = ?", id).
		Scan(&c.ID, &c.FullName, &c.Email, &c.Telephone, &c.DateOfBirth, &c.RegisteredAt, &homeBranch)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Customer{}, ledger.ErrCustomerNotFound
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("select customer: %w", err)
	}
	c.HomeBranchID = homeBranch.String
	return c, nil
}

func (s *MySQL) Customers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, full_name, email, telephone, date_of_birth, registered_at, home_branch_id FROM customers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	defer rows.Close()

	var out []models.Customer
	for rows.Next() {
		var c models.Customer
		var homeBranch sql.NullString
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.Telephone, &c.DateOfBirth, &c.RegisteredAt, &homeBranch); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		c.HomeBranchID = homeBranch.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *MySQL) Branches(ctx context.Context) ([]models.Branch, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, address, city, manager FROM branches ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("select branches: %w", err)
	}
	defer rows.Close()

	var out []models.Branch
	for rows.Next() {
		var b models.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.City, &b.Manager); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *MySQL) Account(ctx context.Context, id string) (models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx,
		"SELECT id, customer_id, type, balance, created_at, status FROM accounts WHERE id = ?", id).
		Scan(&a.ID, &a.CustomerID, &a.Type, &a.Balance, &a.CreatedAt, &a.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("select account: %w", err)
	}
	return a, nil
}

func (s *MySQL) Accounts(ctx context.Context) ([]models.Account, error) {
	return s.accounts(ctx, "SELECT id, customer_id, type, balance, created_at, status FROM accounts ORDER BY id")
}

func (s *MySQL) AccountsByCustomer(ctx context.Context, customerID string) ([]models.Account, error) {
	return s.accounts(ctx, "SELECT id, customer_id, type, balance, created_at, status FROM accounts WHERE customer_id = ? ORDER BY id", customerID)
}

func (s *MySQL) accounts(ctx context.Context, query string, args ...any) ([]models.Account, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select accounts: %w", err)
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Balance, &a.CreatedAt, &a.Status); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *MySQL) Transactions(ctx context.Context) ([]models.Transaction, error) {
	return s.transactions(ctx, "SELECT id, account_id, type, amount, timestamp, method FROM transactions ORDER BY timestamp, id")
}

func (s *MySQL) TransactionsByAccount(ctx context.Context, accountID string) ([]models.Transaction, error) {
	return s.transactions(ctx, "SELECT id, account_id, type, amount, timestamp, method FROM transactions WHERE account_id = ? ORDER BY timestamp, id", accountID)
}

func (s *MySQL) transactions(ctx context.Context, query string, args ...any) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Timestamp, &t.Method); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *MySQL) Loans(ctx context.Context) ([]models.Loan, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, account_id, type, amount, interest_rate, start_date, end_date, status FROM loans ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("select loans: %w", err)
	}
	defer rows.Close()

	var out []models.Loan
	for rows.Next() {
		var l models.Loan
		if err := rows.Scan(&l.ID, &l.AccountID, &l.Type, &l.Amount, &l.InterestRate, &l.StartDate, &l.EndDate, &l.Status); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AppendTransaction inserts the transaction row and adjusts the account
// balance inside one database transaction. The initial SELECT ... FOR UPDATE
// both checks eligibility and holds the row lock until commit, so a
// concurrent append on the same account waits instead of losing an update.
func (s *MySQL) AppendTransaction(ctx context.Context, tx models.Transaction, delta decimal.Decimal) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}

	var status models.AccountStatus
	var balance decimal.Decimal
	err = dbtx.QueryRowContext(ctx,
		"SELECT status, balance FROM accounts WHERE id = ? FOR UPDATE", tx.AccountID).
		Scan(&status, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		dbtx.Rollback()
		return ledger.ErrAccountNotFound
	}
	if err != nil {
		dbtx.Rollback()
		return fmt.Errorf("lock account: %w", err)
	}
	if status != models.AccountActive {
		dbtx.Rollback()
		return ledger.ErrAccountNotEligible
	}

	_, err = dbtx.ExecContext(ctx,
		"INSERT INTO transactions (id, account_id, type, amount, timestamp, method) VALUES (?, ?, ?, ?, ?, ?)",
		tx.ID, tx.AccountID, tx.Type, tx.Amount, tx.Timestamp, tx.Method)
	if err != nil {
		dbtx.Rollback()
		return fmt.Errorf("insert transaction: %w", err)
	}

	_, err = dbtx.ExecContext(ctx,
		"UPDATE accounts SET balance = ? WHERE id = ?",
		balance.Add(delta), tx.AccountID)
	if err != nil {
		dbtx.Rollback()
		return fmt.Errorf("update balance: %w", err)
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}
