package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountSavings AccountType = "savings"
	AccountCurrent AccountType = "current"
	AccountFixed   AccountType = "fixed"
)

type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountClosed AccountStatus = "closed"
	AccountFrozen AccountStatus = "frozen"
)

type TransactionType string

const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
)

type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanClosed    LoanStatus = "closed"
	LoanDefaulted LoanStatus = "defaulted"
)

type Customer struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Telephone    string    `json:"telephone"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	RegisteredAt time.Time `json:"registered_at"`
	// HomeBranchID links the customer to the branch they opened with.
	// Branch attribution of account activity goes through this field.
	HomeBranchID string `json:"home_branch_id,omitempty"`
}

type Branch struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Manager string `json:"manager"`
}

type Account struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Type       AccountType     `json:"type"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
	Status     AccountStatus   `json:"status"`
}

type Transaction struct {
	ID        string          `json:"id"`
	AccountID string          `json:"account_id"`
	Type      TransactionType `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	Method    string          `json:"method"`
}

type Loan struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Status       LoanStatus      `json:"status"`
}

type CustomerSummaryRow struct {
	CustomerID    string          `json:"customer_id"`
	FullName      string          `json:"full_name"`
	TotalAccounts int             `json:"total_accounts"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	ActiveLoans   int             `json:"active_loans"`
}

type BranchFlowRow struct {
	BranchID         string          `json:"branch_id"`
	BranchName       string          `json:"branch_name"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
}

type OverdraftRow struct {
	CustomerID        string `json:"customer_id"`
	OverdrawnAccounts int    `json:"overdrawn_accounts"`
}

type MonthlyInterestRow struct {
	Month    string          `json:"month"` // YYYY-MM
	Estimate decimal.Decimal `json:"estimate"`
}
