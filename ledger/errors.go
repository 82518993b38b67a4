package ledger

import "errors"

// Domain errors. Handlers translate these to HTTP status codes; everything
// else surfaces as an internal error.
var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrBranchNotFound   = errors.New("branch not found")
	ErrLoanNotFound     = errors.New("loan not found")

	// ErrAccountNotEligible means the account exists but its status forbids
	// mutation (closed or frozen).
	ErrAccountNotEligible = errors.New("account not eligible for transactions")

	ErrUnsupportedType = errors.New("unsupported transaction type")
	ErrInvalidAmount   = errors.New("amount must be > 0")
	ErrValidation      = errors.New("invalid argument")

	ErrDuplicateID = errors.New("id already exists")
)
