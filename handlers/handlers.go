package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bank-ledger/ledger"
	"bank-ledger/models"
	"bank-ledger/reports"
)

type Handler struct {
	store   ledger.Store
	ledger  *ledger.Ledger
	reports *reports.Engine
	cache   *reports.Cache
	logger  *zap.Logger
}

func New(store ledger.Store, led *ledger.Ledger, eng *reports.Engine, cache *reports.Cache, logger *zap.Logger) *Handler {
	return &Handler{store: store, ledger: led, reports: eng, cache: cache, logger: logger}
}

// Router wires all routes. The write path is the transaction append; the
// create endpoints are administrative and exist to populate the store.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/transactions", h.AppendTransaction).Methods("POST")

	r.HandleFunc("/customers", h.CreateCustomer).Methods("POST")
	r.HandleFunc("/branches", h.CreateBranch).Methods("POST")
	r.HandleFunc("/accounts", h.CreateAccount).Methods("POST")
	r.HandleFunc("/loans", h.CreateLoan).Methods("POST")

	r.HandleFunc("/customers/{id}/statement", h.Statement).Methods("GET")

	r.HandleFunc("/reports/customer-summary", h.CustomerSummary).Methods("GET")
	r.HandleFunc("/reports/branch-flow", h.BranchFlow).Methods("GET")
	r.HandleFunc("/reports/dormant-accounts", h.DormantAccounts).Methods("GET")
	r.HandleFunc("/reports/overdraft-frequency", h.OverdraftFrequency).Methods("GET")
	r.HandleFunc("/reports/top-balances", h.TopBalances).Methods("GET")
	r.HandleFunc("/reports/loan-interest", h.MonthlyLoanInterest).Methods("GET")

	return r
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrUnsupportedType),
		errors.Is(err, ledger.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ledger.ErrCustomerNotFound),
		errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrBranchNotFound),
		errors.Is(err, ledger.ErrLoanNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ledger.ErrAccountNotEligible),
		errors.Is(err, ledger.ErrDuplicateID):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("internal error", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type appendRequest struct {
	AccountID string          `json:"account_id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
	Method    string          `json:"method"`
}

func (h *Handler) AppendTransaction(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.ledger.Append(r.Context(), req.AccountID, models.TransactionType(req.Type), req.Amount, req.Timestamp, req.Method)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("transaction appended",
		zap.String("transaction_id", tx.ID),
		zap.String("account_id", tx.AccountID),
		zap.String("type", string(tx.Type)))
	h.writeJSON(w, http.StatusCreated, tx)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.CreateCustomer(r.Context(), c); err != nil {
		h.writeError(w, err)
		return
	}
	h.cache.Invalidate(r.Context())
	h.writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var b models.Branch
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.CreateBranch(r.Context(), b); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var a models.Account
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if a.Status == "" {
		a.Status = models.AccountActive
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if err := h.store.CreateAccount(r.Context(), a); err != nil {
		h.writeError(w, err)
		return
	}
	h.cache.Invalidate(r.Context())
	h.writeJSON(w, http.StatusCreated, a)
}

func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var l models.Loan
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.CreateLoan(r.Context(), l); err != nil {
		h.writeError(w, err)
		return
	}
	h.cache.Invalidate(r.Context())
	h.writeJSON(w, http.StatusCreated, l)
}

// Statement serves GET /customers/{id}/statement?period=YYYY-MM. The
// export query parameter switches the body to a PDF or XLSX rendering.
func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["id"]

	period, err := time.Parse("2006-01", r.URL.Query().Get("period"))
	if err != nil {
		http.Error(w, "Invalid period format. Use YYYY-MM", http.StatusBadRequest)
		return
	}

	txs, err := h.reports.Statement(r.Context(), customerID, period.Year(), period.Month())
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch r.URL.Query().Get("export") {
	case "pdf":
		h.statementPDF(w, customerID, period, txs)
	case "xlsx":
		h.statementXLSX(w, customerID, period, txs)
	default:
		h.writeJSON(w, http.StatusOK, txs)
	}
}

func (h *Handler) CustomerSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.CustomerSummary(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) BranchFlow(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.BranchFlow(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// DormantAccounts serves GET /reports/dormant-accounts?date=YYYY-MM-DD&window=720h.
// The date defaults to now.
func (h *Handler) DormantAccounts(w http.ResponseWriter, r *http.Request) {
	referenceDate := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		var err error
		referenceDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	window, err := time.ParseDuration(r.URL.Query().Get("window"))
	if err != nil {
		http.Error(w, "Invalid window. Use a duration such as 720h", http.StatusBadRequest)
		return
	}

	ids, err := h.reports.DormantAccounts(r.Context(), referenceDate, window)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ids)
}

func (h *Handler) OverdraftFrequency(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.OverdraftFrequency(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) TopBalances(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(r.URL.Query().Get("n"))
	if err != nil {
		http.Error(w, "Invalid n", http.StatusBadRequest)
		return
	}

	rows, err := h.reports.TopBalances(r.Context(), n)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) MonthlyLoanInterest(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.MonthlyLoanInterestEstimate(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}
