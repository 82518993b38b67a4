package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bank-ledger/handlers"
	"bank-ledger/ledger"
	"bank-ledger/models"
	"bank-ledger/reports"
	"bank-ledger/storage"
)

func newServer(t *testing.T) (*storage.Mem, http.Handler) {
	t.Helper()
	store := storage.NewMem()
	led := ledger.New(store)
	eng := reports.NewEngine(store, nil)
	h := handlers.New(store, led, eng, nil, zap.NewNop())
	return store, h.Router()
}

func seed(t *testing.T, store *storage.Mem) {
	t.Helper()
	ctx := context.Background()
	if err := store.CreateCustomer(ctx, models.Customer{ID: "c1", FullName: "Ada"}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateAccount(ctx, models.Account{ID: "a1", CustomerID: "c1", Balance: decimal.NewFromInt(1000), Status: models.AccountActive}); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateAccount(ctx, models.Account{ID: "a2", CustomerID: "c1", Status: models.AccountClosed}); err != nil {
		t.Fatal(err)
	}
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAppendTransactionEndpoint(t *testing.T) {
	store, router := newServer(t)
	seed(t, store)

	rec := do(t, router, "POST", "/transactions",
		`{"account_id":"a1","type":"deposit","amount":"250","method":"cash"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status=%d want=201 body=%s", rec.Code, rec.Body)
	}

	var tx models.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &tx); err != nil {
		t.Fatal(err)
	}
	if tx.ID == "" || tx.AccountID != "a1" || !tx.Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	a, err := store.Account(context.Background(), "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !a.Balance.Equal(decimal.NewFromInt(1250)) {
		t.Fatalf("balance=%s want=1250", a.Balance)
	}
}

func TestAppendTransactionErrors(t *testing.T) {
	store, router := newServer(t)
	seed(t, store)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad amount", `{"account_id":"a1","type":"deposit","amount":"0"}`, http.StatusBadRequest},
		{"bad type", `{"account_id":"a1","type":"transfer","amount":"10"}`, http.StatusBadRequest},
		{"missing account", `{"account_id":"ghost","type":"deposit","amount":"10"}`, http.StatusNotFound},
		{"closed account", `{"account_id":"a2","type":"deposit","amount":"10"}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, "POST", "/transactions", tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status=%d want=%d body=%s", rec.Code, tc.want, rec.Body)
			}
		})
	}
}

func TestStatementEndpoint(t *testing.T) {
	store, router := newServer(t)
	seed(t, store)

	led := ledger.New(store)
	ctx := context.Background()
	march := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	if _, err := led.Append(ctx, "a1", models.Deposit, decimal.NewFromInt(10), march, "cash"); err != nil {
		t.Fatal(err)
	}
	if _, err := led.Append(ctx, "a1", models.Withdrawal, decimal.NewFromInt(5), april, "cash"); err != nil {
		t.Fatal(err)
	}

	rec := do(t, router, "GET", "/customers/c1/statement?period=2024-03", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	var txs []models.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || !txs[0].Timestamp.Equal(march) {
		t.Fatalf("unexpected statement: %+v", txs)
	}

	if rec := do(t, router, "GET", "/customers/ghost/statement?period=2024-03", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown customer: status=%d", rec.Code)
	}
	if rec := do(t, router, "GET", "/customers/c1/statement?period=March", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad period: status=%d", rec.Code)
	}
}

func TestStatementExportEndpoints(t *testing.T) {
	store, router := newServer(t)
	seed(t, store)

	rec := do(t, router, "GET", "/customers/c1/statement?period=2024-03&export=pdf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf status=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("pdf content-type=%q", ct)
	}

	rec = do(t, router, "GET", "/customers/c1/statement?period=2024-03&export=xlsx", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx status=%d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheet") {
		t.Fatalf("xlsx content-type=%q", ct)
	}
}

func TestReportEndpoints(t *testing.T) {
	store, router := newServer(t)
	seed(t, store)

	rec := do(t, router, "GET", "/reports/customer-summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status=%d", rec.Code)
	}
	var rows []models.CustomerSummaryRow
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].TotalAccounts != 2 {
		t.Fatalf("unexpected summary: %+v", rows)
	}

	if rec := do(t, router, "GET", "/reports/top-balances?n=abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad n: status=%d", rec.Code)
	}
	if rec := do(t, router, "GET", "/reports/top-balances?n=0", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("n=0: status=%d", rec.Code)
	}
	if rec := do(t, router, "GET", "/reports/dormant-accounts?window=720h", ""); rec.Code != http.StatusOK {
		t.Fatalf("dormant status=%d", rec.Code)
	}
	if rec := do(t, router, "GET", "/reports/dormant-accounts?window=banana", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad window: status=%d", rec.Code)
	}
	if rec := do(t, router, "GET", "/reports/overdraft-frequency", ""); rec.Code != http.StatusOK {
		t.Fatalf("overdraft status=%d", rec.Code)
	}
	if rec := do(t, router, "GET", "/reports/branch-flow", ""); rec.Code != http.StatusOK {
		t.Fatalf("branch flow status=%d", rec.Code)
	}
	if rec := do(t, router, "GET", "/reports/loan-interest", ""); rec.Code != http.StatusOK {
		t.Fatalf("loan interest status=%d", rec.Code)
	}
}

func TestCreateEndpoints(t *testing.T) {
	_, router := newServer(t)

	if rec := do(t, router, "POST", "/branches", `{"id":"b1","name":"Main","city":"Lagos"}`); rec.Code != http.StatusCreated {
		t.Fatalf("branch status=%d body=%s", rec.Code, rec.Body)
	}
	if rec := do(t, router, "POST", "/customers", `{"id":"c1","full_name":"Ada","home_branch_id":"b1"}`); rec.Code != http.StatusCreated {
		t.Fatalf("customer status=%d body=%s", rec.Code, rec.Body)
	}
	if rec := do(t, router, "POST", "/accounts", `{"id":"a1","customer_id":"c1"}`); rec.Code != http.StatusCreated {
		t.Fatalf("account status=%d body=%s", rec.Code, rec.Body)
	}
	if rec := do(t, router, "POST", "/loans", `{"id":"l1","account_id":"a1","amount":"1000","interest_rate":"5","status":"active"}`); rec.Code != http.StatusCreated {
		t.Fatalf("loan status=%d body=%s", rec.Code, rec.Body)
	}
	// Referential failures surface as HTTP errors, not silent drops.
	if rec := do(t, router, "POST", "/accounts", `{"id":"a2","customer_id":"ghost"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("account with unknown customer: status=%d", rec.Code)
	}
	if rec := do(t, router, "POST", "/customers", `{"id":"c1"}`); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate customer: status=%d", rec.Code)
	}
}
