package ledger_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bank-ledger/ledger"
	"bank-ledger/models"
	"bank-ledger/storage"
)

func seedAccount(t *testing.T, store *storage.Mem, customerID, accountID string, balance int64, status models.AccountStatus) {
	t.Helper()
	ctx := context.Background()
	err := store.CreateCustomer(ctx, models.Customer{ID: customerID, FullName: "Customer " + customerID})
	if err != nil && !errors.Is(err, ledger.ErrDuplicateID) {
		t.Fatal(err)
	}
	err = store.CreateAccount(ctx, models.Account{
		ID:         accountID,
		CustomerID: customerID,
		Type:       models.AccountSavings,
		Balance:    decimal.NewFromInt(balance),
		CreatedAt:  time.Now(),
		Status:     status,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func balance(t *testing.T, store *storage.Mem, accountID string) decimal.Decimal {
	t.Helper()
	a, err := store.Account(context.Background(), accountID)
	if err != nil {
		t.Fatal(err)
	}
	return a.Balance
}

func TestAppendDepositWithdraw(t *testing.T) {
	store := storage.NewMem()
	led := ledger.New(store)
	seedAccount(t, store, "c1", "a1", 1000, models.AccountActive)
	ctx := context.Background()

	if _, err := led.Append(ctx, "a1", models.Deposit, decimal.NewFromInt(200), time.Now(), "cash"); err != nil {
		t.Fatal(err)
	}
	if got := balance(t, store, "a1"); !got.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("balance=%s want=1200", got)
	}

	// Overdraft is permitted: the withdrawal exceeds the balance.
	if _, err := led.Append(ctx, "a1", models.Withdrawal, decimal.NewFromInt(1500), time.Now(), "cash"); err != nil {
		t.Fatal(err)
	}
	if got := balance(t, store, "a1"); !got.Equal(decimal.NewFromInt(-300)) {
		t.Fatalf("balance=%s want=-300", got)
	}
}

func TestAppendRejections(t *testing.T) {
	store := storage.NewMem()
	led := ledger.New(store)
	seedAccount(t, store, "c1", "a1", 100, models.AccountActive)
	seedAccount(t, store, "c1", "a2", 100, models.AccountClosed)
	ctx := context.Background()

	cases := []struct {
		name      string
		accountID string
		txType    models.TransactionType
		amount    decimal.Decimal
		want      error
	}{
		{"zero amount", "a1", models.Deposit, decimal.Zero, ledger.ErrInvalidAmount},
		{"negative amount", "a1", models.Withdrawal, decimal.NewFromInt(-5), ledger.ErrInvalidAmount},
		{"unsupported type", "a1", "transfer", decimal.NewFromInt(5), ledger.ErrUnsupportedType},
		{"missing account", "nope", models.Deposit, decimal.NewFromInt(5), ledger.ErrAccountNotFound},
		{"closed account", "a2", models.Deposit, decimal.NewFromInt(5), ledger.ErrAccountNotEligible},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := led.Append(ctx, tc.accountID, tc.txType, tc.amount, time.Now(), "cash"); !errors.Is(err, tc.want) {
				t.Fatalf("err=%v want=%v", err, tc.want)
			}
		})
	}

	// No failed append may leave a transaction behind.
	txs, err := store.Transactions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 0 {
		t.Fatalf("transactions=%d want=0 after rejected appends", len(txs))
	}
	if got := balance(t, store, "a1"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance=%s want=100 after rejected appends", got)
	}
}

// TestBalanceInvariantRandomized drives a random interleaving of deposits
// and withdrawals across several accounts and checks every stored balance
// equals the signed sum of its transaction history.
func TestBalanceInvariantRandomized(t *testing.T) {
	store := storage.NewMem()
	led := ledger.New(store)
	ctx := context.Background()

	accountIDs := []string{"a1", "a2", "a3"}
	for _, id := range accountIDs {
		seedAccount(t, store, "c1", id, 0, models.AccountActive)
	}

	rng := rand.New(rand.NewSource(42))
	expected := make(map[string]decimal.Decimal)
	for i := 0; i < 500; i++ {
		id := accountIDs[rng.Intn(len(accountIDs))]
		amount := decimal.NewFromInt(rng.Int63n(1000) + 1)
		txType := models.Deposit
		signed := amount
		if rng.Intn(2) == 0 {
			txType = models.Withdrawal
			signed = amount.Neg()
		}
		if _, err := led.Append(ctx, id, txType, amount, time.Now(), "cash"); err != nil {
			t.Fatal(err)
		}
		expected[id] = expected[id].Add(signed)
	}

	for _, id := range accountIDs {
		got := balance(t, store, id)
		if !got.Equal(expected[id]) {
			t.Fatalf("account %s: balance=%s want=%s", id, got, expected[id])
		}

		// Cross-check against the recorded history itself.
		txs, err := store.TransactionsByAccount(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		sum := decimal.Zero
		for _, tx := range txs {
			if tx.Type == models.Deposit {
				sum = sum.Add(tx.Amount)
			} else {
				sum = sum.Sub(tx.Amount)
			}
		}
		if !got.Equal(sum) {
			t.Fatalf("account %s: balance=%s history sum=%s", id, got, sum)
		}
	}
}

// TestConcurrentDepositsSameAccount checks no update is lost when many
// callers append to one account at once.
func TestConcurrentDepositsSameAccount(t *testing.T) {
	store := storage.NewMem()
	led := ledger.New(store)
	seedAccount(t, store, "c1", "a1", 1000, models.AccountActive)

	const workers = 100
	amount := decimal.NewFromInt(7)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := led.Append(context.Background(), "a1", models.Deposit, amount, time.Now(), "cash"); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()

	want := decimal.NewFromInt(1000 + workers*7)
	if got := balance(t, store, "a1"); !got.Equal(want) {
		t.Fatalf("balance=%s want=%s", got, want)
	}
}

func TestOnAppendHook(t *testing.T) {
	store := storage.NewMem()
	led := ledger.New(store)
	seedAccount(t, store, "c1", "a1", 0, models.AccountActive)

	calls := 0
	led.OnAppend(func(ctx context.Context) { calls++ })

	ctx := context.Background()
	if _, err := led.Append(ctx, "a1", models.Deposit, decimal.NewFromInt(1), time.Now(), "cash"); err != nil {
		t.Fatal(err)
	}
	if _, err := led.Append(ctx, "a1", models.Deposit, decimal.Zero, time.Now(), "cash"); err == nil {
		t.Fatal("expected rejection")
	}
	if calls != 1 {
		t.Fatalf("hook calls=%d want=1 (failed appends must not fire it)", calls)
	}
}
