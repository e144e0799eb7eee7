package services

import (
	"context"
	"testing"

	"tracker/internal/models"
	"tracker/internal/pagination"
	"tracker/internal/store"
	"tracker/internal/testutil"
)

func newFinanceService(t *testing.T, st *store.Store) FinanceServicer {
	t.Helper()
	svc := NewFinanceService(st)
	testutil.AssertNoError(t, svc.SelectMonth(context.Background(), jan2024))
	return svc
}

func TestCategoryTotals(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	testutil.CreateTestTransactionIn(t, db, models.TransactionTypeExpense, "Food & Dining", 100, "2024-01-02")
	testutil.CreateTestTransactionIn(t, db, models.TransactionTypeExpense, "Food & Dining", 50, "2024-01-03")
	testutil.CreateTestTransactionIn(t, db, models.TransactionTypeExpense, "Transport", 30, "2024-01-04")
	testutil.CreateTestTransactionIn(t, db, models.TransactionTypeIncome, "Salary", 1000, "2024-01-01")
	svc := newFinanceService(t, store.New(db))

	totals, err := svc.CategoryTotals(ctx, models.TransactionTypeExpense)
	testutil.AssertNoError(t, err)

	if len(totals) != 2 {
		t.Fatalf("expected 2 categories, got %+v", totals)
	}
	if totals[0].Category != "Food & Dining" || totals[0].Total != 150 {
		t.Errorf("expected Food & Dining=150 first, got %+v", totals[0])
	}
	if totals[1].Category != "Transport" || totals[1].Total != 30 {
		t.Errorf("expected Transport=30 second, got %+v", totals[1])
	}

	_, err = svc.CategoryTotals(ctx, "transfer")
	testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
}

func TestCategoryTotalsFollowListOrder(t *testing.T) {
	txs := []models.Transaction{
		{Type: models.TransactionTypeExpense, Category: "Other", Amount: 500},
		{Type: models.TransactionTypeExpense, Category: "Bills", Amount: 10},
		{Type: models.TransactionTypeExpense, Category: "Transport", Amount: 0.1},
		{Type: models.TransactionTypeExpense, Category: "Transport", Amount: 0.2},
		{Type: models.TransactionTypeExpense, Category: "Gym", Amount: 40},
	}

	totals := CategoryTotals(txs, models.TransactionTypeExpense)
	want := []CategoryTotal{{"Transport", 0.3}, {"Bills", 10}, {"Other", 500}}
	if len(totals) != len(want) {
		t.Fatalf("expected %v, got %v", want, totals)
	}
	for i := range want {
		if totals[i] != want[i] {
			t.Errorf("position %d: expected %v, got %v", i, want[i], totals[i])
		}
	}
}

func TestFinanceTotals(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	testutil.CreateTestTransaction(t, db, models.TransactionTypeIncome, 5000, "2024-01-01")
	testutil.CreateTestTransaction(t, db, models.TransactionTypeIncome, 250.5, "2024-01-31")
	testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, 1200, "2024-01-15")
	testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, 999, "2024-02-01")
	svc := newFinanceService(t, store.New(db))

	income, err := svc.TotalByType(ctx, models.TransactionTypeIncome)
	testutil.AssertNoError(t, err)
	testutil.AssertFloat(t, "income", 5250.5, income)

	expenses, err := svc.TotalByType(ctx, models.TransactionTypeExpense)
	testutil.AssertNoError(t, err)
	testutil.AssertFloat(t, "expenses", 1200, expenses)

	net, err := svc.NetSavings(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertFloat(t, "net savings", 4050.5, net)

	summary, err := svc.Summary(ctx)
	testutil.AssertNoError(t, err)
	if summary.Month != "2024-01" || summary.TransactionCount != 3 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newFinanceService(t, store.New(db))

	t.Run("add_refreshes_totals", func(t *testing.T) {
		_, err := svc.AddTransaction(ctx, TransactionInput{Type: models.TransactionTypeExpense, Category: "Shopping", Amount: 75, Date: "2024-01-20"})
		testutil.AssertNoError(t, err)

		total, err := svc.TotalByType(ctx, models.TransactionTypeExpense)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, "expenses", 75, total)
	})

	t.Run("add_rejects_bad_input", func(t *testing.T) {
		_, err := svc.AddTransaction(ctx, TransactionInput{Type: models.TransactionTypeExpense, Category: "Shopping", Amount: 0, Date: "2024-01-20"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.AddTransaction(ctx, TransactionInput{Type: "gift", Amount: 5, Date: "2024-01-20"})
		testutil.AssertAppError(t, err, "INVALID_TRANSACTION_TYPE")
		_, err = svc.AddTransaction(ctx, TransactionInput{Type: models.TransactionTypeIncome, Amount: 5, Date: "20/01/2024"})
		testutil.AssertAppError(t, err, "INVALID_DATE")
	})

	t.Run("update_and_delete", func(t *testing.T) {
		tx, err := svc.AddTransaction(ctx, TransactionInput{Type: models.TransactionTypeIncome, Category: "Gift", Amount: 20, Date: "2024-01-21"})
		testutil.AssertNoError(t, err)

		amount := 40.0
		updated, err := svc.UpdateTransaction(ctx, tx.ID, TransactionUpdate{Amount: &amount})
		testutil.AssertNoError(t, err)
		if updated.Amount != 40 || updated.Category != "Gift" {
			t.Errorf("unexpected update result %+v", updated)
		}

		income, err := svc.TotalByType(ctx, models.TransactionTypeIncome)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, "income", 40, income)

		testutil.AssertNoError(t, svc.DeleteTransaction(ctx, tx.ID))
		_, err = svc.GetTransaction(ctx, tx.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		testutil.AssertNoError(t, svc.DeleteTransaction(ctx, tx.ID))
	})

	t.Run("update_missing", func(t *testing.T) {
		amount := 1.0
		_, err := svc.UpdateTransaction(ctx, "missing", TransactionUpdate{Amount: &amount})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestListTransactions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, 10, "2024-01-05")
	testutil.CreateTestTransaction(t, db, models.TransactionTypeExpense, 20, "2024-01-25")
	testutil.CreateTestTransaction(t, db, models.TransactionTypeIncome, 30, "2024-01-15")
	svc := newFinanceService(t, store.New(db))

	all, err := svc.ListTransactions(ctx, TransactionFilter{}, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if all.TotalItems != 3 || all.TotalPages != 2 || len(all.Data) != 2 {
		t.Fatalf("unexpected page %+v", all)
	}
	if all.Data[0].Date != "2024-01-25" {
		t.Errorf("expected newest first, got %s", all.Data[0].Date)
	}

	expense := models.TransactionTypeExpense
	filtered, err := svc.ListTransactions(ctx, TransactionFilter{Type: &expense}, pagination.PageRequest{})
	testutil.AssertNoError(t, err)
	if filtered.TotalItems != 2 {
		t.Errorf("expected 2 expenses, got %d", filtered.TotalItems)
	}
}
