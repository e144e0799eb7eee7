package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/models"
	"tracker/internal/store"
	"tracker/internal/testutil"
)

// seedStore fills every collection with a few records.
func seedStore(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()

	habits := NewHabitService(st)
	goals := NewGoalService(st)
	stocks := NewPortfolioService(st)
	finance := NewFinanceService(st)
	settings := NewSettingsService(st)

	read, err := habits.AddHabit(ctx, HabitInput{Name: "Read", Category: models.HabitCategoryLearning, GoalValue: 20, Type: models.HabitTypeBoolean, Active: true})
	require.NoError(t, err)
	_, err = habits.AddHabit(ctx, HabitInput{Name: "Walk", Category: models.HabitCategoryHealth, GoalValue: 5, Type: models.HabitTypeNumeric, Unit: "km", Period: models.HabitPeriodDaily, Active: false})
	require.NoError(t, err)
	_, err = habits.ToggleEntry(ctx, read.ID, "2024-01-01")
	require.NoError(t, err)
	_, err = habits.ToggleEntry(ctx, read.ID, "2024-01-02")
	require.NoError(t, err)

	_, err = goals.AddGoal(ctx, GoalInput{Name: "Save", Type: models.GoalTypeFinance, Target: 1000, Period: models.GoalPeriodMonthly, StartDate: "2024-01-01", EndDate: "2024-12-31"})
	require.NoError(t, err)

	_, err = stocks.AddStock(ctx, StockInput{Symbol: "COMB.N0000", Name: "Commercial Bank", Quantity: 12.5, AvgBuyPrice: 88.4, CurrentPrice: floatPtr(91.2)})
	require.NoError(t, err)

	_, err = finance.AddTransaction(ctx, TransactionInput{Type: models.TransactionTypeExpense, Category: "Food & Dining", Description: "Lunch", Amount: 1450.75, Date: "2024-01-03"})
	require.NoError(t, err)

	_, err = settings.GetSettings(ctx)
	require.NoError(t, err)
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()

	srcDB := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, srcDB)
	src := store.New(srcDB)
	seedStore(t, src)

	blob, err := NewBackupService(src).ExportJSON(ctx)
	require.NoError(t, err)

	dstDB := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, dstDB)
	dst := store.New(dstDB)

	result, err := NewBackupService(dst).Import(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Habits)
	assert.Equal(t, 2, result.HabitEntries)

	want, err := NewBackupService(src).Export(ctx)
	require.NoError(t, err)
	got, err := NewBackupService(dst).Export(ctx)
	require.NoError(t, err)

	assert.ElementsMatch(t, want.Data.Habits, got.Data.Habits)
	assert.ElementsMatch(t, want.Data.HabitEntries, got.Data.HabitEntries)
	assert.ElementsMatch(t, want.Data.Goals, got.Data.Goals)
	assert.ElementsMatch(t, want.Data.Stocks, got.Data.Stocks)
	assert.ElementsMatch(t, want.Data.Transactions, got.Data.Transactions)
	assert.ElementsMatch(t, want.Data.Settings, got.Data.Settings)
}

func TestExportFormat(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	blob, err := NewBackupService(store.New(db)).ExportJSON(ctx)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(blob, &raw))
	assert.JSONEq(t, "1", string(raw["version"]))
	assert.Contains(t, raw, "exportedAt")

	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["data"], &data))
	for _, key := range []string{"habits", "habitEntries", "goals", "stocks", "transactions", "settings"} {
		require.Contains(t, data, key)
		assert.JSONEq(t, "[]", string(data[key]), key)
	}
}

func TestImportRejectsMalformedBackup(t *testing.T) {
	ctx := context.Background()

	blobs := map[string]string{
		"not_json":        `{"version":`,
		"missing_version": `{"data":{"habits":[]}}`,
		"zero_version":    `{"version":0,"data":{}}`,
		"missing_data":    `{"version":1}`,
		"null_data":       `{"version":1,"data":null}`,
	}

	for name, blob := range blobs {
		t.Run(name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			defer testutil.TeardownTestDB(t, db)
			st := store.New(db)
			goal := testutil.CreateTestGoal(t, db, 10)

			_, err := NewBackupService(st).Import(ctx, []byte(blob))
			testutil.AssertAppError(t, err, "INVALID_BACKUP")

			kept, err := st.Goals.Get(ctx, goal.ID)
			require.NoError(t, err)
			assert.NotNil(t, kept, "store must be untouched after a rejected import")
		})
	}
}

func TestImportReplacesEverything(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	st := store.New(db)

	testutil.CreateTestHabit(t, db)
	testutil.CreateTestStock(t, db, 1, 1)
	testutil.CreateTestTransaction(t, db, models.TransactionTypeIncome, 10, "2024-01-01")

	blob := `{
		"version": 1,
		"exportedAt": "2024-02-01T10:00:00.000Z",
		"data": {
			"goals": [{"id": "g1", "name": "Read 12 books", "type": "habit", "target": 12, "current": 3,
				"period": "yearly", "trackingType": "cumulative", "status": "active",
				"startDate": "2024-01-01", "createdAt": "2024-01-01T00:00:00.000Z"}]
		}
	}`

	habits := NewHabitService(st)
	goals := NewGoalService(st)
	settings := NewSettingsService(st)
	_, err := habits.ListHabits(ctx)
	require.NoError(t, err)

	result, err := NewBackupService(st, habits, goals, settings).Import(ctx, []byte(blob))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Goals)

	for name, count := range map[string]func(context.Context) (int64, error){
		"habits":       st.Habits.Count,
		"stocks":       st.Stocks.Count,
		"transactions": st.Transactions.Count,
	} {
		n, err := count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n, "%s should be empty after import", name)
	}

	t.Run("services_see_imported_data", func(t *testing.T) {
		list, err := habits.ListHabits(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		g, err := goals.GetGoal(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, 3.0, g.Current)

		s, err := settings.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.SettingsID, s.ID)
	})
}

func TestImportKeepsImportedSettings(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	st := store.New(db)
	settings := NewSettingsService(st)

	_, err := settings.GetSettings(ctx)
	require.NoError(t, err)

	blob := `{"version":1,"exportedAt":"2024-02-01T10:00:00Z","data":{"settings":[
		{"id":"default","userName":"Kamala","currency":"LKR","monthStartDay":10,
		 "createdAt":"2023-06-01T00:00:00Z","updatedAt":"2023-07-01T00:00:00Z"}]}}`

	_, err = NewBackupService(st, settings).Import(ctx, []byte(blob))
	require.NoError(t, err)

	s, err := settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kamala", s.UserName)
	assert.Equal(t, 10, s.MonthStartDay)
	assert.Equal(t, "2023-06-01T00:00:00Z", s.CreatedAt)
}
