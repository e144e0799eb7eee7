package services

import (
	"context"
	"testing"

	"tracker/internal/models"
	"tracker/internal/store"
	"tracker/internal/testutil"
)

func newHabitService(t *testing.T, st *store.Store) HabitServicer {
	t.Helper()
	svc := NewHabitService(st)
	testutil.AssertNoError(t, svc.SelectMonth(context.Background(), jan2024))
	return svc
}

func entryCount(t *testing.T, st *store.Store, habitID string) int {
	t.Helper()
	entries, err := st.HabitEntries.FindBy(context.Background(), "habit_id", habitID)
	testutil.AssertNoError(t, err)
	return len(entries)
}

func TestAddHabit(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns_order_and_default_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newHabitService(t, store.New(db))

		first, err := svc.AddHabit(ctx, HabitInput{Name: "Read", Category: models.HabitCategoryLearning, GoalValue: 20, Type: models.HabitTypeBoolean, Active: true})
		testutil.AssertNoError(t, err)
		second, err := svc.AddHabit(ctx, HabitInput{Name: "Run", Category: models.HabitCategoryHealth, GoalValue: 5, Type: models.HabitTypeNumeric, Unit: "km", Period: models.HabitPeriodDaily, Active: true})
		testutil.AssertNoError(t, err)

		if first.Order != 0 || second.Order != 1 {
			t.Errorf("expected orders 0 and 1, got %d and %d", first.Order, second.Order)
		}
		if first.Period != models.HabitPeriodMonthly {
			t.Errorf("expected default period monthly, got %s", first.Period)
		}

		habits, err := svc.ListHabits(ctx)
		testutil.AssertNoError(t, err)
		if len(habits) != 2 || habits[0].Name != "Read" {
			t.Errorf("unexpected habit list %+v", habits)
		}
	})

	t.Run("order_stays_unique_after_delete", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newHabitService(t, store.New(db))

		a, _ := svc.AddHabit(ctx, HabitInput{Name: "A", Category: models.HabitCategoryHealth, GoalValue: 1, Type: models.HabitTypeBoolean, Active: true})
		svc.AddHabit(ctx, HabitInput{Name: "B", Category: models.HabitCategoryHealth, GoalValue: 1, Type: models.HabitTypeBoolean, Active: true})
		testutil.AssertNoError(t, svc.DeleteHabit(ctx, a.ID))

		c, err := svc.AddHabit(ctx, HabitInput{Name: "C", Category: models.HabitCategoryHealth, GoalValue: 1, Type: models.HabitTypeBoolean, Active: true})
		testutil.AssertNoError(t, err)
		if c.Order != 2 {
			t.Errorf("expected order 2, got %d", c.Order)
		}
	})

	t.Run("rejects_bad_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newHabitService(t, store.New(db))

		_, err := svc.AddHabit(ctx, HabitInput{Name: " ", Category: models.HabitCategoryHealth, GoalValue: 1, Type: models.HabitTypeBoolean})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.AddHabit(ctx, HabitInput{Name: "x", Category: models.HabitCategoryHealth, GoalValue: 0, Type: models.HabitTypeBoolean})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
		_, err = svc.AddHabit(ctx, HabitInput{Name: "x", Category: "Chores", GoalValue: 1, Type: models.HabitTypeBoolean})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateHabit(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	st := store.New(db)
	habit := testutil.CreateTestHabit(t, db)
	svc := newHabitService(t, st)

	inactive := false
	goal := 12.0
	updated, err := svc.UpdateHabit(ctx, habit.ID, HabitUpdate{Active: &inactive, GoalValue: &goal})
	testutil.AssertNoError(t, err)
	if updated.Active || updated.GoalValue != 12 {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Name != habit.Name {
		t.Errorf("expected name to stay %s, got %s", habit.Name, updated.Name)
	}

	_, err = svc.UpdateHabit(ctx, "missing", HabitUpdate{Active: &inactive})
	testutil.AssertAppError(t, err, "HABIT_NOT_FOUND")
}

func TestToggleEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("two_toggles_restore_absent_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		st := store.New(db)
		habit := testutil.CreateTestHabit(t, db)
		svc := newHabitService(t, st)

		created, err := svc.ToggleEntry(ctx, habit.ID, "2024-01-10")
		testutil.AssertNoError(t, err)
		if created == nil || created.Value != 1 {
			t.Fatalf("expected an entry with value 1, got %+v", created)
		}
		if n := entryCount(t, st, habit.ID); n != 1 {
			t.Fatalf("expected 1 entry, got %d", n)
		}

		removed, err := svc.ToggleEntry(ctx, habit.ID, "2024-01-10")
		testutil.AssertNoError(t, err)
		if removed != nil {
			t.Errorf("expected nil after removal, got %+v", removed)
		}
		if n := entryCount(t, st, habit.ID); n != 0 {
			t.Errorf("expected no entries, got %d", n)
		}
	})

	t.Run("two_toggles_restore_present_entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		st := store.New(db)
		habit := testutil.CreateTestHabit(t, db)
		testutil.CreateTestEntry(t, db, habit.ID, "2024-01-10", 1)
		svc := newHabitService(t, st)

		_, err := svc.ToggleEntry(ctx, habit.ID, "2024-01-10")
		testutil.AssertNoError(t, err)
		_, err = svc.ToggleEntry(ctx, habit.ID, "2024-01-10")
		testutil.AssertNoError(t, err)

		entries, err := st.HabitEntries.FindBy(ctx, "habit_id", habit.ID)
		testutil.AssertNoError(t, err)
		if len(entries) != 1 || entries[0].Date != "2024-01-10" || entries[0].Value != 1 {
			t.Errorf("expected the entry to be back, got %+v", entries)
		}
	})

	t.Run("updates_working_set", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		habit := testutil.CreateTestHabit(t, db)
		svc := newHabitService(t, store.New(db))

		_, err := svc.ToggleEntry(ctx, habit.ID, "2024-01-10")
		testutil.AssertNoError(t, err)

		progress, err := svc.Progress(ctx, habit.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, "progress", 5, progress)
	})

	t.Run("date_outside_selected_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		st := store.New(db)
		habit := testutil.CreateTestHabit(t, db)
		svc := newHabitService(t, st)

		_, err := svc.ToggleEntry(ctx, habit.ID, "2024-02-10")
		testutil.AssertNoError(t, err)
		_, err = svc.ToggleEntry(ctx, habit.ID, "2024-02-10")
		testutil.AssertNoError(t, err)
		if n := entryCount(t, st, habit.ID); n != 0 {
			t.Errorf("expected no entries, got %d", n)
		}
	})

	t.Run("missing_habit_is_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		st := store.New(db)
		svc := newHabitService(t, st)

		entry, err := svc.ToggleEntry(ctx, "missing", "2024-01-10")
		testutil.AssertNoError(t, err)
		if entry != nil {
			t.Errorf("expected no entry, got %+v", entry)
		}
		if n := entryCount(t, st, "missing"); n != 0 {
			t.Errorf("expected nothing stored, got %d", n)
		}
	})

	t.Run("invalid_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		habit := testutil.CreateTestHabit(t, db)
		svc := newHabitService(t, store.New(db))

		_, err := svc.ToggleEntry(ctx, habit.ID, "2024-1-10")
		testutil.AssertAppError(t, err, "INVALID_DATE")
	})
}

func TestSetNumericValue(t *testing.T) {
	ctx := context.Background()

	newNumeric := func(t *testing.T) (*store.Store, HabitServicer, *models.Habit, func()) {
		db := testutil.SetupTestDB(t)
		st := store.New(db)
		habit := testutil.CreateTestHabitWith(t, db, &models.Habit{
			Name: "Water", Category: models.HabitCategoryHealth, GoalValue: 8,
			Type: models.HabitTypeNumeric, Unit: "glasses", Period: models.HabitPeriodDaily, Active: true,
		})
		return st, newHabitService(t, st), habit, func() { testutil.TeardownTestDB(t, db) }
	}

	t.Run("insert_then_update_in_place", func(t *testing.T) {
		st, svc, habit, done := newNumeric(t)
		defer done()

		first, err := svc.SetNumericValue(ctx, habit.ID, "2024-01-03", 4)
		testutil.AssertNoError(t, err)
		second, err := svc.SetNumericValue(ctx, habit.ID, "2024-01-03", 6)
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Errorf("expected the same entry to be updated, got %s and %s", first.ID, second.ID)
		}
		entries, err := st.HabitEntries.FindBy(ctx, "habit_id", habit.ID)
		testutil.AssertNoError(t, err)
		if len(entries) != 1 || entries[0].Value != 6 {
			t.Errorf("expected one entry of 6, got %+v", entries)
		}
	})

	t.Run("zero_deletes_entry", func(t *testing.T) {
		st, svc, habit, done := newNumeric(t)
		defer done()

		_, err := svc.SetNumericValue(ctx, habit.ID, "2024-01-03", 4)
		testutil.AssertNoError(t, err)
		entry, err := svc.SetNumericValue(ctx, habit.ID, "2024-01-03", 0)
		testutil.AssertNoError(t, err)
		if entry != nil {
			t.Errorf("expected nil entry, got %+v", entry)
		}
		if n := entryCount(t, st, habit.ID); n != 0 {
			t.Errorf("expected no entries, got %d", n)
		}
	})

	t.Run("zero_without_entry_stores_nothing", func(t *testing.T) {
		st, svc, habit, done := newNumeric(t)
		defer done()

		_, err := svc.SetNumericValue(ctx, habit.ID, "2024-01-03", 0)
		testutil.AssertNoError(t, err)
		_, err = svc.SetNumericValue(ctx, habit.ID, "2024-01-03", -2)
		testutil.AssertNoError(t, err)
		if n := entryCount(t, st, habit.ID); n != 0 {
			t.Errorf("expected no entries, got %d", n)
		}
	})

	t.Run("numeric_daily_progress", func(t *testing.T) {
		_, svc, habit, done := newNumeric(t)
		defer done()

		_, err := svc.SetNumericValue(ctx, habit.ID, "2024-01-03", 124)
		testutil.AssertNoError(t, err)
		progress, err := svc.Progress(ctx, habit.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertFloat(t, "progress", 50, progress)
	})
}

func TestDeleteHabit(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	st := store.New(db)

	doomed := testutil.CreateTestHabit(t, db)
	kept := testutil.CreateTestHabit(t, db)
	testutil.CreateTestEntry(t, db, doomed.ID, "2024-01-01", 1)
	testutil.CreateTestEntry(t, db, doomed.ID, "2023-12-31", 1)
	testutil.CreateTestEntry(t, db, kept.ID, "2024-01-01", 1)
	svc := newHabitService(t, st)

	testutil.AssertNoError(t, svc.DeleteHabit(ctx, doomed.ID))

	if n := entryCount(t, st, doomed.ID); n != 0 {
		t.Errorf("expected entries of deleted habit to be purged, got %d", n)
	}
	if n := entryCount(t, st, kept.ID); n != 1 {
		t.Errorf("expected other habit's entry to remain, got %d", n)
	}
	_, err := svc.GetHabit(ctx, doomed.ID)
	testutil.AssertAppError(t, err, "HABIT_NOT_FOUND")

	entries, err := svc.MonthEntries(ctx)
	testutil.AssertNoError(t, err)
	if len(entries) != 1 {
		t.Errorf("expected 1 entry in working set, got %d", len(entries))
	}

	testutil.AssertNoError(t, svc.DeleteHabit(ctx, "missing"))
}

func TestHabitDashboard(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	st := store.New(db)

	a := testutil.CreateTestHabit(t, db)
	b := testutil.CreateTestHabit(t, db)
	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04"} {
		testutil.CreateTestEntry(t, db, a.ID, d, 1)
	}
	for _, d := range []string{"2024-01-05", "2024-01-06", "2024-01-07"} {
		testutil.CreateTestEntry(t, db, b.ID, d, 1)
	}
	testutil.CreateTestEntry(t, db, a.ID, "2024-02-01", 1)
	svc := newHabitService(t, st)

	weeks, err := svc.WeeklyProgress(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertFloat(t, "week 1", 50, weeks[0].Progress)

	daily, err := svc.DailyCompletion(ctx, "2024-01-01")
	testutil.AssertNoError(t, err)
	testutil.AssertFloat(t, "daily", 50, daily)

	outside, err := svc.DailyCompletion(ctx, "2024-02-01")
	testutil.AssertNoError(t, err)
	testutil.AssertFloat(t, "daily outside month", 50, outside)

	top, err := svc.TopHabits(ctx, 1)
	testutil.AssertNoError(t, err)
	if len(top) != 1 || top[0].Habit.ID != a.ID {
		t.Errorf("expected %s on top, got %+v", a.ID, top)
	}

	monthly, err := svc.MonthlyProgress(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertFloat(t, "monthly", 100*7.0/62.0, monthly)

	all, err := svc.AllProgress(ctx)
	testutil.AssertNoError(t, err)
	if len(all) != 2 {
		t.Errorf("expected progress for 2 habits, got %d", len(all))
	}

	series, err := svc.DailySeries(ctx)
	testutil.AssertNoError(t, err)
	if len(series) != 31 {
		t.Errorf("expected 31 days, got %d", len(series))
	}
}
