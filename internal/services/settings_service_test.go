package services

import (
	"context"
	"testing"

	"tracker/internal/models"
	"tracker/internal/store"
	"tracker/internal/testutil"
)

func TestGetSettingsCreatesDefaults(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	st := store.New(db)
	svc := NewSettingsService(st)

	settings, err := svc.GetSettings(ctx)
	testutil.AssertNoError(t, err)
	if settings.ID != models.SettingsID || settings.Currency != "LKR" || settings.UserName != "User" || settings.MonthStartDay != 1 {
		t.Errorf("unexpected defaults %+v", settings)
	}

	_, err = svc.GetSettings(ctx)
	testutil.AssertNoError(t, err)
	n, err := st.Settings.Count(ctx)
	testutil.AssertNoError(t, err)
	if n != 1 {
		t.Errorf("expected a single settings record, got %d", n)
	}
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewSettingsService(store.New(db))

	name := "Nimal"
	day := 25
	updated, err := svc.UpdateSettings(ctx, SettingsUpdate{UserName: &name, MonthStartDay: &day})
	testutil.AssertNoError(t, err)
	if updated.UserName != "Nimal" || updated.MonthStartDay != 25 || updated.Currency != "LKR" {
		t.Errorf("unexpected settings %+v", updated)
	}

	bad := 31
	_, err = svc.UpdateSettings(ctx, SettingsUpdate{MonthStartDay: &bad})
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	blank := " "
	_, err = svc.UpdateSettings(ctx, SettingsUpdate{UserName: &blank})
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}
