package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"tracker/internal/dates"
	"tracker/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestHabit creates an active boolean monthly habit with a goal of 20.
func CreateTestHabit(t *testing.T, db *gorm.DB) *models.Habit {
	t.Helper()
	n := nextID()
	return CreateTestHabitWith(t, db, &models.Habit{
		Name:      fmt.Sprintf("Habit %d", n),
		Category:  models.HabitCategoryHealth,
		GoalValue: 20,
		Type:      models.HabitTypeBoolean,
		Period:    models.HabitPeriodMonthly,
		Active:    true,
		Order:     int(n),
	})
}

// CreateTestHabitWith inserts the given habit as-is.
func CreateTestHabitWith(t *testing.T, db *gorm.DB, habit *models.Habit) *models.Habit {
	t.Helper()
	if err := db.Create(habit).Error; err != nil {
		t.Fatalf("failed to create test habit: %v", err)
	}
	return habit
}

// CreateTestEntry logs value for habitID on date.
func CreateTestEntry(t *testing.T, db *gorm.DB, habitID, date string, value float64) *models.HabitEntry {
	t.Helper()
	entry := &models.HabitEntry{HabitID: habitID, Date: date, Value: value}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test habit entry: %v", err)
	}
	return entry
}

// CreateTestTransaction creates a transaction of the given type and amount in
// the first category for that type.
func CreateTestTransaction(t *testing.T, db *gorm.DB, txType models.TransactionType, amount float64, date string) *models.Transaction {
	t.Helper()
	return CreateTestTransactionIn(t, db, txType, models.CategoriesFor(txType)[0], amount, date)
}

// CreateTestTransactionIn creates a transaction in a specific category.
func CreateTestTransactionIn(t *testing.T, db *gorm.DB, txType models.TransactionType, category string, amount float64, date string) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		Type:        txType,
		Category:    category,
		Description: fmt.Sprintf("Transaction %d", nextID()),
		Amount:      amount,
		Date:        date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestStock creates a position of quantity shares at avgPrice, priced at avgPrice.
func CreateTestStock(t *testing.T, db *gorm.DB, quantity, avgPrice float64) *models.Stock {
	t.Helper()
	n := nextID()
	stock := &models.Stock{
		Symbol:       fmt.Sprintf("SYM%d.N0000", n),
		Name:         fmt.Sprintf("Company %d", n),
		Quantity:     quantity,
		AvgBuyPrice:  avgPrice,
		CurrentPrice: avgPrice,
		LastUpdated:  dates.Now(),
	}
	if err := db.Create(stock).Error; err != nil {
		t.Fatalf("failed to create test stock: %v", err)
	}
	return stock
}

// CreateTestGoal creates an active cumulative monthly goal with the given target.
func CreateTestGoal(t *testing.T, db *gorm.DB, target float64) *models.Goal {
	t.Helper()
	goal := &models.Goal{
		Name:         fmt.Sprintf("Goal %d", nextID()),
		Type:         models.GoalTypeFinance,
		Target:       target,
		Period:       models.GoalPeriodMonthly,
		TrackingType: models.TrackingCumulative,
		Status:       models.GoalStatusActive,
		StartDate:    dates.Today(),
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}
