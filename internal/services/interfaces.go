package services

import (
	"context"

	"tracker/internal/dates"
	"tracker/internal/models"
	"tracker/internal/pagination"
)

// HabitServicer defines the contract for habit tracking and habit metrics.
type HabitServicer interface {
	Refresher
	SelectMonth(ctx context.Context, month dates.Month) error
	SelectedMonth() dates.Month
	ListHabits(ctx context.Context) ([]models.Habit, error)
	GetHabit(ctx context.Context, id string) (*models.Habit, error)
	MonthEntries(ctx context.Context) ([]models.HabitEntry, error)
	AddHabit(ctx context.Context, in HabitInput) (*models.Habit, error)
	UpdateHabit(ctx context.Context, id string, upd HabitUpdate) (*models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
	ToggleEntry(ctx context.Context, habitID, date string) (*models.HabitEntry, error)
	SetNumericValue(ctx context.Context, habitID, date string, value float64) (*models.HabitEntry, error)
	Progress(ctx context.Context, habitID string) (float64, error)
	AllProgress(ctx context.Context) ([]HabitProgress, error)
	DailyCompletion(ctx context.Context, date string) (float64, error)
	WeeklyProgress(ctx context.Context) ([]WeekProgress, error)
	MonthlyProgress(ctx context.Context) (float64, error)
	DailySeries(ctx context.Context) ([]DayProgress, error)
	TopHabits(ctx context.Context, n int) ([]HabitProgress, error)
}

// FinanceServicer defines the contract for transactions and monthly totals.
type FinanceServicer interface {
	Refresher
	SelectMonth(ctx context.Context, month dates.Month) error
	SelectedMonth() dates.Month
	AddTransaction(ctx context.Context, in TransactionInput) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, upd TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	TotalByType(ctx context.Context, t models.TransactionType) (float64, error)
	NetSavings(ctx context.Context) (float64, error)
	CategoryTotals(ctx context.Context, t models.TransactionType) ([]CategoryTotal, error)
	Summary(ctx context.Context) (*FinanceSummary, error)
}

// PortfolioServicer defines the contract for stock positions.
type PortfolioServicer interface {
	Refresher
	ListStocks(ctx context.Context) ([]models.Stock, error)
	GetStock(ctx context.Context, id string) (*models.Stock, error)
	AddStock(ctx context.Context, in StockInput) (*models.Stock, error)
	AverageIn(ctx context.Context, id string, qty, price float64) (*models.Stock, error)
	Sell(ctx context.Context, id string, qty, price float64) (*SaleResult, error)
	UpdatePrice(ctx context.Context, id string, price float64) (*models.Stock, error)
	UpdateStock(ctx context.Context, id string, upd StockUpdate) (*models.Stock, error)
	DeleteStock(ctx context.Context, id string) error
	Summary(ctx context.Context) (*PortfolioSummary, error)
}

// GoalServicer defines the contract for goals.
type GoalServicer interface {
	Refresher
	ListGoals(ctx context.Context, status *models.GoalStatus) ([]models.Goal, error)
	GetGoal(ctx context.Context, id string) (*models.Goal, error)
	AddGoal(ctx context.Context, in GoalInput) (*models.Goal, error)
	UpdateGoal(ctx context.Context, id string, upd GoalUpdate) (*models.Goal, error)
	UpdateProgress(ctx context.Context, id string, current float64) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
}

// SettingsServicer defines the contract for the settings singleton.
type SettingsServicer interface {
	Refresher
	GetSettings(ctx context.Context) (*models.AppSettings, error)
	UpdateSettings(ctx context.Context, upd SettingsUpdate) (*models.AppSettings, error)
}

// BackupServicer defines the contract for whole-store export and import.
type BackupServicer interface {
	Export(ctx context.Context) (*Snapshot, error)
	ExportJSON(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, blob []byte) (*ImportResult, error)
}
