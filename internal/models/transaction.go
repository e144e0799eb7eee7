package models

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// ExpenseCategories is the fixed expense category list in display order.
var ExpenseCategories = []string{
	"Food & Dining",
	"Transport",
	"Utilities",
	"Shopping",
	"Entertainment",
	"Healthcare",
	"Education",
	"Bills",
	"Other",
}

// IncomeCategories is the fixed income category list in display order.
var IncomeCategories = []string{
	"Salary",
	"Freelance",
	"Investment",
	"Gift",
	"Refund",
	"Other",
}

// CategoriesFor returns the fixed category list for a transaction type.
func CategoriesFor(t TransactionType) []string {
	switch t {
	case TransactionTypeIncome:
		return IncomeCategories
	case TransactionTypeExpense:
		return ExpenseCategories
	default:
		return nil
	}
}

// Transaction represents a single income or expense
type Transaction struct {
	Base
	Type        TransactionType `gorm:"not null;index" json:"type"`
	Category    string          `gorm:"not null;index" json:"category"`
	Description string          `json:"description"`
	Amount      float64         `gorm:"not null" json:"amount"`
	Date        string          `gorm:"not null;index" json:"date"`
}
