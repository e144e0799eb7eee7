package models

// HabitCategory groups habits for display.
type HabitCategory string

const (
	HabitCategoryHealth       HabitCategory = "Health"
	HabitCategoryLearning     HabitCategory = "Learning"
	HabitCategoryFinance      HabitCategory = "Finance"
	HabitCategoryProductivity HabitCategory = "Productivity"
	HabitCategoryPersonal     HabitCategory = "Personal"
)

// HabitCategories is the fixed category list in display order.
var HabitCategories = []HabitCategory{
	HabitCategoryHealth,
	HabitCategoryLearning,
	HabitCategoryFinance,
	HabitCategoryProductivity,
	HabitCategoryPersonal,
}

// HabitType says whether a habit is ticked off or measured.
type HabitType string

const (
	HabitTypeBoolean HabitType = "boolean"
	HabitTypeNumeric HabitType = "numeric"
)

// HabitPeriod is the span a habit's goal value applies to.
type HabitPeriod string

const (
	HabitPeriodDaily   HabitPeriod = "daily"
	HabitPeriodMonthly HabitPeriod = "monthly"
)

// HabitKind is the closed set of habit behaviours, derived from type and period.
type HabitKind int

const (
	KindBooleanMonthly HabitKind = iota
	KindBooleanDaily
	KindNumericMonthly
	KindNumericDaily
)

func (k HabitKind) String() string {
	switch k {
	case KindBooleanMonthly:
		return "boolean/monthly"
	case KindBooleanDaily:
		return "boolean/daily"
	case KindNumericMonthly:
		return "numeric/monthly"
	case KindNumericDaily:
		return "numeric/daily"
	default:
		return "unknown"
	}
}

// Habit represents a recurring activity the user tracks.
type Habit struct {
	Base
	Name      string        `gorm:"not null" json:"name"`
	Category  HabitCategory `gorm:"not null" json:"category"`
	GoalValue float64       `gorm:"not null" json:"goalValue"`
	Type      HabitType     `gorm:"not null" json:"type"`
	Unit      string        `json:"unit,omitempty"`
	Period    HabitPeriod   `gorm:"not null" json:"period"`
	Active    bool          `gorm:"not null;index" json:"active"`
	Order     int           `gorm:"column:display_order;not null;index" json:"order"`
}

// Kind classifies the habit. An unset period counts as monthly.
func (h *Habit) Kind() HabitKind {
	daily := h.Period == HabitPeriodDaily
	switch {
	case h.Type == HabitTypeNumeric && daily:
		return KindNumericDaily
	case h.Type == HabitTypeNumeric:
		return KindNumericMonthly
	case daily:
		return KindBooleanDaily
	default:
		return KindBooleanMonthly
	}
}

// HabitEntry records that a habit was done, or how much was logged, on a date.
// There is at most one entry per (habit, date).
type HabitEntry struct {
	Base
	HabitID string  `gorm:"not null;uniqueIndex:idx_habit_entries_habit_date;index" json:"habitId"`
	Date    string  `gorm:"not null;uniqueIndex:idx_habit_entries_habit_date;index" json:"date"`
	Value   float64 `gorm:"not null" json:"value"`
}
