// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tracker/internal/dates"
	"tracker/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("habit_category", validateHabitCategory)
	_ = v.RegisterValidation("habit_type", validateHabitType)
	_ = v.RegisterValidation("habit_period", validateHabitPeriod)
	_ = v.RegisterValidation("goal_type", validateGoalType)
	_ = v.RegisterValidation("goal_period", validateGoalPeriod)
	_ = v.RegisterValidation("tracking_type", validateTrackingType)
	_ = v.RegisterValidation("goal_status", validateGoalStatus)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("month", validateMonth)
}

func validateHabitCategory(fl validator.FieldLevel) bool {
	value := models.HabitCategory(fl.Field().String())
	for _, c := range models.HabitCategories {
		if c == value {
			return true
		}
	}
	return false
}

func validateHabitType(fl validator.FieldLevel) bool {
	switch models.HabitType(fl.Field().String()) {
	case models.HabitTypeBoolean, models.HabitTypeNumeric:
		return true
	}
	return false
}

func validateHabitPeriod(fl validator.FieldLevel) bool {
	switch models.HabitPeriod(fl.Field().String()) {
	case models.HabitPeriodDaily, models.HabitPeriodMonthly:
		return true
	}
	return false
}

func validateGoalType(fl validator.FieldLevel) bool {
	switch models.GoalType(fl.Field().String()) {
	case models.GoalTypeHabit, models.GoalTypeFinance, models.GoalTypePortfolio:
		return true
	}
	return false
}

func validateGoalPeriod(fl validator.FieldLevel) bool {
	switch models.GoalPeriod(fl.Field().String()) {
	case models.GoalPeriodDaily, models.GoalPeriodWeekly, models.GoalPeriodMonthly, models.GoalPeriodYearly:
		return true
	}
	return false
}

func validateTrackingType(fl validator.FieldLevel) bool {
	switch models.TrackingType(fl.Field().String()) {
	case models.TrackingPerPeriod, models.TrackingCumulative:
		return true
	}
	return false
}

func validateGoalStatus(fl validator.FieldLevel) bool {
	switch models.GoalStatus(fl.Field().String()) {
	case models.GoalStatusActive, models.GoalStatusCompleted, models.GoalStatusFailed:
		return true
	}
	return false
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch models.TransactionType(fl.Field().String()) {
	case models.TransactionTypeIncome, models.TransactionTypeExpense:
		return true
	}
	return false
}

func validateISODate(fl validator.FieldLevel) bool {
	return dates.Valid(fl.Field().String())
}

func validateMonth(fl validator.FieldLevel) bool {
	_, err := dates.ParseMonth(fl.Field().String())
	return err == nil
}
