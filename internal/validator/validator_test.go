package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestCustomValidators(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	tests := []struct {
		tag   string
		value string
		valid bool
	}{
		{"habit_category", "Health", true},
		{"habit_category", "health", false},
		{"habit_category", "Sleep", false},
		{"habit_type", "boolean", true},
		{"habit_type", "numeric", true},
		{"habit_type", "counter", false},
		{"habit_period", "daily", true},
		{"habit_period", "monthly", true},
		{"habit_period", "weekly", false},
		{"goal_type", "portfolio", true},
		{"goal_type", "stock", false},
		{"goal_period", "weekly", true},
		{"goal_period", "quarterly", false},
		{"tracking_type", "per-period", true},
		{"tracking_type", "cumulative", true},
		{"tracking_type", "per_period", false},
		{"goal_status", "failed", true},
		{"goal_status", "paused", false},
		{"transaction_type", "income", true},
		{"transaction_type", "expense", true},
		{"transaction_type", "transfer", false},
		{"iso_date", "2024-02-29", true},
		{"iso_date", "2023-02-29", false},
		{"iso_date", "2024-1-5", false},
		{"month", "2024-01", true},
		{"month", "2024-13", false},
		{"month", "2024-01-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag+"/"+tt.value, func(t *testing.T) {
			err := v.Var(tt.value, tt.tag)
			if tt.valid && err != nil {
				t.Errorf("expected %q to pass %s, got %v", tt.value, tt.tag, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %q to fail %s", tt.value, tt.tag)
			}
		})
	}
}
