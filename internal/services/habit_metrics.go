package services

import (
	"math"
	"sort"

	"tracker/internal/dates"
	"tracker/internal/models"
)

// HabitProgress pairs a habit with its progress percentage.
type HabitProgress struct {
	Habit    models.Habit `json:"habit"`
	Progress float64      `json:"progress"`
}

// WeekProgress is the completion percentage of one week of a month.
// Weeks are numbered from 1 within the month.
type WeekProgress struct {
	Week     int     `json:"week"`
	Days     int     `json:"days"`
	Progress float64 `json:"progress"`
}

// DayProgress is the completion percentage of a single date.
type DayProgress struct {
	Date     string  `json:"date"`
	Progress float64 `json:"progress"`
}

// ProgressFor returns a habit's progress over a period of the given number
// of days, counting only entries that belong to the habit. Numeric kinds are
// not capped so overachievement shows.
func ProgressFor(habit *models.Habit, entries []models.HabitEntry, days int) float64 {
	if habit == nil || habit.GoalValue <= 0 {
		return 0
	}

	var count, sum float64
	for i := range entries {
		if entries[i].HabitID == habit.ID {
			count++
			sum += entries[i].Value
		}
	}

	switch habit.Kind() {
	case models.KindBooleanMonthly:
		return math.Min(100, 100*count/habit.GoalValue)
	case models.KindBooleanDaily:
		if days <= 0 {
			return 0
		}
		return math.Min(100, 100*count/(habit.GoalValue*float64(days)))
	case models.KindNumericMonthly:
		return 100 * sum / habit.GoalValue
	case models.KindNumericDaily:
		if days <= 0 {
			return 0
		}
		return 100 * sum / (habit.GoalValue * float64(days))
	default:
		return 0
	}
}

// RankingProgress is ProgressFor capped at 100, for rankings and rings.
func RankingProgress(habit *models.Habit, entries []models.HabitEntry, days int) float64 {
	return math.Min(100, ProgressFor(habit, entries, days))
}

// ActiveHabits filters habits to the active ones, keeping their order.
func ActiveHabits(habits []models.Habit) []models.Habit {
	active := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if h.Active {
			active = append(active, h)
		}
	}
	return active
}

// countOn returns how many entries fall on date.
func countOn(entries []models.HabitEntry, date string) int {
	n := 0
	for i := range entries {
		if entries[i].Date == date {
			n++
		}
	}
	return n
}

// DailyCompletion returns the share of active habits logged on date.
func DailyCompletion(activeCount int, entries []models.HabitEntry, date string) float64 {
	if activeCount == 0 {
		return 0
	}
	return 100 * float64(countOn(entries, date)) / float64(activeCount)
}

// WeeklyProgress splits month into Monday-start weeks and returns the
// completion of each. It returns an empty slice when there are no active habits.
func WeeklyProgress(month dates.Month, activeCount int, entries []models.HabitEntry) []WeekProgress {
	if activeCount == 0 {
		return []WeekProgress{}
	}

	weeks := month.Weeks()
	out := make([]WeekProgress, 0, len(weeks))
	for i, week := range weeks {
		completed := 0
		for _, d := range week {
			completed += countOn(entries, d)
		}
		possible := activeCount * len(week)
		out = append(out, WeekProgress{
			Week:     i + 1,
			Days:     len(week),
			Progress: 100 * float64(completed) / float64(possible),
		})
	}
	return out
}

// MonthlyProgress returns the share of all possible (habit, day) slots in
// month that have an entry.
func MonthlyProgress(month dates.Month, activeCount int, entries []models.HabitEntry) float64 {
	possible := month.NumDays() * activeCount
	if possible == 0 {
		return 0
	}
	completed := 0
	for i := range entries {
		if month.Contains(entries[i].Date) {
			completed++
		}
	}
	return 100 * float64(completed) / float64(possible)
}

// DailySeries returns the completion of every day in month.
func DailySeries(month dates.Month, activeCount int, entries []models.HabitEntry) []DayProgress {
	days := month.Days()
	out := make([]DayProgress, 0, len(days))
	for _, d := range days {
		out = append(out, DayProgress{Date: d, Progress: DailyCompletion(activeCount, entries, d)})
	}
	return out
}

// TopHabits ranks the active habits by capped progress, highest first.
// Ties keep the order habits were given in.
func TopHabits(habits []models.Habit, entries []models.HabitEntry, days, n int) []HabitProgress {
	ranked := make([]HabitProgress, 0, len(habits))
	for _, h := range ActiveHabits(habits) {
		ranked = append(ranked, HabitProgress{Habit: h, Progress: RankingProgress(&h, entries, days)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Progress > ranked[j].Progress
	})

	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
