package services

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"tracker/internal/dates"
	apperrors "tracker/internal/errors"
	"tracker/internal/logger"
	"tracker/internal/models"
	"tracker/internal/store"
)

// HabitInput holds the fields supplied when creating a habit.
type HabitInput struct {
	Name      string
	Category  models.HabitCategory
	GoalValue float64
	Type      models.HabitType
	Unit      string
	Period    models.HabitPeriod
	Active    bool
}

// HabitUpdate holds optional fields for a partial habit update.
type HabitUpdate struct {
	Name      *string
	Category  *models.HabitCategory
	GoalValue *float64
	Type      *models.HabitType
	Unit      *string
	Period    *models.HabitPeriod
	Active    *bool
}

// habitService handles habit records and their derived metrics. It keeps
// the full habit list and the selected month's entries in memory; both are
// refreshed from the store after every mutation.
type habitService struct {
	mu    sync.Mutex
	store *store.Store
	log   *zap.SugaredLogger

	loaded  bool
	month   dates.Month
	habits  []models.Habit
	entries []models.HabitEntry
}

// NewHabitService creates a new HabitServicer over st, showing the current month.
func NewHabitService(st *store.Store) HabitServicer {
	return &habitService{
		store: st,
		log:   logger.Named("habits"),
		month: dates.CurrentMonth(),
	}
}

// Reload discards the working set and reads it again from the store.
func (s *habitService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *habitService) reload(ctx context.Context) error {
	habits, err := s.store.Habits.AllOrderedBy(ctx, "display_order")
	if err != nil {
		return err
	}
	entries, err := s.store.HabitEntries.RangeByField(ctx, "date", s.month.FirstDay(), s.month.LastDay(), true)
	if err != nil {
		return err
	}
	s.habits = habits
	s.entries = entries
	s.loaded = true
	return nil
}

func (s *habitService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.reload(ctx)
}

func (s *habitService) reloadEntries(ctx context.Context) error {
	entries, err := s.store.HabitEntries.RangeByField(ctx, "date", s.month.FirstDay(), s.month.LastDay(), true)
	if err != nil {
		return err
	}
	s.entries = entries
	return nil
}

func (s *habitService) find(id string) *models.Habit {
	for i := range s.habits {
		if s.habits[i].ID == id {
			h := s.habits[i]
			return &h
		}
	}
	return nil
}

// SelectMonth changes the month whose entries are loaded.
func (s *habitService) SelectMonth(ctx context.Context, month dates.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	if s.month == month {
		return nil
	}
	s.month = month
	return s.reloadEntries(ctx)
}

// SelectedMonth returns the month whose entries are loaded.
func (s *habitService) SelectedMonth() dates.Month {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month
}

// ListHabits returns every habit in display order.
func (s *habitService) ListHabits(ctx context.Context) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]models.Habit, len(s.habits))
	copy(out, s.habits)
	return out, nil
}

// GetHabit returns a single habit.
func (s *habitService) GetHabit(ctx context.Context, id string) (*models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	h := s.find(id)
	if h == nil {
		return nil, apperrors.ErrHabitNotFound
	}
	return h, nil
}

// MonthEntries returns the loaded month's entries.
func (s *habitService) MonthEntries(ctx context.Context) ([]models.HabitEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]models.HabitEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// AddHabit creates a habit at the end of the display order. An unset period
// defaults to monthly.
func (s *habitService) AddHabit(ctx context.Context, in HabitInput) (*models.Habit, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if in.GoalValue <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal value must be greater than zero")
	}
	if in.Period == "" {
		in.Period = models.HabitPeriodMonthly
	}
	if err := checkHabitKind(in.Category, in.Type, in.Period); err != nil {
		return nil, err
	}
	if in.Type != models.HabitTypeNumeric {
		in.Unit = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	habit := &models.Habit{
		Name:      in.Name,
		Category:  in.Category,
		GoalValue: in.GoalValue,
		Type:      in.Type,
		Unit:      in.Unit,
		Period:    in.Period,
		Active:    in.Active,
		Order:     s.nextOrder(),
	}
	if err := s.store.Habits.Add(ctx, habit); err != nil {
		s.log.Errorw("failed to add habit", "error", err)
		return nil, err
	}
	s.habits = append(s.habits, *habit)
	s.log.Debugw("habit added", "habit_id", habit.ID, "order", habit.Order)
	return habit, nil
}

func checkHabitKind(category models.HabitCategory, typ models.HabitType, period models.HabitPeriod) error {
	known := false
	for _, c := range models.HabitCategories {
		if c == category {
			known = true
		}
	}
	if !known {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown habit category")
	}
	if typ != models.HabitTypeBoolean && typ != models.HabitTypeNumeric {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "habit type must be boolean or numeric")
	}
	if period != models.HabitPeriodDaily && period != models.HabitPeriodMonthly {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "habit period must be daily or monthly")
	}
	return nil
}

// nextOrder is the habit count, moved past the highest order in use if a
// deletion left that slot taken.
func (s *habitService) nextOrder() int {
	next := len(s.habits)
	for _, h := range s.habits {
		if h.Order >= next {
			next = h.Order + 1
		}
	}
	return next
}

// UpdateHabit applies a partial update to a habit.
func (s *habitService) UpdateHabit(ctx context.Context, id string, upd HabitUpdate) (*models.Habit, error) {
	fields := map[string]interface{}{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		fields["name"] = name
	}
	if upd.Category != nil {
		fields["category"] = *upd.Category
	}
	if upd.GoalValue != nil {
		if *upd.GoalValue <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "goal value must be greater than zero")
		}
		fields["goal_value"] = *upd.GoalValue
	}
	if upd.Type != nil {
		fields["type"] = *upd.Type
	}
	if upd.Unit != nil {
		fields["unit"] = *upd.Unit
	}
	if upd.Period != nil {
		fields["period"] = *upd.Period
	}
	if upd.Active != nil {
		fields["active"] = *upd.Active
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	current := s.find(id)
	if current == nil {
		return nil, apperrors.ErrHabitNotFound
	}
	merged := *current
	if upd.Category != nil {
		merged.Category = *upd.Category
	}
	if upd.Type != nil {
		merged.Type = *upd.Type
	}
	if upd.Period != nil {
		merged.Period = *upd.Period
	}
	if err := checkHabitKind(merged.Category, merged.Type, merged.Period); err != nil {
		return nil, err
	}

	if _, err := s.store.Habits.Update(ctx, id, fields); err != nil {
		s.log.Errorw("failed to update habit", "habit_id", id, "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s.find(id), nil
}

// DeleteHabit removes a habit and every entry that references it. A missing
// habit is not an error.
func (s *habitService) DeleteHabit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	var purged int64
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.Habits.Delete(ctx, id); err != nil {
			return err
		}
		n, err := tx.HabitEntries.DeleteWhere(ctx, "habit_id", id)
		purged = n
		return err
	})
	if err != nil {
		s.log.Errorw("failed to delete habit", "habit_id", id, "error", err)
		return err
	}

	habits := s.habits[:0:0]
	for _, h := range s.habits {
		if h.ID != id {
			habits = append(habits, h)
		}
	}
	entries := s.entries[:0:0]
	for _, e := range s.entries {
		if e.HabitID != id {
			entries = append(entries, e)
		}
	}
	s.habits, s.entries = habits, entries
	s.log.Debugw("habit deleted", "habit_id", id, "entries_purged", purged)
	return nil
}

// entryFor reads the entry for (habitID, date) straight from the store so
// dates outside the loaded month are handled too.
func (s *habitService) entryFor(ctx context.Context, habitID, date string) (*models.HabitEntry, error) {
	onDate, err := s.store.HabitEntries.FindBy(ctx, "date", date)
	if err != nil {
		return nil, err
	}
	for i := range onDate {
		if onDate[i].HabitID == habitID {
			return &onDate[i], nil
		}
	}
	return nil, nil
}

// ToggleEntry removes the entry for (habitID, date) if there is one and
// creates it with value 1 otherwise. It returns the created entry, or nil
// when the entry was removed or the habit does not exist.
func (s *habitService) ToggleEntry(ctx context.Context, habitID, date string) (*models.HabitEntry, error) {
	if !dates.Valid(date) {
		return nil, apperrors.ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.find(habitID) == nil {
		return nil, nil
	}

	existing, err := s.entryFor(ctx, habitID, date)
	if err != nil {
		return nil, err
	}

	var created *models.HabitEntry
	if existing != nil {
		err = s.store.HabitEntries.Delete(ctx, existing.ID)
	} else {
		created = &models.HabitEntry{HabitID: habitID, Date: date, Value: 1}
		err = s.store.HabitEntries.Add(ctx, created)
	}
	if err != nil {
		s.log.Errorw("failed to toggle habit entry", "habit_id", habitID, "date", date, "error", err)
		return nil, err
	}

	if err := s.reloadEntries(ctx); err != nil {
		return nil, err
	}
	s.log.Debugw("habit entry toggled", "habit_id", habitID, "date", date, "done", created != nil)
	return created, nil
}

// SetNumericValue records value for (habitID, date). A value of zero or
// less deletes the entry, since zero-value entries are never kept. It
// returns the stored entry, or nil when there is none afterwards.
func (s *habitService) SetNumericValue(ctx context.Context, habitID, date string, value float64) (*models.HabitEntry, error) {
	if !dates.Valid(date) {
		return nil, apperrors.ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.find(habitID) == nil {
		return nil, nil
	}

	existing, err := s.entryFor(ctx, habitID, date)
	if err != nil {
		return nil, err
	}

	var result *models.HabitEntry
	switch {
	case value <= 0 && existing != nil:
		err = s.store.HabitEntries.Delete(ctx, existing.ID)
	case value <= 0:
		return nil, nil
	case existing != nil:
		_, err = s.store.HabitEntries.Update(ctx, existing.ID, map[string]interface{}{"value": value})
		existing.Value = value
		result = existing
	default:
		result = &models.HabitEntry{HabitID: habitID, Date: date, Value: value}
		err = s.store.HabitEntries.Add(ctx, result)
	}
	if err != nil {
		s.log.Errorw("failed to set habit value", "habit_id", habitID, "date", date, "error", err)
		return nil, err
	}

	if err := s.reloadEntries(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// Progress returns a habit's uncapped progress for the selected month, or 0
// for an unknown habit.
func (s *habitService) Progress(ctx context.Context, habitID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return ProgressFor(s.find(habitID), s.entries, s.month.NumDays()), nil
}

// AllProgress returns the uncapped progress of every active habit in display order.
func (s *habitService) AllProgress(ctx context.Context) ([]HabitProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	active := ActiveHabits(s.habits)
	out := make([]HabitProgress, 0, len(active))
	for i := range active {
		out = append(out, HabitProgress{Habit: active[i], Progress: ProgressFor(&active[i], s.entries, s.month.NumDays())})
	}
	return out, nil
}

// DailyCompletion returns the share of active habits logged on date.
func (s *habitService) DailyCompletion(ctx context.Context, date string) (float64, error) {
	if !dates.Valid(date) {
		return 0, apperrors.ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	entries := s.entries
	if !s.month.Contains(date) {
		onDate, err := s.store.HabitEntries.FindBy(ctx, "date", date)
		if err != nil {
			return 0, err
		}
		entries = onDate
	}
	return DailyCompletion(len(ActiveHabits(s.habits)), entries, date), nil
}

// WeeklyProgress returns per-week completion for the selected month.
func (s *habitService) WeeklyProgress(ctx context.Context) ([]WeekProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return WeeklyProgress(s.month, len(ActiveHabits(s.habits)), s.entries), nil
}

// MonthlyProgress returns overall completion for the selected month.
func (s *habitService) MonthlyProgress(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return 0, err
	}
	return MonthlyProgress(s.month, len(ActiveHabits(s.habits)), s.entries), nil
}

// DailySeries returns per-day completion for the selected month.
func (s *habitService) DailySeries(ctx context.Context) ([]DayProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return DailySeries(s.month, len(ActiveHabits(s.habits)), s.entries), nil
}

// TopHabits returns the n best-progressing active habits.
func (s *habitService) TopHabits(ctx context.Context, n int) ([]HabitProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return TopHabits(s.habits, s.entries, s.month.NumDays(), n), nil
}
