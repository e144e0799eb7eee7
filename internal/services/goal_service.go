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

// GoalInput holds the fields supplied when creating a goal.
type GoalInput struct {
	Name         string
	Type         models.GoalType
	ReferenceID  string
	Target       float64
	Period       models.GoalPeriod
	TrackingType models.TrackingType
	StartDate    string
	EndDate      string
	Unit         string
}

// GoalUpdate holds optional fields for a manual goal edit. Status is the
// only way to mark a goal as failed.
type GoalUpdate struct {
	Name         *string
	Type         *models.GoalType
	ReferenceID  *string
	Target       *float64
	Period       *models.GoalPeriod
	TrackingType *models.TrackingType
	Status       *models.GoalStatus
	StartDate    *string
	EndDate      *string
	Unit         *string
}

// goalService handles goals. It keeps every goal in memory.
type goalService struct {
	mu    sync.Mutex
	store *store.Store
	log   *zap.SugaredLogger

	loaded bool
	goals  []models.Goal
}

// NewGoalService creates a new GoalServicer over st.
func NewGoalService(st *store.Store) GoalServicer {
	return &goalService{
		store: st,
		log:   logger.Named("goals"),
	}
}

// Reload discards the working set and reads it again from the store.
func (s *goalService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(ctx)
}

func (s *goalService) reload(ctx context.Context) error {
	goals, err := s.store.Goals.All(ctx)
	if err != nil {
		return err
	}
	s.goals = goals
	s.loaded = true
	return nil
}

func (s *goalService) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.reload(ctx)
}

func (s *goalService) find(id string) *models.Goal {
	for i := range s.goals {
		if s.goals[i].ID == id {
			g := s.goals[i]
			return &g
		}
	}
	return nil
}

// ListGoals returns every goal, optionally only those with the given status.
func (s *goalService) ListGoals(ctx context.Context, status *models.GoalStatus) ([]models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	out := make([]models.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		if status == nil || g.Status == *status {
			out = append(out, g)
		}
	}
	return out, nil
}

// GetGoal returns a single goal.
func (s *goalService) GetGoal(ctx context.Context, id string) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	g := s.find(id)
	if g == nil {
		return nil, apperrors.ErrGoalNotFound
	}
	return g, nil
}

// AddGoal creates an active goal with no progress. Tracking defaults to
// cumulative and the start date to today.
func (s *goalService) AddGoal(ctx context.Context, in GoalInput) (*models.Goal, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if in.Target <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target must be greater than zero")
	}
	if in.TrackingType == "" {
		in.TrackingType = models.TrackingCumulative
	}
	if in.StartDate == "" {
		in.StartDate = dates.Today()
	}
	if !dates.Valid(in.StartDate) || (in.EndDate != "" && !dates.Valid(in.EndDate)) {
		return nil, apperrors.ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goal := &models.Goal{
		Name:         in.Name,
		Type:         in.Type,
		ReferenceID:  in.ReferenceID,
		Target:       in.Target,
		Current:      0,
		Period:       in.Period,
		TrackingType: in.TrackingType,
		Status:       models.GoalStatusActive,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Unit:         in.Unit,
	}
	if err := s.store.Goals.Add(ctx, goal); err != nil {
		s.log.Errorw("failed to add goal", "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	s.log.Debugw("goal added", "goal_id", goal.ID)
	return goal, nil
}

// UpdateGoal applies a manual edit. Fields are stored as given; status is
// not recomputed.
func (s *goalService) UpdateGoal(ctx context.Context, id string, upd GoalUpdate) (*models.Goal, error) {
	fields := map[string]interface{}{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		fields["name"] = name
	}
	if upd.Type != nil {
		fields["type"] = *upd.Type
	}
	if upd.ReferenceID != nil {
		fields["reference_id"] = *upd.ReferenceID
	}
	if upd.Target != nil {
		if *upd.Target <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target must be greater than zero")
		}
		fields["target"] = *upd.Target
	}
	if upd.Period != nil {
		fields["period"] = *upd.Period
	}
	if upd.TrackingType != nil {
		fields["tracking_type"] = *upd.TrackingType
	}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.StartDate != nil {
		if !dates.Valid(*upd.StartDate) {
			return nil, apperrors.ErrInvalidDate
		}
		fields["start_date"] = *upd.StartDate
	}
	if upd.EndDate != nil {
		if *upd.EndDate != "" && !dates.Valid(*upd.EndDate) {
			return nil, apperrors.ErrInvalidDate
		}
		fields["end_date"] = *upd.EndDate
	}
	if upd.Unit != nil {
		fields["unit"] = *upd.Unit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	if s.find(id) == nil {
		return nil, apperrors.ErrGoalNotFound
	}
	if _, err := s.store.Goals.Update(ctx, id, fields); err != nil {
		s.log.Errorw("failed to update goal", "goal_id", id, "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s.find(id), nil
}

// UpdateProgress sets a goal's current value. The goal becomes completed
// once current reaches the target and falls back to active below it. A
// missing goal is a no-op and returns nil.
func (s *goalService) UpdateProgress(ctx context.Context, id string, current float64) (*models.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	goal := s.find(id)
	if goal == nil {
		return nil, nil
	}

	status := goal.StatusFor(current)
	fields := map[string]interface{}{
		"current": current,
		"status":  status,
	}
	if _, err := s.store.Goals.Update(ctx, id, fields); err != nil {
		s.log.Errorw("failed to update goal progress", "goal_id", id, "error", err)
		return nil, err
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	if status != goal.Status {
		s.log.Debugw("goal status changed", "goal_id", id, "from", goal.Status, "to", status)
	}
	return s.find(id), nil
}

// DeleteGoal removes a goal. A missing id is not an error.
func (s *goalService) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Goals.Delete(ctx, id); err != nil {
		s.log.Errorw("failed to delete goal", "goal_id", id, "error", err)
		return err
	}
	return s.reload(ctx)
}
