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

// DefaultUserName is the name given to freshly created settings.
const DefaultUserName = "User"

// SettingsUpdate holds optional fields for a settings update. The currency is fixed.
type SettingsUpdate struct {
	UserName      *string
	MonthStartDay *int
}

// settingsService owns the singleton settings record.
type settingsService struct {
	mu    sync.Mutex
	store *store.Store
	log   *zap.SugaredLogger

	current *models.AppSettings
}

// NewSettingsService creates a new SettingsServicer over st.
func NewSettingsService(st *store.Store) SettingsServicer {
	return &settingsService{
		store: st,
		log:   logger.Named("settings"),
	}
}

// Reload drops the cached record and re-initialises it from the store.
func (s *settingsService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	_, err := s.initialize(ctx)
	return err
}

// initialize returns the stored settings, creating the defaults on first use.
// An imported record is used as-is whatever its id.
func (s *settingsService) initialize(ctx context.Context) (*models.AppSettings, error) {
	if s.current != nil {
		return s.current, nil
	}

	existing, err := s.store.Settings.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		s.current = &existing[0]
		return s.current, nil
	}

	now := dates.Now()
	defaults := &models.AppSettings{
		Base:          models.Base{ID: models.SettingsID, CreatedAt: now},
		UserName:      DefaultUserName,
		Currency:      models.DefaultCurrency,
		MonthStartDay: 1,
		UpdatedAt:     now,
	}
	if err := s.store.Settings.Add(ctx, defaults); err != nil {
		s.log.Errorw("failed to create default settings", "error", err)
		return nil, err
	}
	s.log.Info("Created default settings")
	s.current = defaults
	return s.current, nil
}

// GetSettings returns the settings, creating them on first use.
func (s *settingsService) GetSettings(ctx context.Context) (*models.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.initialize(ctx)
	if err != nil {
		return nil, err
	}
	out := *current
	return &out, nil
}

// UpdateSettings changes the user name or month start day.
func (s *settingsService) UpdateSettings(ctx context.Context, upd SettingsUpdate) (*models.AppSettings, error) {
	fields := map[string]interface{}{}
	if upd.UserName != nil {
		name := strings.TrimSpace(*upd.UserName)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user name cannot be empty")
		}
		fields["user_name"] = name
	}
	if upd.MonthStartDay != nil {
		if *upd.MonthStartDay < 1 || *upd.MonthStartDay > 28 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month start day must be between 1 and 28")
		}
		fields["month_start_day"] = *upd.MonthStartDay
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.initialize(ctx)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		out := *current
		return &out, nil
	}
	fields["updated_at"] = dates.Now()

	if _, err := s.store.Settings.Update(ctx, current.ID, fields); err != nil {
		s.log.Errorw("failed to update settings", "error", err)
		return nil, err
	}
	updated, err := s.store.Settings.Get(ctx, current.ID)
	if err != nil {
		return nil, err
	}
	s.current = updated
	out := *updated
	return &out, nil
}
