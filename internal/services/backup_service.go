package services

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"tracker/internal/dates"
	apperrors "tracker/internal/errors"
	"tracker/internal/logger"
	"tracker/internal/models"
	"tracker/internal/store"
)

// BackupVersion is the snapshot format version written by Export.
const BackupVersion = 1

// Snapshot is the full content of the store at one point in time.
type Snapshot struct {
	Version    int          `json:"version"`
	ExportedAt string       `json:"exportedAt"`
	Data       SnapshotData `json:"data"`
}

// SnapshotData holds one array per collection.
type SnapshotData struct {
	Habits       []models.Habit       `json:"habits"`
	HabitEntries []models.HabitEntry  `json:"habitEntries"`
	Goals        []models.Goal        `json:"goals"`
	Stocks       []models.Stock       `json:"stocks"`
	Transactions []models.Transaction `json:"transactions"`
	Settings     []models.AppSettings `json:"settings"`
}

// ImportResult counts the records written by an import.
type ImportResult struct {
	Habits       int `json:"habits"`
	HabitEntries int `json:"habitEntries"`
	Goals        int `json:"goals"`
	Stocks       int `json:"stocks"`
	Transactions int `json:"transactions"`
	Settings     int `json:"settings"`
}

// Refresher is implemented by services that hold a working set which must
// be re-read after the store is replaced.
type Refresher interface {
	Reload(ctx context.Context) error
}

// backupService exports and imports the whole store.
type backupService struct {
	store      *store.Store
	refreshers []Refresher
	log        *zap.SugaredLogger
}

// NewBackupService creates a new BackupServicer. The refreshers are reloaded
// after every successful import.
func NewBackupService(st *store.Store, refreshers ...Refresher) BackupServicer {
	return &backupService{
		store:      st,
		refreshers: refreshers,
		log:        logger.Named("backup"),
	}
}

// Export scans every collection into a snapshot.
func (s *backupService) Export(ctx context.Context) (*Snapshot, error) {
	var (
		data SnapshotData
		err  error
	)
	if data.Habits, err = s.store.Habits.All(ctx); err != nil {
		return nil, err
	}
	if data.HabitEntries, err = s.store.HabitEntries.All(ctx); err != nil {
		return nil, err
	}
	if data.Goals, err = s.store.Goals.All(ctx); err != nil {
		return nil, err
	}
	if data.Stocks, err = s.store.Stocks.All(ctx); err != nil {
		return nil, err
	}
	if data.Transactions, err = s.store.Transactions.All(ctx); err != nil {
		return nil, err
	}
	if data.Settings, err = s.store.Settings.All(ctx); err != nil {
		return nil, err
	}

	data.Habits = orEmpty(data.Habits)
	data.HabitEntries = orEmpty(data.HabitEntries)
	data.Goals = orEmpty(data.Goals)
	data.Stocks = orEmpty(data.Stocks)
	data.Transactions = orEmpty(data.Transactions)
	data.Settings = orEmpty(data.Settings)

	return &Snapshot{
		Version:    BackupVersion,
		ExportedAt: dates.Now(),
		Data:       data,
	}, nil
}

// ExportJSON returns the snapshot as indented JSON.
func (s *backupService) ExportJSON(ctx context.Context) ([]byte, error) {
	snap, err := s.Export(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, err
	}
	s.log.Infow("Exported backup",
		"habits", len(snap.Data.Habits),
		"habit_entries", len(snap.Data.HabitEntries),
		"goals", len(snap.Data.Goals),
		"stocks", len(snap.Data.Stocks),
		"transactions", len(snap.Data.Transactions),
	)
	return out, nil
}

// importEnvelope distinguishes a missing data object from an empty one.
type importEnvelope struct {
	Version int           `json:"version"`
	Data    *SnapshotData `json:"data"`
}

// Import replaces the whole store with the content of blob. The blob must
// carry a non-zero version and a data object; anything else is rejected
// before the store is touched. Collections missing from the blob end up
// empty. The clear and rebuild commit together.
func (s *backupService) Import(ctx context.Context, blob []byte) (*ImportResult, error) {
	var env importEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidBackup, err)
	}
	if env.Version == 0 || env.Data == nil {
		return nil, apperrors.ErrInvalidBackup
	}
	data := env.Data

	result := &ImportResult{}
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		clears := []func(context.Context) error{
			tx.Habits.Clear,
			tx.HabitEntries.Clear,
			tx.Goals.Clear,
			tx.Stocks.Clear,
			tx.Transactions.Clear,
			tx.Settings.Clear,
		}
		for _, clearAll := range clears {
			if err := clearAll(ctx); err != nil {
				return err
			}
		}

		if err := tx.Habits.BulkAdd(ctx, data.Habits); err != nil {
			return err
		}
		if err := tx.HabitEntries.BulkAdd(ctx, data.HabitEntries); err != nil {
			return err
		}
		if err := tx.Goals.BulkAdd(ctx, data.Goals); err != nil {
			return err
		}
		if err := tx.Stocks.BulkAdd(ctx, data.Stocks); err != nil {
			return err
		}
		if err := tx.Transactions.BulkAdd(ctx, data.Transactions); err != nil {
			return err
		}
		if err := tx.Settings.BulkAdd(ctx, data.Settings); err != nil {
			return err
		}
		return countStored(ctx, tx, result)
	})
	if err != nil {
		s.log.Errorw("backup import failed", "error", err)
		return nil, err
	}

	for _, r := range s.refreshers {
		if err := r.Reload(ctx); err != nil {
			return nil, err
		}
	}

	s.log.Infow("Imported backup", "version", env.Version, "habits", result.Habits, "habit_entries", result.HabitEntries,
		"goals", result.Goals, "stocks", result.Stocks, "transactions", result.Transactions)
	return result, nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// countStored fills result with the number of records each collection holds.
func countStored(ctx context.Context, st *store.Store, result *ImportResult) error {
	counts := []struct {
		dst   *int
		count func(context.Context) (int64, error)
	}{
		{&result.Habits, st.Habits.Count},
		{&result.HabitEntries, st.HabitEntries.Count},
		{&result.Goals, st.Goals.Count},
		{&result.Stocks, st.Stocks.Count},
		{&result.Transactions, st.Transactions.Count},
		{&result.Settings, st.Settings.Count},
	}
	for _, c := range counts {
		n, err := c.count(ctx)
		if err != nil {
			return err
		}
		*c.dst = int(n)
	}
	return nil
}
