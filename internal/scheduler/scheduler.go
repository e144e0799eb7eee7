// Package scheduler writes periodic backup files on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tracker/internal/logger"
	"tracker/internal/services"
)

const filePrefix = "tracker-backup-"

// Scheduler runs the backup job.
type Scheduler struct {
	cron   *cron.Cron
	backup services.BackupServicer
	dir    string
	log    *zap.SugaredLogger
	now    func() time.Time
}

// New creates a Scheduler that exports the store into dir on the given
// standard five-field cron expression.
func New(backup services.BackupServicer, dir, expr string) (*Scheduler, error) {
	if dir == "" {
		return nil, fmt.Errorf("backup directory is required")
	}
	s := &Scheduler{
		cron:   cron.New(),
		backup: backup,
		dir:    dir,
		log:    logger.Named("scheduler"),
		now:    time.Now,
	}
	if _, err := s.cron.AddFunc(expr, s.backupTask); err != nil {
		return nil, fmt.Errorf("register backup task %q: %w", expr, err)
	}
	return s, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infow("scheduler started", "dir", s.dir)
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// RunNow writes a backup immediately and returns its path.
func (s *Scheduler) RunNow(ctx context.Context) (string, error) {
	blob, err := s.backup.ExportJSON(ctx)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := filePrefix + s.now().UTC().Format("20060102-150405") + ".json"
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize backup: %w", err)
	}
	return path, nil
}

func (s *Scheduler) backupTask() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	path, err := s.RunNow(ctx)
	if err != nil {
		s.log.Errorw("scheduled backup failed", "error", err)
		return
	}
	s.log.Infow("scheduled backup written", "path", path)
}
