package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"sitedata/config"
	"sitedata/pkg/logger"
	"sitedata/store"
)

// Scheduler periodically copies every configured document to a dated
// backup key through the active backend. Backups go straight to the
// backend so they never trigger change announcements.
type Scheduler struct {
	Backend store.Backend
	Client  *store.Client
	Cfg     *config.Config

	cron *cron.Cron
}

func NewScheduler(backend store.Backend, client *store.Client, cfg *config.Config) *Scheduler {
	return &Scheduler{Backend: backend, Client: client, Cfg: cfg}
}

// Start begins the schedule. A missing schedule disables backups.
func (s *Scheduler) Start() error {
	if s.Cfg.BackupSchedule == "" {
		logger.Sugar.Info("Backup schedule not set, backups disabled")
		return nil
	}
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.Cfg.BackupSchedule, s.RunOnce); err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", s.Cfg.BackupSchedule, err)
	}
	s.cron.Start()
	logger.Sugar.Infof("Backups scheduled: %s", s.Cfg.BackupSchedule)
	return nil
}

// Stop halts the schedule. Safe to call when Start was never run.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce backs up every configured document immediately.
func (s *Scheduler) RunOnce() {
	ctx := context.Background()
	stamp := time.Now().UTC().Format("20060102T150405")

	for _, name := range s.Cfg.Names {
		data := s.Client.Get(ctx, name)
		if string(data) == store.EmptyDocument {
			// Nothing worth snapshotting; skip rather than shadowing an
			// older backup with an empty one.
			continue
		}
		key := fmt.Sprintf("backups/%s-%s", name, stamp)
		if err := s.Backend.Write(ctx, key, data); err != nil {
			logger.Sugar.Errorf("Failed to back up %s: %v", name, err)
			continue
		}
		logger.Sugar.Infof("Backed up document: %s", key)
	}
}
