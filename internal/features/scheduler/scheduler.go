package scheduler

import (
	"context"
	"time"

	"go-formflow/internal/config"
	"go-formflow/internal/features/archive"
	"go-formflow/internal/features/submission"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler owns the background jobs: the pending-submission reminder
// sweep and the audit archive shipment. Schedules come from config and
// use standard five-field cron expressions.
type Scheduler struct {
	cron        *cron.Cron
	submissions submission.SubmissionService
	archive     archive.ArchiveService
	config      *config.Config
	logger      *zap.Logger
}

func NewScheduler(lc fx.Lifecycle, submissions submission.SubmissionService, archiveSvc archive.ArchiveService, cfg *config.Config, logger *zap.Logger) *Scheduler {
	s := &Scheduler{
		cron:        cron.New(),
		submissions: submissions,
		archive:     archiveSvc,
		config:      cfg,
		logger:      logger,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
	return s
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.config.ReminderCron, s.runReminderSweep); err != nil {
		return err
	}

	if s.archive.Enabled() {
		if _, err := s.cron.AddFunc(s.config.ArchiveCron, s.runArchiveSync); err != nil {
			return err
		}
	} else {
		s.logger.Info("audit archive job disabled, no target configured")
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("reminder_schedule", s.config.ReminderCron),
		zap.String("archive_schedule", s.config.ArchiveCron))
	return nil
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
		s.logger.Warn("scheduler jobs did not finish before shutdown deadline")
	}
}

func (s *Scheduler) runReminderSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	age := time.Duration(s.config.ReminderAgeHours) * time.Hour
	count, err := s.submissions.NotifyStalePending(ctx, age)
	if err != nil {
		s.logger.Error("reminder sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("reminder sweep notified approvers", zap.Int("stale_submissions", count))
	}
}

func (s *Scheduler) runArchiveSync() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.archive.RunSync(ctx); err != nil {
		s.logger.Error("scheduled archive sync failed", zap.Error(err))
	}
}
