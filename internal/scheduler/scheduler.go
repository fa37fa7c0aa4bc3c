package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/racane123/schoolboard/internal/config"
	"github.com/racane123/schoolboard/internal/domain/models"
	"github.com/racane123/schoolboard/internal/service/notify"
)

const jobTimeout = 2 * time.Minute

// Reporter produces the figures the scheduled jobs store and send.
type Reporter interface {
	Snapshot(ctx context.Context, classID string, asOf *models.Date) (models.ReportSnapshot, error)
	OverdueDigest(ctx context.Context, classID string, asOf *models.Date) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reporter Reporter
	notifier notify.Notifier
	cfg      config.ReportingConfig
	bursarID string
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. Schedules are evaluated in
// the reporting timezone.
func NewScheduler(cfg config.Config, reporter Reporter, notifier notify.Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Disabled{}
	}

	loc, err := cfg.Reporting.Location()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		reporter: reporter,
		notifier: notifier,
		cfg:      cfg.Reporting,
		bursarID: cfg.WhatsApp.BursarID,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.Strings("class_ids", s.cfg.ClassIDs))

	if len(s.cfg.ClassIDs) == 0 {
		s.logger.Warn("REPORT_CLASS_IDS is empty, no scheduled jobs registered")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runSnapshots); err != nil {
		return fmt.Errorf("schedule snapshots %q: %w", s.cfg.CronSchedule, err)
	}

	if s.cfg.DigestCronSchedule != "" && s.bursarID != "" {
		if _, err := s.cron.AddFunc(s.cfg.DigestCronSchedule, s.sendDigests); err != nil {
			return fmt.Errorf("schedule digest %q: %w", s.cfg.DigestCronSchedule, err)
		}
	} else {
		s.logger.Info("overdue digest disabled, no schedule or bursar configured")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runSnapshots() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	failed := 0
	for _, classID := range s.cfg.ClassIDs {
		if _, err := s.reporter.Snapshot(ctx, classID, nil); err != nil {
			failed++
			s.logger.Error("failed to snapshot class", zap.String("class_id", classID), zap.Error(err))
		}
	}
	s.logger.Info("snapshot run finished", zap.Int("classes", len(s.cfg.ClassIDs)), zap.Int("failed", failed))
}

func (s *Scheduler) sendDigests() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	for _, classID := range s.cfg.ClassIDs {
		digest, err := s.reporter.OverdueDigest(ctx, classID, nil)
		if err != nil {
			s.logger.Error("failed to build overdue digest", zap.String("class_id", classID), zap.Error(err))
			continue
		}
		if err := s.notifier.Notify(ctx, s.bursarID, digest); err != nil {
			s.logger.Error("failed to send overdue digest", zap.String("class_id", classID), zap.Error(err))
			continue
		}
		s.logger.Info("overdue digest sent", zap.String("class_id", classID))
	}
}
