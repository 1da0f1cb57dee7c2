package settlement

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/brickoven/pos/pkg/logger"
)

// snapshotSchedule runs shortly after midnight so the prior business day is
// fully closed out before aggregation.
const snapshotSchedule = "5 0 * * *"

// Snapshotter is the lifecycle service that persists the prior day's
// settlement every night.
type Snapshotter struct {
	svc  *Service
	cron *cron.Cron
	log  *logger.Logger
}

// NewSnapshotter wires the nightly snapshot job.
func NewSnapshotter(svc *Service, log *logger.Logger) *Snapshotter {
	if log == nil {
		log = logger.NewDefault("settlement-snapshotter")
	}
	return &Snapshotter{svc: svc, cron: cron.New(), log: log}
}

// Name implements system.Service.
func (s *Snapshotter) Name() string { return "settlement-snapshotter" }

// Start schedules the nightly run.
func (s *Snapshotter) Start(_ context.Context) error {
	_, err := s.cron.AddFunc(snapshotSchedule, s.run)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.log.WithField("schedule", snapshotSchedule).Info("settlement snapshotter started")
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Snapshotter) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (s *Snapshotter) run() {
	yesterday := s.svc.now().AddDate(0, 0, -1).Format("2006-01-02")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.svc.Snapshot(ctx, yesterday); err != nil {
		s.log.WithError(err).WithField("business_date", yesterday).Error("settlement snapshot failed")
	}
}
