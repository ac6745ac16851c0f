package scheduler

import (
	"context"
	"fmt"

	"github.com/Dan9191/finance-insights/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweeper is the part of the service the scheduler drives
type Sweeper interface {
	RunAlertSweep(ctx context.Context) (service.SweepResult, error)
	RunMonthlyReport(ctx context.Context) (service.SweepResult, error)
}

// Scheduler runs the alert sweep and the monthly report on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	svc    Sweeper
	log    *logrus.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// New registers both sweeps. Overlapping runs of the same job are skipped.
func New(svc Sweeper, log *logrus.Logger, alertSchedule, reportSchedule string) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		svc:    svc,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(alertSchedule, s.alertJob); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule alert sweep %q: %w", alertSchedule, err)
	}
	if _, err := s.cron.AddFunc(reportSchedule, s.reportJob); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to schedule monthly report %q: %w", reportSchedule, err)
	}
	return s, nil
}

func (s *Scheduler) alertJob() {
	if _, err := s.svc.RunAlertSweep(s.ctx); err != nil {
		s.log.Errorf("Alert sweep failed: %v", err)
	}
}

func (s *Scheduler) reportJob() {
	if _, err := s.svc.RunMonthlyReport(s.ctx); err != nil {
		s.log.Errorf("Monthly report failed: %v", err)
	}
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop cancels running sweeps and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}
