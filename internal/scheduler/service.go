package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sipwatch/sipwatch-bot/internal/config"
	"github.com/sirupsen/logrus"
)

// runTimeout bounds one scheduled invocation
const runTimeout = 10 * time.Minute

// Job is run on every schedule tick
type Job interface {
	RunScheduled(timeout time.Duration)
}

// Service runs the pipeline on an in-process cron schedule
type Service struct {
	config *config.Config
	job    Job
	cron   *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, job Job) *Service {
	return &Service{
		config: cfg,
		job:    job,
		cron:   cron.New(cron.WithLocation(cfg.Location())),
	}
}

// Enabled reports whether a schedule is configured. Without one the service
// relies on an external trigger.
func (s *Service) Enabled() bool {
	return s.config.Schedule != ""
}

// Start registers the configured schedule and starts the cron runner
func (s *Service) Start() error {
	if !s.Enabled() {
		logrus.Info("No SCHEDULE configured, waiting for external triggers")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		logrus.Info("Starting scheduled pipeline run")
		s.job.RunScheduled(runTimeout)
	})
	if err != nil {
		return fmt.Errorf("invalid SCHEDULE %q: %w", s.config.Schedule, err)
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with schedule %q (%s)", s.config.Schedule, s.config.TimeZone)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		logrus.Info("Scheduler stopped")
	}
}

// Entries returns the registered cron entries
func (s *Service) Entries() []cron.Entry {
	return s.cron.Entries()
}
