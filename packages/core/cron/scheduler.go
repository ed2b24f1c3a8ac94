package cron

import (
	"context"
	"time"

	"fantasy-doubles-api/packages/core/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultSchedule runs the sweep at minute 0 of every hour.
const DefaultSchedule = "0 0 * * * *"

// AnomalyDetector is the part of the monitoring service the sweep needs.
type AnomalyDetector interface {
	DetectAnomalies(ctx context.Context, filter models.AnomalyFilter) ([]models.AnomalyReport, error)
}

// Scheduler runs the periodic anomaly sweep. The sweep only reports; repairs
// stay an explicit admin action.
type Scheduler struct {
	cron     *cron.Cron
	detector AnomalyDetector
	schedule string
	timeout  time.Duration
	log      zerolog.Logger
}

func NewScheduler(detector AnomalyDetector, schedule string, log zerolog.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	log = log.With().Str("component", "scheduler").Logger()

	c := cron.New(cron.WithSeconds(), cron.WithLogger(cronLogger{log: log}))

	return &Scheduler{
		cron:     c,
		detector: detector,
		schedule: schedule,
		timeout:  5 * time.Minute,
		log:      log,
	}
}

// Start registers the sweep and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		s.log.Error().Err(err).Str("schedule", s.schedule).Msg("Error scheduling anomaly sweep")
		return err
	}

	s.cron.Start()
	s.log.Info().Str("schedule", s.schedule).Msg("Cron scheduler started")
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Cron scheduler stopped")
}

// RunNow runs the sweep synchronously and returns its reports.
func (s *Scheduler) RunNow() []models.AnomalyReport {
	return s.sweep()
}

func (s *Scheduler) runSweep() {
	s.sweep()
}

func (s *Scheduler) sweep() []models.AnomalyReport {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	reports, err := s.detector.DetectAnomalies(ctx, models.AnomalyFilter{})
	if err != nil {
		s.log.Error().Err(err).Msg("Anomaly sweep failed")
		return nil
	}

	if len(reports) == 0 {
		s.log.Info().Msg("Anomaly sweep found no anomalies")
		return reports
	}

	for _, report := range reports {
		s.log.Warn().Str("type", report.Type).Int("count", report.Count).Msg("Anomaly detected")
	}
	return reports
}

// cronLogger routes robfig/cron's logs through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
