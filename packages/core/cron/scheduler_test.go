package cron

import (
	"context"
	"errors"
	"testing"

	"fantasy-doubles-api/packages/core/models"

	"github.com/rs/zerolog"
)

type fakeDetector struct {
	reports []models.AnomalyReport
	err     error
	calls   int
	filter  models.AnomalyFilter
}

func (f *fakeDetector) DetectAnomalies(ctx context.Context, filter models.AnomalyFilter) ([]models.AnomalyReport, error) {
	f.calls++
	f.filter = filter
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("sweep context has no deadline")
	}
	return f.reports, f.err
}

func TestRunNowReportsAnomalies(t *testing.T) {
	detector := &fakeDetector{reports: []models.AnomalyReport{
		{Type: models.AnomalyMatchesWithoutPoints, Count: 2},
	}}
	s := NewScheduler(detector, "", zerolog.Nop())

	reports := s.RunNow()
	if detector.calls != 1 {
		t.Fatalf("calls = %d, want 1", detector.calls)
	}
	if detector.filter.CompetitionID != nil || detector.filter.Matchweek != nil {
		t.Fatalf("filter = %+v, want unscoped sweep", detector.filter)
	}
	if len(reports) != 1 || reports[0].Count != 2 {
		t.Fatalf("reports = %+v", reports)
	}
}

func TestRunNowDetectorError(t *testing.T) {
	detector := &fakeDetector{err: errors.New("db down")}
	s := NewScheduler(detector, DefaultSchedule, zerolog.Nop())

	if reports := s.RunNow(); reports != nil {
		t.Fatalf("reports = %+v, want nil on error", reports)
	}
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(&fakeDetector{}, "every hour", zerolog.Nop())
	if err := s.Start(); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeDetector{}, DefaultSchedule, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()
}
