package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"work-tracker.com/work-tracker/internal/metrics"
	"work-tracker.com/work-tracker/internal/reports"
	repository "work-tracker.com/work-tracker/internal/repositories"
	"work-tracker.com/work-tracker/internal/worktime"
)

// StatsService periodically scans the stored snapshots and publishes how
// many users are in each activity mode.
type StatsService struct {
	repo     *repository.StateRepository
	logger   *logrus.Logger
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewStatsService(repo *repository.StateRepository, logger *logrus.Logger, interval time.Duration) *StatsService {
	return &StatsService{
		repo:     repo,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (s *StatsService) Start() {
	s.wg.Add(1)
	go s.refreshLoop()
}

func (s *StatsService) refreshLoop() {
	defer s.wg.Done()

	s.refreshOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refreshOnce()
		case <-s.stop:
			return
		}
	}
}

func (s *StatsService) refreshOnce() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("stats: refresh panicked")
		}
	}()

	counts, err := s.CountByMode(context.Background())
	if err != nil {
		s.logger.WithError(err).Warn("stats: failed to list snapshots")
		return
	}
	metrics.SetUsersByMode(counts)
}

// CountByMode decodes every stored snapshot and tallies its live mode.
func (s *StatsService) CountByMode(ctx context.Context) (map[string]int, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	counts := map[string]int{
		reports.ModeClockedOut: 0,
		reports.ModeIdle:       0,
		reports.ModeWorking:    0,
		reports.ModeMeeting:    0,
		reports.ModeResting:    0,
	}
	for _, row := range rows {
		state := worktime.Decode([]byte(row.StateJSON), row.Username)
		counts[reports.Status(state, now).Mode]++
	}
	return counts, nil
}

func (s *StatsService) Shutdown(ctx context.Context) {
	close(s.stop)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("stats loop shut down cleanly")
	case <-ctx.Done():
		s.logger.Warn("stats loop shutdown timed out")
	}
}
