package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"work-tracker.com/work-tracker/internal/cache"
	dto "work-tracker.com/work-tracker/internal/data_models"
	apperrors "work-tracker.com/work-tracker/internal/errors"
	"work-tracker.com/work-tracker/internal/metrics"
	model "work-tracker.com/work-tracker/internal/models"
	"work-tracker.com/work-tracker/internal/reports"
	repository "work-tracker.com/work-tracker/internal/repositories"
	"work-tracker.com/work-tracker/internal/worktime"
)

// SyncService stores and serves per-user snapshots. It keeps no state of its
// own between requests; every call goes to the store (or cache) directly.
type SyncService struct {
	repo   *repository.StateRepository
	cache  cache.SnapshotCache
	logger *logrus.Logger
	now    func() time.Time
}

// NewSyncService wires the service. snapshotCache may be nil.
func NewSyncService(
	repo *repository.StateRepository,
	snapshotCache cache.SnapshotCache,
	logger *logrus.Logger,
) *SyncService {
	return &SyncService{
		repo:   repo,
		cache:  snapshotCache,
		logger: logger,
		now:    time.Now,
	}
}

// Save canonicalizes state and replaces the user's stored snapshot with it.
func (s *SyncService) Save(ctx context.Context, username string, state []byte) (*model.UserData, error) {
	canonical, err := worktime.Canonicalize(state, username)
	if err != nil {
		metrics.RecordSync("rejected", len(state))
		return nil, apperrors.Wrap(apperrors.ErrInvalidState, err)
	}

	row, err := s.repo.Upsert(ctx, username, string(canonical))
	if err != nil {
		metrics.RecordSync("failed", len(canonical))
		s.logger.WithError(err).WithField("username", username).Error("snapshot upsert failed")
		return nil, apperrors.Wrap(apperrors.ErrStorageFailure, err)
	}
	metrics.RecordSync("ok", len(canonical))

	if s.cache != nil {
		if err := s.cache.Set(ctx, username, row.StateJSON); err != nil {
			s.logger.WithError(err).WithField("username", username).Warn("snapshot cache update failed")
			if err := s.cache.Invalidate(ctx, username); err != nil {
				s.logger.WithError(err).WithField("username", username).Warn("snapshot cache invalidation failed")
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"username": username,
		"bytes":    len(canonical),
	}).Debug("snapshot stored")

	return row, nil
}

// Load returns the user's snapshot. A user without a snapshot, or with one
// that cannot be decoded, gets a fresh default state.
func (s *SyncService) Load(ctx context.Context, username string) (*worktime.WorkState, error) {
	raw, err := s.loadRaw(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			return worktime.New(username), nil
		}
		return nil, apperrors.Wrap(apperrors.ErrStorageFailure, err)
	}

	return worktime.Decode([]byte(raw), username), nil
}

// Report projects the stored snapshot at the current time.
func (s *SyncService) Report(ctx context.Context, username string) (*dto.ReportResponse, error) {
	state, err := s.Load(ctx, username)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &dto.ReportResponse{
		GeneratedAt: now.Format(time.RFC3339),
		Status:      reports.Status(state, now),
		Report:      reports.Build(state, now),
	}, nil
}

func (s *SyncService) loadRaw(ctx context.Context, username string) (string, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, username)
		if err == nil {
			metrics.RecordCacheLookup(true)
			return raw, nil
		}
		metrics.RecordCacheLookup(false)
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WithError(err).WithField("username", username).Warn("snapshot cache read failed")
		}
	}

	row, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Fill(ctx, username, row.StateJSON); err != nil {
			s.logger.WithError(err).WithField("username", username).Warn("snapshot cache fill failed")
		}
	}

	return row.StateJSON, nil
}
