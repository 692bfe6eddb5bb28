package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/welldanyogia/webrana-catchmail/internal/models"
	"github.com/welldanyogia/webrana-catchmail/internal/repository"
)

// SweepResult is the outcome of one retention sweep
type SweepResult struct {
	Success          bool   `json:"success"`
	DeletedCount     int64  `json:"deleted_count"`
	Cutoff           string `json:"cutoff,omitempty"`
	RetentionMinutes int    `json:"retention_minutes"`
	Error            string `json:"error,omitempty"`
}

// Sweeper runs a retention sweep
type Sweeper interface {
	Sweep(ctx context.Context) SweepResult
}

// RetentionConfig holds configuration for the retention service
type RetentionConfig struct {
	RetentionMinutes int
	// Now overrides the clock, mainly for tests
	Now    func() time.Time
	Logger *slog.Logger
}

// RetentionService deletes emails older than the retention window
type RetentionService struct {
	repo             repository.EmailRepository
	retentionMinutes int
	now              func() time.Time
	logger           *slog.Logger
}

// NewRetentionService creates a new RetentionService
func NewRetentionService(repo repository.EmailRepository, cfg RetentionConfig) *RetentionService {
	if cfg.RetentionMinutes <= 0 {
		cfg.RetentionMinutes = 15
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RetentionService{
		repo:             repo,
		retentionMinutes: cfg.RetentionMinutes,
		now:              cfg.Now,
		logger:           cfg.Logger,
	}
}

// RetentionMinutes returns the configured retention window in minutes
func (s *RetentionService) RetentionMinutes() int {
	return s.retentionMinutes
}

// Sweep deletes every email received before now minus the retention window
func (s *RetentionService) Sweep(ctx context.Context) SweepResult {
	return s.SweepAt(ctx, s.now())
}

// SweepAt runs a sweep as if the current time were now.
// Errors are reported in the result; it never panics.
func (s *RetentionService) SweepAt(ctx context.Context, now time.Time) (result SweepResult) {
	cutoff := models.FormatReceivedAt(now.Add(-time.Duration(s.retentionMinutes) * time.Minute))
	result = SweepResult{
		Cutoff:           cutoff,
		RetentionMinutes: s.retentionMinutes,
	}

	defer func() {
		if r := recover(); r != nil {
			result = s.failed(result, fmt.Errorf("sweep panicked: %v", r))
		}
	}()

	count, err := s.repo.CountOlderThan(ctx, cutoff)
	if err != nil {
		return s.failed(result, err)
	}

	if _, err := s.repo.DeleteOlderThan(ctx, cutoff); err != nil {
		return s.failed(result, err)
	}

	result.Success = true
	result.DeletedCount = count

	if s.logger != nil && count > 0 {
		s.logger.Info("expired emails deleted",
			slog.Int64("deleted_count", count),
			slog.String("cutoff", cutoff))
	}
	return result
}

func (s *RetentionService) failed(result SweepResult, err error) SweepResult {
	result.Success = false
	result.DeletedCount = 0
	result.Error = err.Error()
	if s.logger != nil {
		s.logger.Error("retention sweep failed",
			slog.String("cutoff", result.Cutoff),
			slog.Any("error", err))
	}
	return result
}
