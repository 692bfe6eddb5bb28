package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RetentionSchedulerConfig holds configuration for the periodic sweep
type RetentionSchedulerConfig struct {
	// Interval is how often to run the retention sweep
	Interval time.Duration
	// Timeout bounds a single sweep
	Timeout time.Duration
}

// RetentionScheduler runs retention sweeps on a fixed interval
type RetentionScheduler struct {
	sweeper Sweeper
	config  RetentionSchedulerConfig
	logger  *slog.Logger
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewRetentionScheduler creates a new retention scheduler
func NewRetentionScheduler(
	sweeper Sweeper,
	config RetentionSchedulerConfig,
	logger *slog.Logger,
) *RetentionScheduler {
	// Set defaults
	if config.Interval <= 0 {
		config.Interval = time.Minute
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &RetentionScheduler{
		sweeper: sweeper,
		config:  config,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (s *RetentionScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.sweepLoop()

	if s.logger != nil {
		s.logger.Info("retention scheduler started",
			slog.Duration("interval", s.config.Interval))
	}
}

// Stop halts the periodic sweep and waits for an in-flight sweep to finish
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	if s.logger != nil {
		s.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *RetentionScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// sweepLoop runs a sweep immediately and then on every tick
func (s *RetentionScheduler) sweepLoop() {
	defer s.wg.Done()

	s.RunNow()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunNow()
		}
	}
}

// RunNow performs one sweep synchronously and returns its result
func (s *RetentionScheduler) RunNow() SweepResult {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	result := s.sweeper.Sweep(ctx)

	if s.logger != nil {
		if result.Success {
			s.logger.Debug("scheduled sweep finished",
				slog.Int64("deleted_count", result.DeletedCount),
				slog.String("cutoff", result.Cutoff))
		} else {
			s.logger.Warn("scheduled sweep failed",
				slog.String("error", result.Error))
		}
	}
	return result
}
