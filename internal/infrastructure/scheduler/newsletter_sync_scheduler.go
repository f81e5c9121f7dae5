package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrSchedulerNotRunning is returned when triggering a stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// PendingSyncer pushes newsletter subscriptions the provider has not confirmed
type PendingSyncer interface {
	ResyncPending(ctx context.Context, limit int) (int, error)
}

// NewsletterSyncSchedulerConfig holds configuration for the newsletter resync scheduler
type NewsletterSyncSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is how often pending subscriptions are retried
	Interval time.Duration

	// BatchSize caps the subscriptions handled per run
	BatchSize int

	// RunTimeout is the maximum time for a single run
	RunTimeout time.Duration
}

// DefaultNewsletterSyncSchedulerConfig returns default configuration
func DefaultNewsletterSyncSchedulerConfig() NewsletterSyncSchedulerConfig {
	return NewsletterSyncSchedulerConfig{
		Enabled:    true,
		Interval:   15 * time.Minute,
		BatchSize:  100,
		RunTimeout: 2 * time.Minute,
	}
}

// NewsletterSyncScheduler periodically retries newsletter subscriptions left
// pending_sync after a mailing list outage
type NewsletterSyncScheduler struct {
	syncer    PendingSyncer
	logger    *zap.Logger
	config    NewsletterSyncSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewNewsletterSyncScheduler creates a new newsletter resync scheduler
func NewNewsletterSyncScheduler(
	syncer PendingSyncer,
	logger *zap.Logger,
	config NewsletterSyncSchedulerConfig,
) *NewsletterSyncScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultNewsletterSyncSchedulerConfig().Interval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultNewsletterSyncSchedulerConfig().BatchSize
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = DefaultNewsletterSyncSchedulerConfig().RunTimeout
	}
	return &NewsletterSyncScheduler{
		syncer: syncer,
		logger: logger,
		config: config,
	}
}

// Start starts the resync loop
func (s *NewsletterSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Newsletter sync scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Newsletter sync scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *NewsletterSyncScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Newsletter sync scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Newsletter sync scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *NewsletterSyncScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Newsletter sync loop stopping")
			return
		case <-ticker.C:
			s.execute(ctx)
		}
	}
}

func (s *NewsletterSyncScheduler) execute(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	startTime := time.Now()
	synced, err := s.syncer.ResyncPending(runCtx, s.config.BatchSize)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Newsletter resync failed",
			zap.Int("synced", synced),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	if synced > 0 {
		s.logger.Info("Newsletter resync completed",
			zap.Int("synced", synced),
			zap.Duration("duration", duration),
		)
	}
}

// TriggerNow runs a resync immediately in the background
func (s *NewsletterSyncScheduler) TriggerNow(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.execute(ctx)
	}()
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *NewsletterSyncScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
