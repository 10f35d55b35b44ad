package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fanvault/user-service/internal/repository"
	"github.com/fanvault/user-service/pkg/logger"
)

// SessionCleanupConfig contains configuration for the session cleanup worker
type SessionCleanupConfig struct {
	// ScanInterval is the interval between cleanup passes
	ScanInterval time.Duration
}

// DefaultSessionCleanupConfig returns default configuration
func DefaultSessionCleanupConfig() *SessionCleanupConfig {
	return &SessionCleanupConfig{
		ScanInterval: time.Hour,
	}
}

// SessionCleanupWorker periodically deletes expired session rows. Token
// revocation entries expire on their own via Redis TTL; only the
// Postgres rows need sweeping.
type SessionCleanupWorker struct {
	sessions repository.SessionRepository
	config   *SessionCleanupConfig
	log      *logger.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool

	// Stats
	totalDeleted int64
	lastScanTime time.Time
	lastDeleted  int64
}

// NewSessionCleanupWorker creates a new session cleanup worker
func NewSessionCleanupWorker(sessions repository.SessionRepository, config *SessionCleanupConfig) *SessionCleanupWorker {
	if config == nil {
		config = DefaultSessionCleanupConfig()
	}

	return &SessionCleanupWorker{
		sessions: sessions,
		config:   config,
		log:      logger.Get(),
	}
}

// Start starts the cleanup worker. The worker can be restarted after Stop.
func (w *SessionCleanupWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("session cleanup worker already running")
	}
	w.running = true
	// Fresh channel each start; the previous one is closed by Stop.
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.log.Info("Starting session cleanup worker")

	w.wg.Add(1)
	go w.scan(ctx, stopCh)

	return nil
}

// Stop stops the cleanup worker
func (w *SessionCleanupWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh := w.stopCh
	w.mu.Unlock()

	w.log.Info("Stopping session cleanup worker")
	close(stopCh)
	w.wg.Wait()
	w.log.Info("Session cleanup worker stopped")
}

// scan runs cleanup passes until stopped
func (w *SessionCleanupWorker) scan(ctx context.Context, stopCh <-chan struct{}) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.ScanInterval)
	defer ticker.Stop()

	// Run immediately on start
	w.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.cleanup(ctx)
		}
	}
}

// cleanup deletes expired sessions in one pass
func (w *SessionCleanupWorker) cleanup(ctx context.Context) {
	w.mu.Lock()
	w.lastScanTime = time.Now()
	w.mu.Unlock()

	deleted, err := w.sessions.DeleteExpired(ctx)
	if err != nil {
		w.log.Error(fmt.Sprintf("Failed to delete expired sessions: %v", err))
		return
	}

	w.mu.Lock()
	w.lastDeleted = deleted
	w.totalDeleted += deleted
	w.mu.Unlock()

	if deleted > 0 {
		w.log.Info(fmt.Sprintf("Deleted %d expired sessions", deleted))
	}
}

// GetStats returns worker statistics
func (w *SessionCleanupWorker) GetStats() *SessionCleanupStats {
	w.mu.Lock()
	defer w.mu.Unlock()

	return &SessionCleanupStats{
		IsRunning:    w.running,
		TotalDeleted: w.totalDeleted,
		LastScanTime: w.lastScanTime,
		LastDeleted:  w.lastDeleted,
	}
}

// SessionCleanupStats contains worker statistics
type SessionCleanupStats struct {
	IsRunning    bool      `json:"is_running"`
	TotalDeleted int64     `json:"total_deleted"`
	LastScanTime time.Time `json:"last_scan_time"`
	LastDeleted  int64     `json:"last_deleted"`
}
