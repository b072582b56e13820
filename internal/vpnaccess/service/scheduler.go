package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/metrics"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/slogx"
)

const (
	MinIntervalMinutes = 1
	MaxIntervalMinutes = 60

	// DefaultHistoryLimit caps the in-memory run history.
	DefaultHistoryLimit = 20
)

var (
	// ErrAlreadySyncing rejects a manual trigger while a run is in flight.
	// The rejection is immediate and side-effect-free; runs are never
	// queued or interleaved.
	ErrAlreadySyncing = errors.New("a sync run is already in progress")

	ErrInvalidInterval = fmt.Errorf("interval must be between %d and %d minutes",
		MinIntervalMinutes, MaxIntervalMinutes)
)

// Scheduler owns the periodic reconciliation timer and the process-wide sync
// state: the armed flag, the in-flight flag, and the bounded run history.
// It guarantees at most one Reconciler run in flight at any time: two
// concurrent reconciliations racing the same external store can
// double-create or interleave deletes.
//
// The armed and in-flight flags are independent: stopping the timer lets an
// in-flight run finish, and a manual run can execute while the timer is
// stopped. There is no mid-run cancellation; runs are bounded by user count
// and the per-command timeout.
type Scheduler struct {
	Reconciler *Reconciler
	Logger     *slog.Logger

	// ScheduledOptions are the sync options used for timer-fired runs.
	ScheduledOptions domain.SyncOptions

	mu              sync.Mutex
	running         bool
	syncing         bool
	intervalMinutes int
	historyLimit    int
	history         []domain.SyncRun // most-recent-first
	lastRun         *domain.SyncRun
	nextFire        time.Time

	intervalCh chan time.Duration
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// NewScheduler creates a scheduler with the timer disarmed. Interval values
// outside [1,60] fall back to 15 minutes; historyLimit <= 0 falls back to
// DefaultHistoryLimit.
func NewScheduler(rec *Reconciler, logger *slog.Logger, intervalMinutes, historyLimit int) *Scheduler {
	if intervalMinutes < MinIntervalMinutes || intervalMinutes > MaxIntervalMinutes {
		intervalMinutes = 15
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}

	return &Scheduler{
		Reconciler:      rec,
		Logger:          logger,
		intervalMinutes: intervalMinutes,
		historyLimit:    historyLimit,
	}
}

// Start arms the recurring timer. Returns false without side effects if the
// timer is already armed. Advisory, not an error.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}

	interval := time.Duration(s.intervalMinutes) * time.Minute
	s.running = true
	s.nextFire = time.Now().Add(interval)
	s.intervalCh = make(chan time.Duration, 1)
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.loop(interval, s.intervalCh, s.stopCh, s.doneCh)

	metrics.SchedulerArmed.Set(1)
	s.Logger.Info("sync scheduler started", "interval_minutes", s.intervalMinutes)
	return true
}

// Stop disarms the timer. An in-flight run is left to finish; only the next
// scheduled run is prevented. Returns false if already stopped.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return false
	}
	s.running = false
	s.nextFire = time.Time{}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh

	metrics.SchedulerArmed.Set(0)
	s.Logger.Info("sync scheduler stopped")
	return true
}

// UpdateInterval validates and applies a new period. If the timer is armed
// it is re-armed with the new period without disturbing any in-flight run.
func (s *Scheduler) UpdateInterval(minutes int) error {
	if minutes < MinIntervalMinutes || minutes > MaxIntervalMinutes {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.intervalMinutes = minutes
	interval := time.Duration(minutes) * time.Minute

	if s.running {
		s.nextFire = time.Now().Add(interval)
		// Drain any stale value first, without blocking: the loop may have
		// consumed it already. The mutex serializes senders, so after the
		// drain the cap-1 buffer always has room and the send cannot block.
		select {
		case <-s.intervalCh:
		default:
		}
		s.intervalCh <- interval
	}

	s.Logger.Info("sync interval updated", "interval_minutes", minutes)
	return nil
}

// RunNow triggers a reconciliation run immediately on the caller's
// goroutine. Rejects with ErrAlreadySyncing when a run is in flight.
func (s *Scheduler) RunNow(ctx context.Context, opts domain.SyncOptions) (domain.SyncRun, error) {
	if !s.beginRun() {
		return domain.SyncRun{}, ErrAlreadySyncing
	}
	return s.execute(ctx, opts, "manual")
}

// State returns a point-in-time snapshot of the scheduler.
func (s *Scheduler) State() domain.SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := domain.SchedulerState{
		IsRunning:          s.running,
		IsSyncing:          s.syncing,
		IntervalMinutes:    s.intervalMinutes,
		ScheduleExpression: scheduleExpression(s.intervalMinutes),
		LastRun:            s.lastRun,
	}
	if !s.nextFire.IsZero() {
		t := s.nextFire
		state.NextFireTime = &t
	}
	return state
}

// History returns the bounded run history, most recent first.
func (s *Scheduler) History() []domain.SyncRun {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.SyncRun, len(s.history))
	copy(out, s.history)
	return out
}

// loop is the timer goroutine. It only fires run attempts; the mutual
// exclusion lives in beginRun so manual and scheduled triggers share one
// guard.
func (s *Scheduler) loop(interval time.Duration, intervalCh chan time.Duration, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			s.runScheduled()
			s.mu.Lock()
			s.nextFire = time.Now().Add(interval)
			s.mu.Unlock()
			timer.Reset(interval)

		case interval = <-intervalCh:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(interval)

		case <-stopCh:
			return
		}
	}
}

// runScheduled fires one timer-driven run. If a manual run is already in
// flight the tick is skipped; the next one will catch up.
func (s *Scheduler) runScheduled() {
	if !s.beginRun() {
		s.Logger.Warn("scheduled sync skipped, a run is already in progress")
		return
	}

	ctx := slogx.WithContext(context.Background(), s.Logger)
	if _, err := s.execute(ctx, s.ScheduledOptions, "scheduled"); err != nil {
		s.Logger.Error("scheduled sync failed", "error", err)
	}
}

// beginRun takes the in-flight guard. Returns false when a run already holds it.
func (s *Scheduler) beginRun() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.syncing {
		return false
	}
	s.syncing = true
	return true
}

// execute runs the reconciler while holding the guard, then freezes the run
// into history. The caller must have won beginRun.
func (s *Scheduler) execute(ctx context.Context, opts domain.SyncOptions, trigger string) (domain.SyncRun, error) {
	run, err := s.Reconciler.FullSync(ctx, opts)

	result := "ok"
	switch {
	case run.Aborted:
		result = "aborted"
		metrics.SyncErrorsTotal.WithLabelValues("infrastructure").Inc()
	case len(run.Errors) > 0:
		result = "partial"
	}
	metrics.SyncRunsTotal.WithLabelValues(trigger, result).Inc()
	metrics.SyncRunDuration.Observe(run.FinishedAt.Sub(run.StartedAt).Seconds())

	s.mu.Lock()
	s.syncing = false
	s.lastRun = &run
	s.history = append([]domain.SyncRun{run}, s.history...)
	if len(s.history) > s.historyLimit {
		s.history = s.history[:s.historyLimit]
	}
	s.mu.Unlock()

	return run, err
}

// scheduleExpression renders the interval as a cron expression for display.
func scheduleExpression(minutes int) string {
	if minutes >= 60 {
		return "0 * * * *"
	}
	return fmt.Sprintf("*/%d * * * *", minutes)
}
