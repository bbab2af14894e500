package watcher

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"dirwatch/internal/db"
	"dirwatch/internal/lib/logger/sl"
	"dirwatch/internal/snapshot"
)

// Monitor runs diff passes of one root on a fixed interval.
//
// Scans run on a single goroutine and the next one is only scheduled once
// the previous one has returned, so scans never overlap however long they
// take. Stop waits for an in-flight scan to finish.
type Monitor struct {
	differ   Differ
	emitter  Emitter
	status   StatusStore
	interval time.Duration
	logFile  string
	logger   *slog.Logger
	metrics  *ScanMetrics

	// ctl serializes Start, Stop and Check.
	ctl sync.Mutex

	mu        sync.RWMutex
	active    bool
	startedAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewMonitor(differ Differ, emitter Emitter, cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Monitor{
		differ:   differ,
		emitter:  emitter,
		status:   cfg.Status,
		interval: cfg.Interval,
		logFile:  cfg.LogFile,
		logger:   cfg.Logger.With(slog.String("root", differ.Root())),
		metrics:  NewScanMetrics(),
	}
}

// Start takes a baseline and schedules diff passes every interval. It is a
// no-op returning ErrAlreadyActive when monitoring is already running.
func (m *Monitor) Start(ctx context.Context) error {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	if m.IsActive() {
		m.logger.Warn("monitoring is already active")
		return ErrAlreadyActive
	}

	m.initialize(ctx)

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	m.mu.Lock()
	m.active = true
	m.startedAt = time.Now()
	m.cancel = cancel
	m.done = done
	m.mu.Unlock()

	m.saveStatus()
	m.logger.Info("monitoring started", slog.Duration("interval", m.interval))

	go m.loop(loopCtx, done)
	return nil
}

// Stop halts future scans and emits the STOPPED marker. It is a no-op
// returning ErrNotActive when monitoring is not running.
func (m *Monitor) Stop() error {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	m.mu.RLock()
	active, cancel, done := m.active, m.cancel, m.done
	m.mu.RUnlock()

	if !active {
		m.logger.Warn("monitoring is not active")
		return ErrNotActive
	}

	cancel()
	<-done

	m.emit(context.Background(), snapshot.NewEvent(snapshot.KindStopped, m.differ.Root()))

	m.mu.Lock()
	m.active = false
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	m.saveStatus()
	m.logger.Info("monitoring stopped")
	return nil
}

// Run starts monitoring and blocks until ctx is done, then stops.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return m.Stop()
}

// Check takes a fresh baseline and runs exactly one diff pass outside the
// schedule. It refuses to run while periodic monitoring is active.
func (m *Monitor) Check(ctx context.Context) ([]snapshot.Event, error) {
	m.ctl.Lock()
	defer m.ctl.Unlock()

	if m.IsActive() {
		return nil, ErrAlreadyActive
	}

	m.initialize(ctx)
	return m.scan(ctx), nil
}

func (m *Monitor) IsActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

func (m *Monitor) Metrics() *ScanMetrics {
	return m.metrics
}

// Status describes the monitor as it is now; it never scans.
func (m *Monitor) Status() *db.Status {
	m.mu.RLock()
	active, startedAt := m.active, m.startedAt
	m.mu.RUnlock()

	lastScan, duration := m.metrics.LastScan()
	return &db.Status{
		Root:             m.differ.Root(),
		LogFile:          m.logFile,
		Active:           active,
		PID:              os.Getpid(),
		TrackedFiles:     m.differ.Len(),
		Scans:            m.metrics.Scans(),
		Events:           m.metrics.Events(),
		Errors:           m.metrics.Errors(),
		StartedAt:        startedAt,
		LastScanAt:       lastScan,
		LastScanDuration: duration,
	}
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			m.scan(ctx)
			m.saveStatus()
			timer.Reset(m.interval)
		}
	}
}

func (m *Monitor) initialize(ctx context.Context) {
	n := m.differ.Initialize(ctx)
	m.emit(ctx, snapshot.NewInitializedEvent(m.differ.Root(), n))
}

func (m *Monitor) scan(ctx context.Context) []snapshot.Event {
	start := time.Now()
	events := m.differ.Diff(ctx)
	m.metrics.RecordScan(start, time.Since(start))

	for _, ev := range events {
		m.metrics.RecordEvent(ev.Kind)
		m.emit(ctx, ev)
	}

	if len(events) > 0 {
		m.logger.Debug("scan finished",
			slog.Int("changes", len(events)),
			slog.Duration("took", time.Since(start)),
		)
	}
	return events
}

// emit delivers ev even when ctx is already cancelled: a scan that has
// started always runs to completion and its events reach every sink.
func (m *Monitor) emit(ctx context.Context, ev snapshot.Event) {
	if failed := m.emitter.Emit(context.WithoutCancel(ctx), ev); failed > 0 {
		m.metrics.RecordErrors(failed)
	}
}

func (m *Monitor) saveStatus() {
	if m.status == nil {
		return
	}
	if err := m.status.SaveStatus(m.Status()); err != nil {
		m.logger.Warn("failed to save status", sl.Err(err))
	}
}
