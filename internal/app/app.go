package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"dirwatch/internal/cleanup"
	"dirwatch/internal/config"
	"dirwatch/internal/db"
	"dirwatch/internal/hasher"
	"dirwatch/internal/lib/logger/sl"
	"dirwatch/internal/scaner"
	"dirwatch/internal/sink"
	"dirwatch/internal/snapshot"
	"dirwatch/internal/storage/history"
	"dirwatch/internal/watcher"
)

const (
	StateFileName   = "state.db"
	HistoryFileName = "history.sqlite"
)

var (
	ErrInvalidRoot     = errors.New("watch directory does not exist or is not a directory")
	ErrHistoryDisabled = errors.New("event history is disabled")
)

// App holds everything a monitor of cfg.WatchDir needs.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	differ  *snapshot.Differ
	emitter *sink.Emitter
	status  *db.StatusDB
	history *history.Storage
}

// New wires the scanner, differ, sinks and stores described by cfg.
// Console output goes to out.
func New(cfg *config.Config, log *slog.Logger, out io.Writer) (*App, error) {
	if !scaner.Exists(cfg.WatchDir) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, cfg.WatchDir)
	}

	matcher, err := scaner.NewMatcher(scaner.MatchMode(cfg.ExcludeMode), cfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}

	// never report our own output as changes
	fileScaner := scaner.NewFileScaner(scaner.Config{
		Matcher:   matcher,
		SkipPaths: []string{cfg.LogFile, cfg.StateDir},
		Logger:    log,
	})

	differ := snapshot.NewDiffer(snapshot.DifferConfig{
		Root:    cfg.WatchDir,
		Hasher:  hasher.NewBlake2bHasher(hasher.DefaultBufferSize),
		Scanner: fileScaner,
		Logger:  log,
	})

	statusDB, err := OpenStatusDB(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		log:    log,
		differ: differ,
		status: statusDB,
	}

	sinks := []sink.Sink{
		sink.NewConsole(out),
		sink.NewLogFile(cfg.LogFile),
	}

	if !cfg.DisableHistory {
		a.history, err = OpenHistory(cfg, log)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, a.history)

		cleaner := cleanup.NewHistoryCleaner(a.history, cfg.HistoryKeep, log)
		if err := cleaner.CleanupOldEvents(context.Background(), cfg.WatchDir); err != nil {
			log.Warn("history cleanup failed", sl.Err(err))
		}
	}

	a.emitter = sink.NewEmitter(log, sinks...)
	return a, nil
}

// NewMonitor builds a monitor over the shared snapshot. Only the long
// running monitor should record its status; one-shot checks must not
// overwrite the record of a monitor running elsewhere.
func (a *App) NewMonitor(recordStatus bool) *watcher.Monitor {
	cfg := watcher.Config{
		Interval: a.cfg.Interval(),
		LogFile:  a.cfg.LogFile,
		Logger:   a.log,
	}
	if recordStatus {
		cfg.Status = a.status
	}
	return watcher.NewMonitor(a.differ, a.emitter, cfg)
}

func (a *App) Close() error {
	if a.history != nil {
		return a.history.Close()
	}
	return nil
}

func OpenStatusDB(cfg *config.Config) (*db.StatusDB, error) {
	statusDB, err := db.NewStatusDB(db.Config{Path: filepath.Join(cfg.StateDir, StateFileName)})
	if err != nil {
		return nil, fmt.Errorf("failed to open status db: %w", err)
	}
	return statusDB, nil
}

func OpenHistory(cfg *config.Config, log *slog.Logger) (*history.Storage, error) {
	if cfg.DisableHistory {
		return nil, ErrHistoryDisabled
	}
	storage, err := history.New(history.Config{
		DBPath: filepath.Join(cfg.StateDir, HistoryFileName),
		Root:   cfg.WatchDir,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return storage, nil
}

// ReadStatus returns the recorded state of the monitor for cfg.WatchDir
// without scanning. A root that was never monitored, or whose monitor
// process is gone, is reported as inactive.
func ReadStatus(cfg *config.Config) (*db.Status, error) {
	idle := &db.Status{
		Root:    cfg.WatchDir,
		LogFile: cfg.LogFile,
	}

	statusDB, err := OpenStatusDB(cfg)
	if err != nil {
		return nil, err
	}

	st, err := statusDB.GetStatus(cfg.WatchDir)
	if errors.Is(err, db.ErrStatusNotFound) {
		return idle, nil
	}
	if err != nil {
		return nil, err
	}

	if st.Active && !processAlive(st.PID) {
		st.Active = false
	}
	return st, nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = p.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, os.ErrPermission)
}
