package watcher

import (
	"sync/atomic"
	"time"

	"dirwatch/internal/snapshot"
)

type ScanMetrics struct {
	scans         int64
	added         int64
	modified      int64
	deleted       int64
	errors        int64
	lastScanNanos int64
	lastDuration  int64
}

func NewScanMetrics() *ScanMetrics {
	return &ScanMetrics{}
}

func (m *ScanMetrics) RecordScan(at time.Time, duration time.Duration) {
	atomic.AddInt64(&m.scans, 1)
	atomic.StoreInt64(&m.lastScanNanos, at.UnixNano())
	atomic.StoreInt64(&m.lastDuration, int64(duration))
}

func (m *ScanMetrics) RecordEvent(kind snapshot.Kind) {
	switch kind {
	case snapshot.KindAdded:
		atomic.AddInt64(&m.added, 1)
	case snapshot.KindModified:
		atomic.AddInt64(&m.modified, 1)
	case snapshot.KindDeleted:
		atomic.AddInt64(&m.deleted, 1)
	}
}

func (m *ScanMetrics) RecordErrors(n int) {
	atomic.AddInt64(&m.errors, int64(n))
}

func (m *ScanMetrics) Scans() int64 {
	return atomic.LoadInt64(&m.scans)
}

// Events is the number of change events, markers excluded.
func (m *ScanMetrics) Events() int64 {
	return atomic.LoadInt64(&m.added) + atomic.LoadInt64(&m.modified) + atomic.LoadInt64(&m.deleted)
}

func (m *ScanMetrics) Errors() int64 {
	return atomic.LoadInt64(&m.errors)
}

func (m *ScanMetrics) LastScan() (time.Time, time.Duration) {
	nanos := atomic.LoadInt64(&m.lastScanNanos)
	if nanos == 0 {
		return time.Time{}, 0
	}
	return time.Unix(0, nanos), time.Duration(atomic.LoadInt64(&m.lastDuration))
}

func (m *ScanMetrics) GetStats() map[string]interface{} {
	last, duration := m.LastScan()
	return map[string]interface{}{
		"scans":              m.Scans(),
		"events_added":       atomic.LoadInt64(&m.added),
		"events_modified":    atomic.LoadInt64(&m.modified),
		"events_deleted":     atomic.LoadInt64(&m.deleted),
		"sink_errors":        m.Errors(),
		"last_scan_time":     last,
		"last_scan_duration": duration,
	}
}
