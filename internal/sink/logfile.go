package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"dirwatch/internal/snapshot"
)

// TimeLayout is ISO-8601 with millisecond precision, always in UTC.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatLine renders ev as one log file line, newline included.
func FormatLine(ev snapshot.Event) string {
	return fmt.Sprintf("[%s] %s: %s\n", ev.Timestamp.UTC().Format(TimeLayout), ev.Kind, subject(ev))
}

// subject keeps one event on one line: a subject containing control
// characters is written Go-quoted.
func subject(ev snapshot.Event) string {
	s := ev.Subject()
	if strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

// LogFile appends one line per event. The file is reopened for every
// write so that it is recreated if someone removes it.
type LogFile struct {
	path string
	mu   sync.Mutex
}

func NewLogFile(path string) *LogFile {
	return &LogFile{path: path}
}

func (l *LogFile) Path() string {
	return l.path
}

func (l *LogFile) Emit(_ context.Context, ev snapshot.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if _, err := f.WriteString(FormatLine(ev)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write log file: %w", err)
	}

	return f.Close()
}
