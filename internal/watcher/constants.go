package watcher

import "time"

const (
	DefaultInterval = 5000 * time.Millisecond
)
