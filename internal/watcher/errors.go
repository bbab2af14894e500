package watcher

import "errors"

var (
	ErrAlreadyActive = errors.New("monitoring is already active")
	ErrNotActive     = errors.New("monitoring is not active")
)
