package scaner

import "errors"

var (
	ErrInvalidPattern   = errors.New("invalid exclude pattern")
	ErrInvalidMatchMode = errors.New("invalid match mode")
)
