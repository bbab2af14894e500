package db

import "errors"

var (
	ErrStatusNotFound = errors.New("status not found")
	ErrBucketNotFound = errors.New("bucket not found")
	ErrNilStatus      = errors.New("status is nil")
	ErrEmptyRoot      = errors.New("status root is empty")
)
