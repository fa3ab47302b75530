package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrPersistence = errors.New("persistence failed")
)
