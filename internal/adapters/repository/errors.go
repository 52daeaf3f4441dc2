package repository

import "errors"

// Sentinel kinds for dataset store errors.
var (
	// ErrDataLoad reports an unreadable source or a malformed table.
	ErrDataLoad = errors.New("dataset load failed")
	// ErrUnknownSource reports an unsupported dataset_source value.
	ErrUnknownSource = errors.New("unknown dataset source")
)
