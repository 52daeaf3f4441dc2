package search

import "errors"

// Sentinel kinds for search errors. Callers match them with errors.Is.
var (
	// ErrNotFound reports an unknown reference player.
	ErrNotFound = errors.New("player not found")
	// ErrEmptyPool reports that the constraints removed every candidate.
	ErrEmptyPool = errors.New("no players match the given filters")
	// ErrValidation reports malformed query parameters.
	ErrValidation = errors.New("invalid query")
	// ErrNoDataset reports that no snapshot has been loaded yet.
	ErrNoDataset = errors.New("dataset not loaded")
)
