package domain

import "errors"

var (
	// ErrInvalidCategory is returned when a category string is not recognized
	ErrInvalidCategory = errors.New("invalid category")

	// ErrUnknownPassKind is returned when a trigger names a pass that does not exist
	ErrUnknownPassKind = errors.New("unknown pass kind")

	// ErrSavedSearchNotFound is returned when a saved search disappears between list and re-read
	ErrSavedSearchNotFound = errors.New("saved search not found")

	// ErrEmptyBatch is returned by transports asked to send a batch without recipients
	ErrEmptyBatch = errors.New("notification batch has no recipients")
)
