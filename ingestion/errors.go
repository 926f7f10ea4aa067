package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when an offer repository is not provided.
	ErrRepositoryRequired = errors.New("offer repository required")

	// ErrMissingColumn is returned when the CSV header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidReceipts is returned when a RECEIPTS value is not a number.
	ErrInvalidReceipts = errors.New("invalid receipts value")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be positive")
)
