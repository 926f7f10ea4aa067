package storage

import (
	"context"

	"github.com/poiesic/offersearch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// OfferRepository stores the offer catalog snapshot.
type OfferRepository interface {
	Repository

	// AddOffers validates and appends offers to the snapshot.
	// IDs are assigned in argument order, continuing after the highest stored
	// ID, so a fresh snapshot numbers its rows from 1.
	// Returns the offers with IDs populated.
	AddOffers(ctx context.Context, offers ...*core.Offer) ([]*core.Offer, error)

	// GetOffer retrieves a single offer by ID.
	// Returns ErrNotFound if the offer doesn't exist.
	GetOffer(ctx context.Context, id core.ID) (*core.Offer, error)

	// AllOffers returns every stored offer ordered by ID.
	AllOffers(ctx context.Context) ([]*core.Offer, error)

	// Count returns the number of stored offers.
	Count(ctx context.Context) (int, error)

	// Clear removes every offer and the snapshot info.
	Clear(ctx context.Context) error

	// SaveSnapshotInfo records metadata about the stored snapshot.
	SaveSnapshotInfo(ctx context.Context, info *core.SnapshotInfo) error

	// LoadSnapshotInfo returns the stored snapshot metadata.
	// Returns nil, nil if none has been saved.
	LoadSnapshotInfo(ctx context.Context) (*core.SnapshotInfo, error)
}
