package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/offersearch/core"
	"github.com/poiesic/offersearch/storage"
)

// OfferRepository implements storage.OfferRepository for BadgerDB.
type OfferRepository struct {
	backend *Backend
	// mu serializes ID assignment across concurrent AddOffers calls.
	mu sync.Mutex
}

var _ storage.OfferRepository = (*OfferRepository)(nil)

// NewOfferRepository creates a new OfferRepository.
func NewOfferRepository(backend *Backend) (storage.OfferRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &OfferRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned by the caller.
func (r *OfferRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *OfferRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddOffers validates and appends offers. Either every offer is stored or none.
func (r *OfferRepository) AddOffers(ctx context.Context, offers ...*core.Offer) ([]*core.Offer, error) {
	for i, offer := range offers {
		if err := core.ValidateOffer(offer); err != nil {
			return nil, fmt.Errorf("offer %d: %w", i, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// IDs reach the caller's offers only after the commit succeeds.
	var first core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		last, err := r.lastID(tx)
		if err != nil {
			return err
		}
		first = last + 1
		for i, offer := range offers {
			record := *offer
			record.Id = first + core.ID(i)
			if err := tx.Set(makeOfferKey(record.Id), storage.MarshalOffer(&record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	for i, offer := range offers {
		offer.Id = first + core.ID(i)
	}
	return offers, nil
}

// lastID returns the highest stored offer ID, or 0 when there are none.
func (r *OfferRepository) lastID(tx *badger.Txn) (core.ID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = false
	opts.Prefix = []byte(offerRecordPrefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	iter.Seek(lastOfferSeekKey())
	if !iter.Valid() {
		return 0, nil
	}
	return offerIDFromKey(iter.Item().Key()), nil
}

// GetOffer retrieves a single offer by ID.
func (r *OfferRepository) GetOffer(ctx context.Context, id core.ID) (*core.Offer, error) {
	var offer *core.Offer
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeOfferKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			offer, unmarshalErr = storage.UnmarshalOffer(val)
			return unmarshalErr
		})
	}, false)
	return offer, err
}

// AllOffers returns every stored offer ordered by ID.
func (r *OfferRepository) AllOffers(ctx context.Context) ([]*core.Offer, error) {
	var offers []*core.Offer
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(offerRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				offer, err := storage.UnmarshalOffer(val)
				if err != nil {
					return err
				}
				offers = append(offers, offer)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return offers, nil
}

// Count returns the number of stored offers.
func (r *OfferRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(offerRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Clear removes every offer and the snapshot info.
func (r *OfferRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.DeletePrefix([]byte(offerRecordPrefix), []byte(snapshotInfoKey))
}

// SaveSnapshotInfo persists the snapshot metadata.
func (r *OfferRepository) SaveSnapshotInfo(ctx context.Context, info *core.SnapshotInfo) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(snapshotInfoKey), storage.MarshalSnapshotInfo(info)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadSnapshotInfo retrieves the snapshot metadata.
// Returns nil, nil if none has been saved.
func (r *OfferRepository) LoadSnapshotInfo(ctx context.Context) (*core.SnapshotInfo, error) {
	var info *core.SnapshotInfo
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(snapshotInfoKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			info, unmarshalErr = storage.UnmarshalSnapshotInfo(val)
			return unmarshalErr
		})
	}, false)
	return info, err
}
