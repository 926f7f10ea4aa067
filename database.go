// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package offersearch ranks retail offers against free-text queries.
//
// Database ties the pieces together: a BadgerDB store holding the catalog
// snapshot, the ingestion pipeline that fills it and the searcher that ranks
// against an in-memory catalog built from it.
package offersearch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/offersearch/catalog"
	"github.com/poiesic/offersearch/core"
	"github.com/poiesic/offersearch/ingestion"
	"github.com/poiesic/offersearch/search"
	"github.com/poiesic/offersearch/storage"
	"github.com/poiesic/offersearch/storage/badger"
)

type Database struct {
	backend  *badger.Backend
	repo     storage.OfferRepository
	poolSize int
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
	poolSize int
	logger   *slog.Logger
}

// WithInMemory keeps the snapshot in memory instead of on disk.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithPoolSize sets the worker pool size for catalog builds and imports.
// Zero or less keeps each component's default.
func WithPoolSize(size int) DatabaseOption {
	return func(o *databaseOptions) {
		o.poolSize = size
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDatabase opens the snapshot store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewOfferRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:  backend,
		repo:     repo,
		poolSize: options.poolSize,
		logger:   options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.repo.Close(); err != nil {
		db.logger.Error("error closing offer repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) OfferRepository() storage.OfferRepository {
	return db.repo
}

// NewIngestionPipeline creates a pipeline writing into this database.
// The caller must Release it.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{ingestion.WithLogger(db.logger)}
	if db.poolSize > 0 {
		base = append(base, ingestion.WithPoolSize(db.poolSize))
	}
	return ingestion.NewPipeline(db.repo, append(base, opts...)...)
}

// Import replaces the stored snapshot with the CSV at path.
func (db *Database) Import(ctx context.Context, path string, opts ...ingestion.Option) (*core.SnapshotInfo, error) {
	pipeline, err := db.NewIngestionPipeline(opts...)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()
	return pipeline.ImportFile(ctx, path)
}

// SnapshotInfo returns metadata about the stored snapshot, or nil if none.
func (db *Database) SnapshotInfo(ctx context.Context) (*core.SnapshotInfo, error) {
	return db.repo.LoadSnapshotInfo(ctx)
}

// LoadCatalog builds a search-ready catalog from the stored snapshot.
// Returns core.ErrNoData if the store is empty.
func (db *Database) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	offers, err := db.repo.AllOffers(ctx)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, core.ErrNoData
	}

	opts := []catalog.Option{catalog.WithLogger(db.logger)}
	if db.poolSize > 0 {
		opts = append(opts, catalog.WithPoolSize(db.poolSize))
	}
	cat, err := catalog.New(offers, opts...)
	if err != nil {
		return nil, err
	}

	info, err := db.repo.LoadSnapshotInfo(ctx)
	if err != nil {
		return nil, err
	}
	if info != nil && info.Fingerprint != cat.Fingerprint() {
		db.logger.Warn("stored snapshot does not match its import record",
			"source", info.Source,
			"recorded_rows", info.Rows,
			"rows", cat.Len())
	}
	return cat, nil
}

// NewSearcher creates a searcher over the stored snapshot.
// An empty store is not an error: the searcher answers core.ErrNoData until
// Reload finds data.
func (db *Database) NewSearcher(ctx context.Context, opts ...search.Option) (*search.Searcher, error) {
	cat, err := db.LoadCatalog(ctx)
	if err != nil && !errors.Is(err, core.ErrNoData) {
		return nil, err
	}
	return search.NewSearcher(cat, append([]search.Option{search.WithLogger(db.logger)}, opts...)...)
}

// Reload rebuilds the catalog from storage and swaps it into searcher.
// On error the searcher keeps its current catalog.
func (db *Database) Reload(ctx context.Context, searcher *search.Searcher) error {
	cat, err := db.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	searcher.SetCatalog(cat)
	return nil
}
