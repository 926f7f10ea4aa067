package search

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/offersearch/catalog"
	"github.com/poiesic/offersearch/core"
	"github.com/poiesic/offersearch/normalize"
)

// DefaultLimit is the number of results returned when the caller does not ask
// for a specific number.
const DefaultLimit = 10

// Searcher ranks catalog offers against free-text queries.
type Searcher struct {
	catalog      atomic.Pointer[catalog.Catalog]
	cache        *resultCache
	defaultLimit int
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithDefaultLimit sets the number of results returned when Search is called
// with a non-positive limit. Default is DefaultLimit.
func WithDefaultLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit < 1 {
			return ErrInvalidLimit
		}
		s.defaultLimit = limit
		return nil
	}
}

// WithCache enables a result cache holding up to size rankings.
// Entries are keyed by catalog fingerprint, so replacing the catalog never
// serves stale results.
func WithCache(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			return ErrInvalidCacheSize
		}
		if s.cache != nil {
			s.cache.close()
		}
		cache, err := newResultCache(size)
		if err != nil {
			return err
		}
		s.cache = cache
		return nil
	}
}

// NewSearcher creates a new searcher over cat.
// cat may be nil; searches fail with core.ErrNoData until SetCatalog
// provides a snapshot.
func NewSearcher(cat *catalog.Catalog, opts ...Option) (*Searcher, error) {
	s := &Searcher{
		defaultLimit: DefaultLimit,
		logger:       slog.Default(),
	}
	s.catalog.Store(cat)

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// SetCatalog replaces the catalog snapshot used by subsequent searches.
// Searches already running finish against the snapshot they started with.
func (s *Searcher) SetCatalog(cat *catalog.Catalog) {
	s.catalog.Store(cat)
}

// Catalog returns the current catalog snapshot, or nil.
func (s *Searcher) Catalog() *catalog.Catalog {
	return s.catalog.Load()
}

// Close releases the result cache.
func (s *Searcher) Close() {
	if s.cache != nil {
		s.cache.close()
	}
}

// Search ranks the catalog against query and returns up to limit offers.
// A non-positive limit selects the default limit.
// Returns core.ErrNoData when there is no catalog to search.
func (s *Searcher) Search(ctx context.Context, query string, limit int) (*core.Ranking, error) {
	cat := s.catalog.Load()
	if cat == nil || cat.Len() == 0 {
		return nil, core.ErrNoData
	}
	limit = s.limit(limit)

	if s.cache != nil {
		if ranking, ok := s.cache.get(cat.Fingerprint(), query, limit); ok {
			s.logger.Debug("search served from cache", "query", query, "limit", limit)
			return ranking, nil
		}
	}

	ranking, err := s.search(ctx, cat, query, limit, &noopMonitor{})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.set(cat.Fingerprint(), query, limit, ranking)
	}
	return ranking, nil
}

// SearchWithMonitor ranks the catalog against query with monitoring.
// The monitor receives callbacks at each stage of the search process.
// Monitored searches always run in full and bypass the result cache.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, limit int, monitor SearchMonitor) (*core.Ranking, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	cat := s.catalog.Load()
	if cat == nil || cat.Len() == 0 {
		return nil, core.ErrNoData
	}
	return s.search(ctx, cat, query, s.limit(limit), monitor)
}

func (s *Searcher) limit(limit int) int {
	if limit < 1 {
		return s.defaultLimit
	}
	return limit
}

func (s *Searcher) search(ctx context.Context, cat *catalog.Catalog, query string, limit int, monitor SearchMonitor) (*core.Ranking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	started := time.Now()
	monitor.Start(query)

	// 1. Normalize the query the same way catalog fields were normalized
	normalized := normalize.Text(query)
	monitor.AfterNormalization(normalized)

	// 2. Score every row
	rows := scoreRows(cat, normalized, monitor)
	monitor.AfterScoring(rows)

	// 3. Pick the winning tier and its top rows
	tier, dim, top := selectRows(cat, query, rows, limit, monitor)

	ranking := &core.Ranking{
		Tier:      tier,
		Dimension: dim,
		Offers:    make([]core.RankedOffer, len(top)),
	}
	for i := range top {
		offer := cat.Offer(top[i].Row)
		ranking.Offers[i] = core.RankedOffer{
			Id:    offer.Id,
			Offer: offer.Offer,
			Score: top[i].Score(dim),
		}
	}
	monitor.Finish(ranking)

	s.logger.Debug("search complete",
		"query", query,
		"tier", tier.String(),
		"dimension", dim.String(),
		"results", len(ranking.Offers),
		"elapsed", time.Since(started))

	return ranking, nil
}
