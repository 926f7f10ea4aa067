package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/offersearch/core"
	"github.com/poiesic/offersearch/storage"
)

const (
	// DefaultBatchSize is the number of rows written per storage transaction.
	DefaultBatchSize = 1000

	// rowsPerTask is the number of rows one pool task converts.
	rowsPerTask = 128
)

// Pipeline replaces the stored catalog snapshot with rows read from a CSV source.
type Pipeline struct {
	repository storage.OfferRepository
	pool       *ants.Pool
	batchSize  int
	progress   io.Writer
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for row conversion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of rows written per storage transaction.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithProgress enables progress output to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(repository storage.OfferRepository, opts ...Option) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		pool:       pool,
		batchSize:  DefaultBatchSize,
		logger:     slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// ImportFile imports the snapshot stored at path.
func (p *Pipeline) ImportFile(ctx context.Context, path string) (*core.SnapshotInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return p.Import(ctx, f, path)
}

// Import replaces the stored snapshot with the rows read from r.
// source names the input in the saved snapshot info.
//
// The header is validated before storage is touched. If a row fails to
// convert or write, the partially written snapshot is cleared and the error
// returned. Returns core.ErrNoData if r holds a header but no rows.
func (p *Pipeline) Import(ctx context.Context, r io.Reader, source string) (*core.SnapshotInfo, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}

	if err := p.repository.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clearing snapshot: %w", err)
	}

	var tracker *ProgressTracker
	if p.progress != nil {
		tracker = NewProgressTracker(p.progress, 0, p.batchSize)
		tracker.Start()
	}

	info, err := p.load(ctx, reader, source, tracker)
	if err != nil {
		if tracker != nil {
			tracker.Abort()
		}
		if clearErr := p.repository.Clear(context.WithoutCancel(ctx)); clearErr != nil {
			p.logger.Error("error clearing partial snapshot", "err", clearErr)
		}
		return nil, err
	}
	if tracker != nil {
		tracker.Finish()
	}

	p.logger.Info("snapshot imported",
		"source", source,
		"rows", info.Rows,
		"fingerprint", uint64(info.Fingerprint))
	return info, nil
}

func (p *Pipeline) load(ctx context.Context, reader *Reader, source string, tracker *ProgressTracker) (*core.SnapshotInfo, error) {
	fp := core.NewFingerprint()
	rows := 0
	batch := make([]*Record, 0, p.batchSize)

	flush := func() error {
		offers, err := p.convert(reader, batch)
		if err != nil {
			return err
		}
		if _, err := p.repository.AddOffers(ctx, offers...); err != nil {
			return err
		}
		for _, offer := range offers {
			fp.Add(offer)
		}
		rows += len(offers)
		if tracker != nil {
			tracker.Increment(len(offers))
		}
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		batch = append(batch, rec)
		if len(batch) == p.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	if rows == 0 {
		return nil, core.ErrNoData
	}

	info := &core.SnapshotInfo{
		Source:      source,
		Rows:        rows,
		Fingerprint: fp.Sum(),
		ImportedAt:  time.Now().UTC(),
	}
	if err := p.repository.SaveSnapshotInfo(ctx, info); err != nil {
		return nil, err
	}
	return info, nil
}

// convert turns a batch of raw rows into offers on the worker pool.
// Output order matches input order. The first conversion error, by row
// position, is returned.
func (p *Pipeline) convert(reader *Reader, batch []*Record) ([]*core.Offer, error) {
	offers := make([]*core.Offer, len(batch))
	errs := make([]error, len(batch))

	var wg sync.WaitGroup
	for start := 0; start < len(batch); start += rowsPerTask {
		end := min(start+rowsPerTask, len(batch))
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				offers[i], errs[i] = reader.Offer(batch[i])
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, err
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return offers, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
