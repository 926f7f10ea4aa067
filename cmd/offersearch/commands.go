package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/offersearch"
	"github.com/poiesic/offersearch/config"
	"github.com/poiesic/offersearch/core"
	"github.com/poiesic/offersearch/ingestion"
	"github.com/poiesic/offersearch/search"
	"github.com/poiesic/offersearch/server"
	"github.com/urfave/cli/v2"
)

func openDatabase(cfg *config.Config) (*offersearch.Database, error) {
	opts := []offersearch.DatabaseOption{offersearch.WithPoolSize(cfg.PoolSize)}
	if cfg.DBPath == "" {
		opts = append(opts, offersearch.WithInMemory())
	}
	return offersearch.NewDatabase(cfg.DBPath, opts...)
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one snapshot path")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("database path is required for import")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []ingestion.Option{ingestion.WithBatchSize(c.Int("batch-size"))}
	if c.Bool("progress") {
		opts = append(opts, ingestion.WithProgress(c.App.ErrWriter))
	}

	started := time.Now()
	info, err := db.Import(c.Context, c.Args().First(), opts...)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Imported %d rows from %s in %s (fingerprint %x)\n",
		info.Rows, info.Source, elapsed(time.Since(started)), uint64(info.Fingerprint))
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SnapshotPath != "" {
		if _, err := db.Import(ctx, cfg.SnapshotPath); err != nil {
			return err
		}
	}

	var searchOpts []search.Option
	searchOpts = append(searchOpts, search.WithDefaultLimit(cfg.DefaultLimit))
	if cfg.CacheSize > 0 {
		searchOpts = append(searchOpts, search.WithCache(cfg.CacheSize))
	}
	searcher, err := db.NewSearcher(ctx, searchOpts...)
	if err != nil {
		return err
	}
	defer searcher.Close()
	if searcher.Catalog() == nil {
		slog.Warn("no catalog stored; searches return 503 until a snapshot is imported")
	}

	go reloadOnHangup(ctx, db, searcher, cfg.SnapshotPath)

	srv := server.New(searcher,
		server.WithAllowedOrigins(cfg.AllowedOrigins...),
		server.WithTimeouts(cfg.ReadTimeout, cfg.WriteTimeout))
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}

// reloadOnHangup re-imports the snapshot file, if any, and swaps a freshly
// built catalog into searcher every time the process receives SIGHUP.
func reloadOnHangup(ctx context.Context, db *offersearch.Database, searcher *search.Searcher, snapshot string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
		}
		if err := reload(ctx, db, searcher, snapshot); err != nil {
			slog.Error("catalog reload failed", "err", err)
			continue
		}
		slog.Info("catalog reloaded", "rows", searcher.Catalog().Len())
	}
}

func reload(ctx context.Context, db *offersearch.Database, searcher *search.Searcher, snapshot string) error {
	if snapshot != "" {
		if _, err := db.Import(ctx, snapshot); err != nil {
			return err
		}
	}
	return db.Reload(ctx, searcher)
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(c.Context, search.WithDefaultLimit(cfg.DefaultLimit))
	if err != nil {
		return err
	}
	defer searcher.Close()

	query := strings.Join(c.Args().Slice(), " ")
	var monitor search.SearchMonitor
	if c.Bool("explain") {
		monitor = &printMonitor{w: c.App.Writer}
	}

	ranking, err := searcher.SearchWithMonitor(c.Context, query, c.Int("limit"), monitor)
	if err != nil {
		if errors.Is(err, core.ErrNoData) {
			return fmt.Errorf("no catalog stored; run import first: %w", err)
		}
		return err
	}

	fmt.Fprintf(c.App.Writer, "Tier: %s, ranked by %s\n", ranking.Tier, ranking.Dimension)
	for i, offer := range ranking.Offers {
		fmt.Fprintf(c.App.Writer, "%d: '%s' (%d)[%0.3f]\n", i+1, offer.Offer, offer.Id, offer.Score)
	}
	return nil
}

func infoCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := db.SnapshotInfo(c.Context)
	if err != nil {
		return err
	}
	if info == nil {
		fmt.Fprintln(c.App.Writer, "No snapshot stored")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "Source:      %s\nRows:        %d\nFingerprint: %x\nImported:    %s\n",
		info.Source, info.Rows, uint64(info.Fingerprint), info.ImportedAt.Format(time.RFC3339))
	return nil
}

// printMonitor writes each ranking stage to w.
type printMonitor struct {
	w io.Writer
}

var _ search.SearchMonitor = (*printMonitor)(nil)

func (m *printMonitor) Start(query string) {
	fmt.Fprintf(m.w, "Query: %q\n", query)
}

func (m *printMonitor) AfterNormalization(normalized string) {
	fmt.Fprintf(m.w, "Normalized: %q\n", normalized)
}

func (m *printMonitor) AfterSimilarity(field core.Field, similarities []float64) {
	best := 0.0
	for _, s := range similarities {
		best = max(best, s)
	}
	fmt.Fprintf(m.w, "Similarity %s: best %.3f\n", field, best)
}

func (m *printMonitor) AfterScoring(rows []search.ScoredRow) {
	fmt.Fprintf(m.w, "Scored %d rows\n", len(rows))
}

func (m *printMonitor) TierMatched(tier core.Tier, matches int) {
	fmt.Fprintf(m.w, "Tier %s: %d matching rows\n", tier, matches)
}

func (m *printMonitor) FallbackAverages(averages map[core.Dimension]float64, chosen core.Dimension) {
	for _, dim := range core.Dimensions {
		fmt.Fprintf(m.w, "Fallback %s: mean %.4f\n", dim, averages[dim])
	}
	fmt.Fprintf(m.w, "Fallback chose %s\n", chosen)
}

func (m *printMonitor) Finish(ranking *core.Ranking) {
	fmt.Fprintf(m.w, "Returned %d offers\n\n", len(ranking.Offers))
}
