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


// Package catalog holds the immutable, search-ready snapshot of the offer catalog.
//
// A Catalog is built once from raw offers. Construction fills missing offers
// with the no-offer sentence, stems every text field, fits one TF-IDF model
// per field and precomputes the lower-cased columns used for substring
// matching. After New returns nothing in a Catalog changes, so a single
// snapshot can serve any number of concurrent searches.
package catalog

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/offersearch/core"
	"github.com/poiesic/offersearch/normalize"
	"github.com/poiesic/offersearch/tfidf"
)

// rowsPerTask is the number of rows one pool task normalizes.
const rowsPerTask = 256

const numFields = len(core.Fields)

// Catalog is a read-only snapshot of the offer catalog prepared for ranking.
type Catalog struct {
	offers      []core.Offer
	noOffer     []bool
	stemmed     [numFields][]string
	lower       [numFields][]string
	models      [numFields]*tfidf.Model
	maxReceipts float64
	fingerprint core.ID
}

type options struct {
	poolSize int
	logger   *slog.Logger
}

// Option configures catalog construction.
type Option func(*options) error

// WithPoolSize sets the number of workers used to normalize rows.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(o *options) error {
		if size < 1 {
			size = 1
		}
		o.poolSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// New builds a catalog snapshot from offers.
// The offers are copied; the caller's values are never modified.
// A row without an ID takes its 1-based position in offers.
// Returns core.ErrNoData if offers is empty.
func New(offers []*core.Offer, opts ...Option) (*Catalog, error) {
	o := &options{
		poolSize: max(runtime.NumCPU()/2, 1),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if len(offers) == 0 {
		return nil, core.ErrNoData
	}

	c := &Catalog{
		offers:  make([]core.Offer, len(offers)),
		noOffer: make([]bool, len(offers)),
	}
	for i, offer := range offers {
		if err := core.ValidateOffer(offer); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		c.offers[i] = *offer
		if c.offers[i].Id == 0 {
			c.offers[i].Id = core.ID(i + 1)
		}
		core.FillOffer(&c.offers[i])
		c.noOffer[i] = core.IsNoOffer(&c.offers[i])
		c.maxReceipts = max(c.maxReceipts, c.offers[i].Receipts)
	}
	for f := range core.Fields {
		c.stemmed[f] = make([]string, len(offers))
		c.lower[f] = make([]string, len(offers))
	}

	pool, err := ants.NewPool(o.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	if err := c.normalizeRows(pool); err != nil {
		return nil, err
	}
	if err := c.fitModels(pool); err != nil {
		return nil, err
	}
	c.fingerprint = c.computeFingerprint()

	for _, field := range core.Fields {
		model := c.models[field]
		o.logger.Debug("fitted field model",
			"field", field.String(),
			"vocabulary", model.VocabularySize(),
			"degenerate", model.Degenerate())
	}
	o.logger.Info("catalog snapshot ready", "rows", len(c.offers), "fingerprint", uint64(c.fingerprint))

	return c, nil
}

// normalizeRows fills the stemmed and lower-cased columns in parallel.
// Each task owns a disjoint range of rows.
func (c *Catalog) normalizeRows(pool *ants.Pool) error {
	var wg sync.WaitGroup
	for start := 0; start < len(c.offers); start += rowsPerTask {
		end := min(start+rowsPerTask, len(c.offers))
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				for _, field := range core.Fields {
					value := field.Value(&c.offers[i])
					c.stemmed[field][i] = normalize.Text(value)
					c.lower[field][i] = normalize.Lower(value)
				}
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()
	return nil
}

// fitModels fits one TF-IDF model per field in parallel.
func (c *Catalog) fitModels(pool *ants.Pool) error {
	var wg sync.WaitGroup
	for _, field := range core.Fields {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			c.models[field] = tfidf.Fit(c.stemmed[field])
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return err
		}
	}
	wg.Wait()
	return nil
}

func (c *Catalog) computeFingerprint() core.ID {
	fp := core.NewFingerprint()
	for i := range c.offers {
		fp.Add(&c.offers[i])
	}
	return fp.Sum()
}

// Len returns the number of rows.
func (c *Catalog) Len() int {
	return len(c.offers)
}

// Offer returns a copy of row i.
func (c *Catalog) Offer(i int) core.Offer {
	return c.offers[i]
}

// Offers returns a copy of every row in catalog order.
func (c *Catalog) Offers() []core.Offer {
	out := make([]core.Offer, len(c.offers))
	copy(out, c.offers)
	return out
}

// IsNoOffer reports whether row i carries the no-offer sentence.
func (c *Catalog) IsNoOffer(i int) bool {
	return c.noOffer[i]
}

// Stemmed returns the normalized text of field on row i.
func (c *Catalog) Stemmed(field core.Field, i int) string {
	return c.stemmed[field][i]
}

// Model returns the TF-IDF model fitted over field.
func (c *Catalog) Model(field core.Field) *tfidf.Model {
	return c.models[field]
}

// Similarities returns the similarity of an already normalized query against
// field for every row. The slice is freshly allocated.
func (c *Catalog) Similarities(field core.Field, normalizedQuery string) []float64 {
	return c.models[field].Similarities(normalizedQuery)
}

// ReceiptScore returns row i's receipts divided by the catalog maximum.
// It is 0 for every row when no row has receipts.
func (c *Catalog) ReceiptScore(i int) float64 {
	if c.maxReceipts <= 0 {
		return 0
	}
	return c.offers[i].Receipts / c.maxReceipts
}

// MaxReceipts returns the largest receipts value in the catalog.
func (c *Catalog) MaxReceipts() float64 {
	return c.maxReceipts
}

// Matches returns, in catalog order, the rows whose field contains query as a
// case-insensitive substring. A blank query matches nothing.
func (c *Catalog) Matches(field core.Field, query string) []int {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	needle := normalize.Lower(query)
	var rows []int
	for i, value := range c.lower[field] {
		if strings.Contains(value, needle) {
			rows = append(rows, i)
		}
	}
	return rows
}

// Fingerprint returns a content hash identifying this snapshot.
func (c *Catalog) Fingerprint() core.ID {
	return c.fingerprint
}
