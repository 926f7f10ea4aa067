package ingestion

import (
	"bufio"
	"compress/bzip2"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/poiesic/offersearch/core"
)

// Source column names.
const (
	ColumnOffer    = "OFFER"
	ColumnRetailer = "RETAILER"
	ColumnBrand    = "BRAND"
	ColumnCategory = "BRAND_BELONGS_TO_CATEGORY"
	ColumnReceipts = "RECEIPTS"
)

var requiredColumns = []string{ColumnOffer, ColumnRetailer, ColumnBrand, ColumnCategory, ColumnReceipts}

// bzip2Magic opens every bzip2 stream.
var bzip2Magic = []byte("BZh")

// Record is one raw CSV row with its 1-based line number in the file.
type Record struct {
	Line   int
	Fields []string
}

// Reader reads raw offer rows from a CSV stream.
type Reader struct {
	csv     *csv.Reader
	columns map[string]int
}

// NewReader wraps r, transparently decompressing bzip2 input, and reads the
// header. Column names are matched case-insensitively and extra columns are
// ignored. Returns ErrMissingColumn if a required column is absent.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(len(bzip2Magic)); err == nil && string(magic) == string(bzip2Magic) {
		r = bzip2.NewReader(br)
	} else {
		r = br
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
		}
		return nil, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.ToUpper(strings.TrimSpace(name))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	return &Reader{csv: cr, columns: columns}, nil
}

// Read returns the next raw row, or io.EOF at the end of input.
func (r *Reader) Read() (*Record, error) {
	fields, err := r.csv.Read()
	if err != nil {
		return nil, err
	}
	line, _ := r.csv.FieldPos(0)
	return &Record{Line: line, Fields: fields}, nil
}

// Offer converts a raw row into an offer with the fill rule applied.
// Missing trailing fields read as empty. An empty RECEIPTS reads as 0.
func (r *Reader) Offer(rec *Record) (*core.Offer, error) {
	field := func(name string) string {
		i := r.columns[name]
		if i >= len(rec.Fields) {
			return ""
		}
		return rec.Fields[i]
	}

	offer := &core.Offer{
		Offer:    field(ColumnOffer),
		Retailer: field(ColumnRetailer),
		Brand:    field(ColumnBrand),
		Category: field(ColumnCategory),
	}

	if raw := strings.TrimSpace(field(ColumnReceipts)); raw != "" {
		receipts, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %q", rec.Line, ErrInvalidReceipts, raw)
		}
		offer.Receipts = receipts
	}
	if err := core.ValidateOffer(offer); err != nil {
		return nil, fmt.Errorf("line %d: %w", rec.Line, err)
	}

	core.FillOffer(offer)
	return offer, nil
}
