package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for catalog rows.
// Rows loaded from a snapshot are numbered by their position in the source,
// starting at 1, so ordering by ID preserves the original row order.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Offer is one catalog row: a brand carried by a retailer, optionally with
// an active offer, plus a popularity signal.
type Offer struct {
	Id       ID
	Offer    string  // Offer text, or the canned no-offer sentence after FillOffer
	Brand    string
	Retailer string
	Category string  // Category the brand belongs to
	Receipts float64 // Non-negative popularity signal
	HasOffer bool    // False when Offer was substituted with the no-offer sentence
}

// Field names a text column of the catalog that takes part in similarity scoring.
type Field int

const (
	FieldOffer Field = iota
	FieldRetailer
	FieldBrand
	FieldCategory
)

// Fields lists every scored text field in column order.
var Fields = [...]Field{FieldOffer, FieldRetailer, FieldBrand, FieldCategory}

// String returns the source column name of the field.
func (f Field) String() string {
	switch f {
	case FieldOffer:
		return "OFFER"
	case FieldRetailer:
		return "RETAILER"
	case FieldBrand:
		return "BRAND"
	case FieldCategory:
		return "BRAND_BELONGS_TO_CATEGORY"
	}
	return "UNKNOWN"
}

// Value returns the text of the field on the given offer.
func (f Field) Value(o *Offer) string {
	switch f {
	case FieldOffer:
		return o.Offer
	case FieldRetailer:
		return o.Retailer
	case FieldBrand:
		return o.Brand
	case FieldCategory:
		return o.Category
	}
	return ""
}

// Dimension is a ranking dimension with its own composite score.
type Dimension int

const (
	DimensionRetailer Dimension = iota
	DimensionBrand
	DimensionCategory
)

// Dimensions lists the ranking dimensions in fallback evaluation order.
var Dimensions = [...]Dimension{DimensionRetailer, DimensionBrand, DimensionCategory}

func (d Dimension) String() string {
	switch d {
	case DimensionRetailer:
		return "retailer"
	case DimensionBrand:
		return "brand"
	case DimensionCategory:
		return "category"
	}
	return "unknown"
}

// Field returns the text field whose similarity drives the dimension.
func (d Dimension) Field() Field {
	switch d {
	case DimensionRetailer:
		return FieldRetailer
	case DimensionBrand:
		return FieldBrand
	default:
		return FieldCategory
	}
}

// Tier identifies which selection rule produced a ranking.
type Tier int

const (
	TierCategory Tier = iota + 1
	TierRetailer
	TierBrand
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierCategory:
		return "category"
	case TierRetailer:
		return "retailer"
	case TierBrand:
		return "brand"
	case TierFallback:
		return "fallback"
	}
	return "unknown"
}

// RankedOffer is a single ranked result.
type RankedOffer struct {
	Id    ID
	Offer string
	Score float64
}

// Ranking is the outcome of a search: the winning tier, the dimension whose
// composite score ordered the results, and the results themselves.
type Ranking struct {
	Tier      Tier
	Dimension Dimension
	Offers    []RankedOffer
}

// SnapshotInfo describes the catalog snapshot currently held in storage.
type SnapshotInfo struct {
	Source      string // Path or name the rows were imported from
	Rows        int
	Fingerprint ID // Content hash of the imported rows
	ImportedAt  time.Time
}
