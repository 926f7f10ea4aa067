// Package ingestion loads offer catalog snapshots into storage.
//
// A snapshot is a CSV file, optionally bzip2-compressed, with the columns
// OFFER, RETAILER, BRAND, BRAND_BELONGS_TO_CATEGORY and RECEIPTS. The Pipeline
// replaces the stored snapshot with the file's rows:
//   - The header is checked before anything in storage changes
//   - Rows are converted in parallel on a worker pool and written in file order
//   - Missing offers get the no-offer sentence for the row's brand
//
// Row IDs follow file order starting at 1, so the stored snapshot reproduces
// the file's row order exactly.
package ingestion
