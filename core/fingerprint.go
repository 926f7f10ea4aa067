package core

import (
	"encoding/binary"
	"hash"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint accumulates a content hash over a sequence of offers.
// Two snapshots with the same rows in the same order share a fingerprint.
// IDs are not part of the hash.
type Fingerprint struct {
	h   hash.Hash
	buf []byte
}

// NewFingerprint returns an empty fingerprint.
func NewFingerprint() *Fingerprint {
	h, _ := blake2b.New(8, nil)
	return &Fingerprint{h: h}
}

// Add feeds one offer into the hash.
func (f *Fingerprint) Add(o *Offer) {
	f.buf = f.buf[:0]
	for _, field := range Fields {
		f.buf = append(f.buf, field.Value(o)...)
		f.buf = append(f.buf, 0x1f)
	}
	f.buf = strconv.AppendFloat(f.buf, o.Receipts, 'g', -1, 64)
	f.buf = append(f.buf, 0x1e)
	f.h.Write(f.buf)
}

// Sum returns the fingerprint of every offer added so far.
func (f *Fingerprint) Sum() ID {
	return ID(binary.LittleEndian.Uint64(f.h.Sum(nil)))
}
