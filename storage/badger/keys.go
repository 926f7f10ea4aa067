package badger

import (
	"encoding/binary"

	"github.com/poiesic/offersearch/core"
)

// Key prefixes for different data types
const (
	offerRecordPrefix = "offrec:"
	snapshotInfoKey   = "snapinfo"
)

// makeOfferKey generates a key for an offer by ID.
// Format: prefix:id, with the ID in BigEndian so key order is ID order.
func makeOfferKey(id core.ID) []byte {
	buf := make([]byte, len(offerRecordPrefix)+8)
	offset := copy(buf, offerRecordPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// offerIDFromKey extracts the ID from an offer key.
func offerIDFromKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(offerRecordPrefix):]))
}

// lastOfferSeekKey sorts after every offer key, for reverse iteration.
func lastOfferSeekKey() []byte {
	return makeOfferKey(core.ID(^uint64(0)))
}
