package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// IDMUS serializes IDs in MUS format.
var IDMUS = idMUS{}

// OfferMUS serializes Offers in MUS format.
var OfferMUS = offerMUS{}

// SnapshotInfoMUS serializes SnapshotInfo in MUS format.
var SnapshotInfoMUS = snapshotInfoMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// Field order is part of the stored format. Append new fields at the end.
type offerMUS struct{}

func (offerMUS) Marshal(v Offer, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Offer, bs[n:])
	n += ord.String.Marshal(v.Brand, bs[n:])
	n += ord.String.Marshal(v.Retailer, bs[n:])
	n += ord.String.Marshal(v.Category, bs[n:])
	n += raw.Float64.Marshal(v.Receipts, bs[n:])
	return n + ord.Bool.Marshal(v.HasOffer, bs[n:])
}

func (offerMUS) Unmarshal(bs []byte) (v Offer, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	strs := []*string{&v.Offer, &v.Brand, &v.Retailer, &v.Category}
	for _, s := range strs {
		*s, n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	v.Receipts, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.HasOffer, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	return
}

func (offerMUS) Size(v Offer) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Offer)
	size += ord.String.Size(v.Brand)
	size += ord.String.Size(v.Retailer)
	size += ord.String.Size(v.Category)
	size += raw.Float64.Size(v.Receipts)
	return size + ord.Bool.Size(v.HasOffer)
}

type snapshotInfoMUS struct{}

func (snapshotInfoMUS) Marshal(v SnapshotInfo, bs []byte) (n int) {
	n = ord.String.Marshal(v.Source, bs)
	n += varint.Int.Marshal(v.Rows, bs[n:])
	n += IDMUS.Marshal(v.Fingerprint, bs[n:])
	return n + varint.Int64.Marshal(v.ImportedAt.UnixMicro(), bs[n:])
}

func (snapshotInfoMUS) Unmarshal(bs []byte) (v SnapshotInfo, n int, err error) {
	var n1 int
	if v.Source, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	v.Rows, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Fingerprint, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.ImportedAt = time.UnixMicro(micros).UTC()
	return
}

func (snapshotInfoMUS) Size(v SnapshotInfo) (size int) {
	size = ord.String.Size(v.Source)
	size += varint.Int.Size(v.Rows)
	size += IDMUS.Size(v.Fingerprint)
	return size + varint.Int64.Size(v.ImportedAt.UnixMicro())
}
