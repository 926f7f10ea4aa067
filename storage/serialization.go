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

package storage

import (
	"fmt"

	"github.com/poiesic/offersearch/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalOffer serializes an Offer to bytes.
func MarshalOffer(offer *core.Offer) []byte {
	buf := make([]byte, core.OfferMUS.Size(*offer))
	core.OfferMUS.Marshal(*offer, buf)
	return buf
}

// UnmarshalOffer deserializes an Offer from bytes.
func UnmarshalOffer(data []byte) (*core.Offer, error) {
	offer, _, err := core.OfferMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &offer, nil
}

// MarshalSnapshotInfo serializes a SnapshotInfo to bytes.
func MarshalSnapshotInfo(info *core.SnapshotInfo) []byte {
	buf := make([]byte, core.SnapshotInfoMUS.Size(*info))
	core.SnapshotInfoMUS.Marshal(*info, buf)
	return buf
}

// UnmarshalSnapshotInfo deserializes a SnapshotInfo from bytes.
func UnmarshalSnapshotInfo(data []byte) (*core.SnapshotInfo, error) {
	info, _, err := core.SnapshotInfoMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &info, nil
}
