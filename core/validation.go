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


package core

import (
	"fmt"
	"math"
)

// ValidateOffer validates an Offer according to domain rules.
//
// Validation rules:
//   - Receipts must be finite
//   - Receipts must not be negative
//
// NOT validated (tolerated as missing):
//   - Offer (filled with the no-offer sentence)
//   - Brand, Retailer, Category (empty text scores zero)
//   - ID (assigned by storage)
func ValidateOffer(offer *Offer) error {
	if offer == nil {
		return fmt.Errorf("%w: offer is nil", ErrInvalidOffer)
	}

	if math.IsNaN(offer.Receipts) || math.IsInf(offer.Receipts, 0) {
		return fmt.Errorf("%w: %w", ErrInvalidOffer, ErrNonFiniteReceipts)
	}

	if offer.Receipts < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOffer, ErrNegativeReceipts)
	}

	return nil
}
