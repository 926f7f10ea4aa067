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

import "errors"

// Domain errors
var (
	// ErrNoData indicates there is no catalog data to rank against.
	ErrNoData = errors.New("no catalog data available")

	// ErrInvalidOffer indicates an Offer failed validation.
	ErrInvalidOffer = errors.New("invalid offer")

	// ErrNegativeReceipts indicates the Receipts field is negative.
	ErrNegativeReceipts = errors.New("receipts cannot be negative")

	// ErrNonFiniteReceipts indicates the Receipts field is NaN or infinite.
	ErrNonFiniteReceipts = errors.New("receipts must be finite")
)
