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

// Package storage provides the storage abstraction layer for offersearch.
//
// The catalog snapshot is persisted so a server can restart without re-reading
// the source CSV. Repository interfaces keep callers independent of the
// backend; the BadgerDB implementation lives in storage/badger.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the repository interface:
//
//	repo, err := badger.NewOfferRepository(backend)  // returns storage.OfferRepository
//
// Internal helpers may return concrete types since they're only used within
// the implementation package.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	defer repo.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation.
// Long scans check the context between rows.
package storage
