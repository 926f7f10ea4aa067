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



// Package search ranks catalog offers against free-text queries.
//
// The Searcher type implements a multi-stage ranking algorithm:
//   - TF-IDF cosine similarity of the stemmed query against the offer,
//     retailer, brand and category text of every row
//   - A composite score per ranking dimension (retailer, brand, category)
//     blending offer similarity, dimension similarity and popularity
//   - A tiered selection that prefers rows whose category, retailer or brand
//     contains the query, in that order, and otherwise picks the dimension
//     whose best ten rows score highest on average
//
// Scores are computed into per-call scratch space; the catalog snapshot is
// never written, so a Searcher is safe for concurrent use.
package search
