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


// Package search provides hybrid vector and lexical ranking of chunks.
//
// The Searcher type implements a two-stage search:
//   - Oversampled nearest-neighbor search against a VectorIndex
//   - Re-ranking of that candidate pool by a fused score combining vector
//     similarity with a TF-IDF score computed over the pool alone
//
// Ties on the fused score keep the order returned by the vector index.
package search
