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


// Package storage provides the storage abstraction layer for medirag.
//
// This package defines the ChunkRepository interface that decouples the
// persisted chunk set from ingestion and retrieval. BadgerDB is the only
// implementation (storage/badger).
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the storage
// interface, not the concrete type:
//
//	repo, err := badger.NewChunkRepository(backend) // returns storage.ChunkRepository
//
// # Layout
//
// Records are keyed by source file and sequence number, so every chunk of a
// document can be replaced in one transaction when the document is
// re-ingested, and a full scan returns chunks in document order.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
