// Package reembed computes embedding vectors for stored chunk records.
//
// It is used in two places: ingestion embeds freshly chunked documents
// before they are stored, and the reembed command walks the whole chunk
// store to replace every vector after the embedding model changes.
//
// Embedding calls are batched and retried with exponential backoff.
// Vectors are normalized before they are stored so the index can use a
// plain dot product for cosine similarity.
package reembed
