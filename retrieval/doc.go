// Package retrieval answers questions about the ingested procedure documents.
//
// An Orchestrator lower-cases the question, retrieves an oversampled
// candidate pool from the shared vector index, re-ranks it with the hybrid
// searcher and hands the best chunks to a text generator under a grounding
// prompt. The result carries the generated answer, one citation per
// (file, chapter) pair in rank order, and the raw context the model saw.
//
// Failures are split in two classes. Without an index nothing can be
// retrieved and Ask fails. A failed generation still returns the citations
// and the context, with a degraded answer, so a caller can show where the
// answer would have come from.
package retrieval
