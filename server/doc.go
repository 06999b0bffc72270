// Package server exposes the retrieval orchestrator over HTTP.
//
// Routes:
//
//	GET  /health       liveness probe
//	POST /api/ask      {"query": "...", "k": 4} -> answer, sources, raw context
//	POST /api/reload   rebuild the shared vector index from storage
//
// A query fails with 503 when the vector index cannot be loaded. A failed
// generation still returns 200 with the degraded answer and an error field.
package server
