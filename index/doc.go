// Package index holds the in-memory vector index queried at answer time.
//
// An Index is immutable once built: it keeps a normalized copy of every
// stored chunk vector and answers nearest-neighbor queries with cosine
// distance. Searches need no locking.
//
// A Cache owns the process-wide handle. The first Get builds the index
// through its Loader; concurrent first callers wait for that single build
// rather than starting their own. Failed builds are not cached, so a later
// call retries. Reload and Swap replace the handle atomically, so in-flight
// queries keep using the index they started with.
//
// FromRepository reads through a repository the caller keeps open.
// FromStore opens the store only for the duration of a build, which lets a
// long-running server pick up data ingested by another process on Reload.
//
//	cache, _ := index.NewCache(index.FromStore("./vectorstore", embedder, logger))
//	ix, err := cache.Get(ctx)
//	hits, err := ix.Search(ctx, "welche risiken gibt es?", 8)
package index
