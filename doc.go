// Package medirag answers questions about clinical procedure information
// sheets with retrieval-augmented generation.
//
// Documents are XML information sheets. The chunking package splits them
// into chapter-labeled chunks, ingestion embeds and stores the chunks, and
// retrieval answers a question from the best-matching chunks with a
// generated answer plus citations.
//
// Database is the entry point that wires these together:
//
//	db, err := medirag.NewDatabase("./vectorstore")
//	chunker, err := db.NewChunker()
//	pipeline, err := db.NewIngestionPipeline(chunker)
//	report, err := pipeline.Ingest(ctx, "./documents")
//
//	orchestrator, err := db.NewOrchestrator(nil)
//	result, err := orchestrator.Ask(ctx, "Welche Risiken gibt es?", 4)
package medirag
