// Package ingestion builds the chunk store from procedure documents.
//
// A Pipeline collects XML files, chunks them on the chunking worker pool,
// embeds each document's chunks in batches and replaces that document's
// records in the repository. Documents are independent: a file that fails
// to parse is logged and reported and the rest of the batch still runs,
// and a file without meaningful content clears any chunks it had before.
//
// Ingestion is an offline batch job. A serving process picks up the new
// chunk set by reloading its index.
package ingestion
