// Package chunking turns clinical-procedure XML documents into bounded,
// chapter-labeled chunks.
//
// The transform runs in four steps:
//   - ReadDocument parses the XML into a Node tree
//   - a Parser groups meaningful text into sections, using SchemaStrategy when
//     the document has an information-body container and GenericStrategy otherwise
//   - Normalize and Filter clean each fragment and drop noise
//   - Window cuts each section's text into chunks of at most max chunk chars
//
// Pipeline composes these steps and chunks batches of files on a worker pool.
// A file that fails to parse never aborts the batch.
package chunking
