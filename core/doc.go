// Package core defines the domain types shared across medirag: chunks,
// sections, stored chunk records, retrieval candidates and results, plus
// the failure taxonomy used by ingestion and retrieval.
package core
