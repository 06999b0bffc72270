package ingestion

import (
	"errors"
	"fmt"
	"time"
)

// Status is the outcome of ingesting one document.
type Status int

const (
	// StatusStored means the document's chunks replaced its previous records.
	StatusStored Status = iota
	// StatusEmpty means the document had no meaningful content; its records were removed.
	StatusEmpty
	// StatusFailed means the document could not be parsed, embedded or stored.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusStored:
		return "stored"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// FileReport describes the ingestion of one document.
type FileReport struct {
	Path   string
	Source string
	Status Status
	Chunks int
	Err    error
}

// Report summarizes an ingestion run. Files are in input order.
type Report struct {
	Files   []FileReport
	Elapsed time.Duration
}

// Chunks returns the number of chunks stored.
func (r *Report) Chunks() int {
	total := 0
	for _, f := range r.Files {
		total += f.Chunks
	}
	return total
}

// Count returns the number of files with the given status.
func (r *Report) Count(status Status) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// Err joins the errors of every failed file, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
	}
	return errors.Join(errs...)
}
