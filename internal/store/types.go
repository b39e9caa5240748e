// Package store provides document store backends for candidate
// retrieval. All backends satisfy DocumentStore; the SQLite backend
// additionally yields native full-text relevance scores.
package store

import (
	"context"
	"regexp"
	"strconv"

	"github.com/reportseek/reportseek/internal/query"
)

// Document is a single ingested report.
type Document struct {
	// Filename is the unique, stable identifier. It often encodes a
	// work-order number as a leading digit run.
	Filename string

	// Content is the extracted plain text.
	Content string

	// Date is the best-effort submission date (YYYY-MM-DD), may be empty.
	Date string

	// NativeScore is the backend-computed relevance for the query that
	// fetched this candidate. Zero when the backend has no scoring.
	NativeScore float64
}

// Capabilities describes what a backend can do natively.
type Capabilities struct {
	// NativeScores reports whether FetchCandidates attaches
	// backend-computed relevance scores.
	NativeScores bool
}

// DocumentStore abstracts candidate retrieval from a persistence backend.
//
// An empty candidate set is not an error. Connectivity failures surface
// as a StoreUnavailable error, never as empty results.
type DocumentStore interface {
	// FetchCandidates returns documents matching the query.
	FetchCandidates(ctx context.Context, q *query.BackendQuery) ([]*Document, error)

	// Exists reports whether a document with the filename is stored.
	Exists(ctx context.Context, filename string) (bool, error)

	// Get returns the document stored under filename.
	Get(ctx context.Context, filename string) (*Document, error)

	// Put stores a document. Re-ingesting an existing filename is a
	// no-op, never an overwrite.
	Put(ctx context.Context, doc *Document) error

	// Replace overwrites an existing document, or inserts it if absent.
	Replace(ctx context.Context, doc *Document) error

	// Remove deletes documents by filename.
	Remove(ctx context.Context, filenames []string) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// List returns all stored filenames in lexical order.
	List(ctx context.Context) ([]string, error)

	// Capabilities describes the backend's native features.
	Capabilities() Capabilities

	// Close releases backend resources. Idempotent.
	Close() error
}

var leadingDigitsRe = regexp.MustCompile(`^\d+`)

// filenameIdentifier parses the leading digit run of a filename.
// Returns false when the filename has no leading digits.
func filenameIdentifier(filename string) (int, bool) {
	m := leadingDigitsRe.FindString(filename)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// inRange applies a filename identifier range filter. Documents whose
// filename has no parseable leading digits are excluded from
// range-filtered queries, intentionally.
func inRange(filename string, rng *query.Range) bool {
	if rng == nil {
		return true
	}
	id, ok := filenameIdentifier(filename)
	if !ok {
		return false
	}
	return id >= rng.Min && id <= rng.Max
}
