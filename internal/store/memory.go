package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/query"
	"github.com/reportseek/reportseek/internal/scorer"
)

// MemoryStore implements DocumentStore as a full corpus scan with a
// word-boundary post-filter. It has no native scoring; the engine
// falls back to heuristic scoring for its candidates. Intended for
// tests and small corpora.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string]*Document
	order  []string
	closed bool
}

var _ DocumentStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]*Document)}
}

// FetchCandidates scans all documents and keeps those satisfying the
// query's term predicates, with exact-word matching enforced via
// word-boundary patterns. Candidates come back in insertion order.
func (m *MemoryStore) FetchCandidates(ctx context.Context, q *query.BackendQuery) ([]*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}
	if len(q.Terms) == 0 {
		return []*Document{}, nil
	}

	var out []*Document
	for _, name := range m.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := m.docs[name]
		if !inRange(doc.Filename, q.Range) {
			continue
		}
		if !matchesQuery(doc.Content, q) {
			continue
		}
		dup := *doc
		out = append(out, &dup)
	}
	if out == nil {
		out = []*Document{}
	}
	return out, nil
}

// matchesQuery evaluates the term/connective sequence against content.
// Ranked-OR queries need any single term hit. Boolean sequences bind
// AND tighter than OR, matching how SQL and FTS5 parse the rendered
// expression: a OR b AND c means a OR (b AND c).
func matchesQuery(content string, q *query.BackendQuery) bool {
	if q.Connectives == nil {
		return scorer.MatchesAny(content, q.Terms)
	}

	groupHit := scorer.CountHits(content, q.Terms[0]) > 0
	for i := 1; i < len(q.Terms); i++ {
		hit := scorer.CountHits(content, q.Terms[i]) > 0
		if strings.EqualFold(q.Connectives[i-1], "AND") {
			groupHit = groupHit && hit
		} else {
			if groupHit {
				return true
			}
			groupHit = hit
		}
	}
	return groupHit
}

// Exists reports whether a document with the filename is stored.
func (m *MemoryStore) Exists(ctx context.Context, filename string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return false, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}
	_, ok := m.docs[filename]
	return ok, nil
}

// Get returns the document stored under filename.
func (m *MemoryStore) Get(ctx context.Context, filename string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}
	doc, ok := m.docs[filename]
	if !ok {
		return nil, seekerrors.New(seekerrors.ErrCodeFileNotFound,
			fmt.Sprintf("document %s not found", filename), nil)
	}
	dup := *doc
	return &dup, nil
}

// Put stores a document unless its filename already exists.
func (m *MemoryStore) Put(ctx context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}
	if _, ok := m.docs[doc.Filename]; ok {
		// Duplicate filename: skip, never overwrite
		return nil
	}
	dup := *doc
	m.docs[doc.Filename] = &dup
	m.order = append(m.order, doc.Filename)
	return nil
}

// Replace overwrites an existing document, or inserts it if absent.
func (m *MemoryStore) Replace(ctx context.Context, doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}
	if _, ok := m.docs[doc.Filename]; !ok {
		m.order = append(m.order, doc.Filename)
	}
	dup := *doc
	m.docs[doc.Filename] = &dup
	return nil
}

// Remove deletes documents by filename.
func (m *MemoryStore) Remove(ctx context.Context, filenames []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	drop := make(map[string]struct{}, len(filenames))
	for _, f := range filenames {
		drop[f] = struct{}{}
		delete(m.docs, f)
	}

	kept := m.order[:0]
	for _, name := range m.order {
		if _, gone := drop[name]; !gone {
			kept = append(kept, name)
		}
	}
	m.order = kept
	return nil
}

// Count returns the number of stored documents.
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}
	return len(m.docs), nil
}

// List returns all stored filenames in lexical order.
func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	names := make([]string, 0, len(m.docs))
	for name := range m.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Capabilities reports no native scoring; a scan store cannot rank.
func (m *MemoryStore) Capabilities() Capabilities {
	return Capabilities{NativeScores: false}
}

// Close marks the store closed. Idempotent.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
