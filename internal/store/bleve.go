package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	bquery "github.com/blevesearch/bleve/v2/search/query"

	seekerrors "github.com/reportseek/reportseek/internal/errors"
	"github.com/reportseek/reportseek/internal/query"
)

// BleveStore implements DocumentStore on a Bleve v2 index.
// Single-process only; the SQLite backend is the default for
// concurrent access.
type BleveStore struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

var _ DocumentStore = (*BleveStore)(nil)

// bleveDocument is the indexed document structure.
type bleveDocument struct {
	Content string `json:"content"`
	Date    string `json:"date"`
}

// validateBleveIntegrity checks if a Bleve index is valid before opening.
// Returns nil if valid or absent, an error describing corruption if not.
func validateBleveIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Index doesn't exist, will be created
	}

	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing (corrupted index)")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty (corrupted)")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}

	return nil
}

// NewBleveStore opens or creates a Bleve-backed store at path.
// An empty path creates an in-memory store for testing.
// Corrupted indexes are cleared and recreated; reindexing is required.
func NewBleveStore(path string) (*BleveStore, error) {
	indexMapping := bleve.NewIndexMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		dir := filepath.Dir(path)
		if mkErr := os.MkdirAll(dir, 0755); mkErr != nil {
			return nil, seekerrors.StoreUnavailable(
				fmt.Errorf("failed to create directory %s: %w", dir, mkErr))
		}

		if validErr := validateBleveIntegrity(path); validErr != nil {
			slog.Warn("bleve_store_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))

			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, seekerrors.StoreUnavailable(
					fmt.Errorf("index corrupted at %s and cannot remove: %w (original error: %v)",
						path, removeErr, validErr))
			}
			slog.Info("bleve_store_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, please reingest"))
		}

		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("failed to create/open index: %w", err))
	}

	return &BleveStore{index: idx, path: path}, nil
}

// FetchCandidates returns documents matching the query, scored by the
// index's BM25 implementation.
func (b *BleveStore) FetchCandidates(ctx context.Context, q *query.BackendQuery) ([]*Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}
	if len(q.Terms) == 0 {
		return []*Document{}, nil
	}

	searchQuery := buildBleveQuery(q)
	searchRequest := bleve.NewSearchRequest(searchQuery)
	searchRequest.Fields = []string{"content", "date"}
	docCount, _ := b.index.DocCount()
	searchRequest.Size = int(docCount) + 1

	result, err := b.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("search failed: %w", err))
	}

	docs := make([]*Document, 0, len(result.Hits))
	for _, hit := range result.Hits {
		// Range filtering happens here; the index cannot compare
		// filename-derived integers natively.
		if !inRange(hit.ID, q.Range) {
			continue
		}
		doc := &Document{Filename: hit.ID, NativeScore: hit.Score}
		if c, ok := hit.Fields["content"].(string); ok {
			doc.Content = c
		}
		if d, ok := hit.Fields["date"].(string); ok {
			doc.Date = d
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// buildBleveQuery maps a backend query onto Bleve's boolean query
// model. Ranked-OR becomes a disjunction. An explicit connective
// sequence binds AND tighter than OR, the same precedence SQL and
// FTS5 apply to the rendered expression: terms are grouped into
// AND-runs, each run a conjunction, the runs joined in a disjunction.
func buildBleveQuery(q *query.BackendQuery) bquery.Query {
	matchFor := func(term string) *bquery.MatchQuery {
		mq := bleve.NewMatchQuery(term)
		mq.SetField("content")
		return mq
	}

	if q.Connectives == nil {
		queries := make([]bquery.Query, 0, len(q.Terms))
		for _, t := range q.Terms {
			queries = append(queries, matchFor(t))
		}
		return bleve.NewDisjunctionQuery(queries...)
	}

	var groups []bquery.Query
	group := []bquery.Query{matchFor(q.Terms[0])}
	for i := 1; i < len(q.Terms); i++ {
		if strings.EqualFold(q.Connectives[i-1], "AND") {
			group = append(group, matchFor(q.Terms[i]))
		} else {
			groups = append(groups, bleve.NewConjunctionQuery(group...))
			group = []bquery.Query{matchFor(q.Terms[i])}
		}
	}
	groups = append(groups, bleve.NewConjunctionQuery(group...))
	if len(groups) == 1 {
		return groups[0]
	}
	return bleve.NewDisjunctionQuery(groups...)
}

// Exists reports whether a document with the filename is indexed.
func (b *BleveStore) Exists(ctx context.Context, filename string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return false, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	doc, err := b.index.Document(filename)
	if err != nil {
		return false, seekerrors.StoreUnavailable(err)
	}
	return doc != nil, nil
}

// Get returns the document stored under filename. Stored fields are
// fetched through a doc-ID search; Bleve's raw Document API does not
// expose field values directly.
func (b *BleveStore) Get(ctx context.Context, filename string) (*Document, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{filename}))
	req.Fields = []string{"content", "date"}
	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, seekerrors.StoreUnavailable(err)
	}
	if len(result.Hits) == 0 {
		return nil, seekerrors.New(seekerrors.ErrCodeFileNotFound,
			fmt.Sprintf("document %s not found", filename), nil)
	}

	hit := result.Hits[0]
	doc := &Document{Filename: hit.ID}
	if c, ok := hit.Fields["content"].(string); ok {
		doc.Content = c
	}
	if d, ok := hit.Fields["date"].(string); ok {
		doc.Date = d
	}
	return doc, nil
}

// Put indexes a document unless its filename already exists. The
// duplicate check and the index write happen under one lock so
// concurrent puts of the same filename cannot overwrite each other.
func (b *BleveStore) Put(ctx context.Context, doc *Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	existing, err := b.index.Document(doc.Filename)
	if err != nil {
		return seekerrors.StoreUnavailable(err)
	}
	if existing != nil {
		// Duplicate filename: skip, never overwrite
		return nil
	}
	return b.indexLocked(doc)
}

// Replace indexes a document, overwriting any existing entry.
func (b *BleveStore) Replace(ctx context.Context, doc *Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}
	return b.indexLocked(doc)
}

// indexLocked writes a document to the index. Callers hold b.mu.
func (b *BleveStore) indexLocked(doc *Document) error {
	if err := b.index.Index(doc.Filename, bleveDocument{Content: doc.Content, Date: doc.Date}); err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to index document %s: %w", doc.Filename, err))
	}
	return nil
}

// Remove deletes documents by filename.
func (b *BleveStore) Remove(ctx context.Context, filenames []string) error {
	if len(filenames) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	batch := b.index.NewBatch()
	for _, f := range filenames {
		batch.Delete(f)
	}
	if err := b.index.Batch(batch); err != nil {
		return seekerrors.StoreUnavailable(fmt.Errorf("failed to delete documents: %w", err))
	}
	return nil
}

// Count returns the number of indexed documents.
func (b *BleveStore) Count(ctx context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return 0, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	n, err := b.index.DocCount()
	if err != nil {
		return 0, seekerrors.StoreUnavailable(err)
	}
	return int(n), nil
}

// List returns all indexed filenames in lexical order.
func (b *BleveStore) List(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, seekerrors.StoreUnavailable(fmt.Errorf("store is closed"))
	}

	docCount, _ := b.index.DocCount()
	req := bleve.NewSearchRequest(bleve.NewMatchAllQuery())
	req.Size = int(docCount) + 1

	result, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, seekerrors.StoreUnavailable(err)
	}

	names := make([]string, 0, len(result.Hits))
	for _, hit := range result.Hits {
		names = append(names, hit.ID)
	}
	sort.Strings(names)
	return names, nil
}

// Capabilities reports native scoring support.
func (b *BleveStore) Capabilities() Capabilities {
	return Capabilities{NativeScores: true}
}

// Close closes the index. Idempotent.
func (b *BleveStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}
