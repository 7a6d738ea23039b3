package vectordb

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"github.com/docly-labs/texgen/internal/dataset"
	"github.com/docly-labs/texgen/internal/embeddings"
)

const snapshotFile = "index.gob.gz"

const collectionName = "examples"

// Hit is a single nearest-neighbor match. Similarity is chromem's
// cosine similarity in [0,1]; higher means closer.
type Hit struct {
	EntryID    string
	DocType    string
	Keywords   []string
	Similarity float32
}

// Index is the similarity index over embedded dataset entries, backed
// by an in-memory chromem-go collection. It is built once and treated
// as read-only afterwards; concurrent searches are safe.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// New creates an empty index using the given embedder for both
// document and query embeddings.
func New(embedder embeddings.Embedder) (*Index, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &Index{db: db, collection: col, embedFunc: ef}, nil
}

// Add embeds and stores dataset entries. Each call embeds one entry at
// a time so callers can drive a progress reporter between calls.
func (ix *Index) Add(ctx context.Context, entries ...dataset.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromem.Document{
			ID:      e.ID,
			Content: e.EmbeddingText(),
			Metadata: map[string]string{
				"doc_type": e.DocType,
				"keywords": strings.Join(e.Keywords, ","),
			},
		}
	}

	return ix.collection.AddDocuments(ctx, docs, 1)
}

// Search returns up to k nearest entries for the query text, ordered
// by descending similarity.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	// chromem-go requires nResults <= collection size.
	if k <= 0 || k > count {
		k = count
	}

	results, err := ix.collection.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{
			EntryID:    r.ID,
			DocType:    r.Metadata["doc_type"],
			Keywords:   splitNonEmpty(r.Metadata["keywords"]),
			Similarity: r.Similarity,
		}
	}
	return hits, nil
}

// Count returns the number of indexed entries.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

// Persist saves the index to dir as a compressed gob snapshot.
func (ix *Index) Persist(ctx context.Context, dir string) error {
	return ix.db.ExportToFile(filepath.Join(dir, snapshotFile), true, "")
}

// Load restores a previously persisted index from dir.
func (ix *Index) Load(ctx context.Context, dir string) error {
	if err := ix.db.ImportFromFile(filepath.Join(dir, snapshotFile), ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := ix.db.GetCollection(collectionName, ix.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	ix.collection = col
	return nil
}

func splitNonEmpty(csv string) []string {
	if csv == "" {
		return nil
	}
	return strings.Split(csv, ",")
}
