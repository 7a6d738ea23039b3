package retrieval

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/docly-labs/texgen/internal/dataset"
	"github.com/docly-labs/texgen/internal/vectordb"
)

// mockEmbedder returns deterministic embeddings based on text content.
// Shared characters contribute to the same vector positions, so
// similar texts produce similar vectors.
type mockEmbedder struct {
	dims int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		results[i] = m.vector(text)
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

func (m *mockEmbedder) vector(text string) []float32 {
	vec := make([]float32, m.dims)
	for i, ch := range text {
		idx := (int(ch) + i) % m.dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

var testEntries = []dataset.Entry{
	{ID: "E1", UserPrompt: "write a letter to my landlord", DocType: "letter", Keywords: []string{"formal", "housing"}},
	{ID: "E2", UserPrompt: "lab report on titration", DocType: "report", Keywords: []string{"chemistry", "lab"}},
	{ID: "E3", UserPrompt: "meeting minutes for project sync", DocType: "minutes", Keywords: []string{"meeting"}},
	{ID: "E5", UserPrompt: "physics problem set", DocType: "worksheet", Keywords: []string{"physics"}},
	{ID: "E7", UserPrompt: "calculus assignment with integrals", DocType: "assignment", Keywords: []string{"math", "calculus"}},
}

func newTestRetriever(t *testing.T) *Retriever {
	t.Helper()
	ctx := context.Background()

	store, err := dataset.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.Replace(ctx, testEntries); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	index, err := vectordb.New(&mockEmbedder{dims: 64})
	if err != nil {
		t.Fatalf("vectordb.New() error: %v", err)
	}
	if err := index.Add(ctx, testEntries...); err != nil {
		t.Fatalf("Add() error: %v", err)
	}

	return New(index, store, DefaultConfig())
}

func TestRetrieveReturnsAtMostK(t *testing.T) {
	r := newTestRetriever(t)

	got, err := r.Retrieve(context.Background(), "an assignment", Filter{}, 2)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(got))
	}
}

func TestRetrieveDeterministic(t *testing.T) {
	r := newTestRetriever(t)
	ctx := context.Background()
	filter := Filter{DocType: "report"}

	first, err := r.Retrieve(ctx, "chemistry lab writeup", filter, 3)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	for range 3 {
		again, err := r.Retrieve(ctx, "chemistry lab writeup", filter, 3)
		if err != nil {
			t.Fatalf("Retrieve() error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("retrieval not deterministic:\nfirst: %+v\nagain: %+v", first, again)
		}
	}
}

func TestRetrieveOrderedByCombinedScore(t *testing.T) {
	r := newTestRetriever(t)

	got, err := r.Retrieve(context.Background(), "some document", Filter{}, len(testEntries))
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].CombinedScore > got[i-1].CombinedScore {
			t.Errorf("candidates out of order at %d: %.4f > %.4f", i, got[i].CombinedScore, got[i-1].CombinedScore)
		}
	}
}

// A candidate matching both filter fields must outrank everything
// else regardless of raw embedding distance, since only E7 matches.
func TestRetrieveMetadataBoost(t *testing.T) {
	r := newTestRetriever(t)

	got, err := r.Retrieve(context.Background(), "make me a document",
		Filter{DocType: "assignment", Keywords: []string{"math"}}, 3)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(got) == 0 || got[0].Entry.ID != "E7" {
		t.Fatalf("expected E7 ranked first, got %+v", got)
	}
	if got[0].MetadataScore != 1.0 {
		t.Errorf("expected full metadata score for E7, got %v", got[0].MetadataScore)
	}
}

// Filters narrow ranking but never hard-exclude: with only one
// matching entry and k=3, unfiltered candidates back-fill.
func TestRetrieveBackFill(t *testing.T) {
	r := newTestRetriever(t)

	got, err := r.Retrieve(context.Background(), "anything",
		Filter{DocType: "assignment"}, 3)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected back-filled result of 3, got %d", len(got))
	}
	if got[0].Entry.ID != "E7" {
		t.Errorf("filter-matching candidate should rank first, got %s", got[0].Entry.ID)
	}
}

func TestRetrieveAbsentFilterFieldNoPenalty(t *testing.T) {
	r := newTestRetriever(t)

	got, err := r.Retrieve(context.Background(), "physics problems",
		Filter{Keywords: []string{"physics"}}, 1)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if got[0].Entry.ID != "E5" {
		t.Errorf("expected E5 first for physics keyword, got %s", got[0].Entry.ID)
	}
	// Keyword component carries the whole metadata weight when
	// doc-type is absent.
	if got[0].MetadataScore != 1.0 {
		t.Errorf("expected metadata score 1.0, got %v", got[0].MetadataScore)
	}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	store, err := dataset.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer store.Close()

	index, err := vectordb.New(&mockEmbedder{dims: 16})
	if err != nil {
		t.Fatalf("vectordb.New() error: %v", err)
	}

	r := New(index, store, DefaultConfig())
	_, err = r.Retrieve(context.Background(), "anything", Filter{}, 3)
	if !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestRetrieveInvalidFilter(t *testing.T) {
	r := newTestRetriever(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter Filter
		k      int
	}{
		{"empty keyword", Filter{Keywords: []string{"math", "  "}}, 3},
		{"control characters", Filter{DocType: "bad\x00type"}, 3},
		{"non-positive k", Filter{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Retrieve(ctx, "query", tt.filter, tt.k)
			if !errors.Is(err, ErrInvalidFilter) {
				t.Errorf("expected ErrInvalidFilter, got %v", err)
			}
		})
	}
}

func TestFilterValidate(t *testing.T) {
	if err := (Filter{DocType: "assignment", Keywords: []string{"math"}}).Validate(); err != nil {
		t.Errorf("valid filter rejected: %v", err)
	}
	if err := (Filter{}).Validate(); err != nil {
		t.Errorf("empty filter rejected: %v", err)
	}
}
