package embeddings

import "context"

// Embedder turns text into vectors for the retrieval index. Corpus
// entries are embedded once at index-build time; queries are embedded
// per generation request, so both sides must come from the same model.
type Embedder interface {
	// Embed maps each input text to its embedding vector, preserving order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the vector width this embedder produces.
	Dimensions() int

	// Name identifies the backing model, recorded in index snapshots.
	Name() string
}
