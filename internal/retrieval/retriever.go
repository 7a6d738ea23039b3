package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/docly-labs/texgen/internal/dataset"
	"github.com/docly-labs/texgen/internal/vectordb"
)

// ErrEmptyIndex is returned when retrieval is attempted against an
// index with no entries.
var ErrEmptyIndex = errors.New("similarity index is empty")

// ErrInvalidFilter is the sentinel wrapped by filter validation
// failures; match it with errors.Is.
var ErrInvalidFilter = errors.New("invalid retrieval filter")

// Filter narrows retrieval ranking by entry metadata. Fields are
// fuzzy-matched; an absent field contributes nothing. Filters bias the
// ranking but never hard-exclude candidates.
type Filter struct {
	DocType  string
	Keywords []string
}

// Validate rejects malformed filter input instead of silently
// coercing it.
func (f Filter) Validate() error {
	if err := checkToken("doc_type", f.DocType); err != nil {
		return err
	}
	for _, kw := range f.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("%w: empty keyword", ErrInvalidFilter)
		}
		if err := checkToken("keyword", kw); err != nil {
			return err
		}
	}
	return nil
}

func checkToken(field, v string) error {
	for _, r := range v {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %s contains control characters", ErrInvalidFilter, field)
		}
	}
	return nil
}

// isEmpty reports whether no filter field is supplied.
func (f Filter) isEmpty() bool {
	return f.DocType == "" && len(f.Keywords) == 0
}

// RankedCandidate pairs a dataset entry with its retrieval scores.
type RankedCandidate struct {
	Entry           dataset.Entry
	SimilarityScore float64
	MetadataScore   float64
	CombinedScore   float64
}

// Config holds the fixed ranking constants. Similarity dominates:
// WSim >= WMeta and the two sum to 1.
type Config struct {
	WSim           float64
	WMeta          float64
	FuzzyThreshold float64
}

// DefaultConfig returns the standard ranking weights.
func DefaultConfig() Config {
	return Config{WSim: 0.7, WMeta: 0.3, FuzzyThreshold: 0.8}
}

// Retriever ranks dataset entries against a query using a weighted
// blend of embedding similarity and fuzzy metadata matches.
type Retriever struct {
	index *vectordb.Index
	store *dataset.Store
	cfg   Config
}

// New creates a Retriever over the given index and entry store.
func New(index *vectordb.Index, store *dataset.Store, cfg Config) *Retriever {
	if cfg.WSim == 0 && cfg.WMeta == 0 {
		cfg = DefaultConfig()
	}
	return &Retriever{index: index, store: store, cfg: cfg}
}

// Retrieve returns up to k candidates ordered by descending combined
// score, ties broken by ascending entry ID. Candidates matching the
// filter rank ahead of non-matching ones; non-matching candidates
// back-fill only when fewer than k match.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter Filter, k int) ([]RankedCandidate, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidFilter, k)
	}
	if r.index.Count() == 0 {
		return nil, ErrEmptyIndex
	}

	// Over-fetch so metadata re-ranking has room to promote entries the
	// raw vector ordering placed below the cut.
	m := max(4*k, 16)

	hits, err := r.index.Search(ctx, query, m)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	type scored struct {
		cand    RankedCandidate
		matched bool
	}

	candidates := make([]scored, 0, len(hits))
	for _, hit := range hits {
		entry, err := r.store.GetByID(ctx, hit.EntryID)
		if err != nil {
			return nil, fmt.Errorf("resolving entry %s: %w", hit.EntryID, err)
		}
		if entry == nil {
			// Index and store drifted apart; skip rather than fail.
			continue
		}

		sim := clamp01(float64(hit.Similarity))
		meta, matched := r.metadataScore(filter, *entry)

		candidates = append(candidates, scored{
			cand: RankedCandidate{
				Entry:           *entry,
				SimilarityScore: sim,
				MetadataScore:   meta,
				CombinedScore:   r.cfg.WSim*sim + r.cfg.WMeta*meta,
			},
			matched: matched,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.matched != b.matched {
			return a.matched
		}
		if a.cand.CombinedScore != b.cand.CombinedScore {
			return a.cand.CombinedScore > b.cand.CombinedScore
		}
		return a.cand.Entry.ID < b.cand.Entry.ID
	})

	n := min(k, len(candidates))
	result := make([]RankedCandidate, n)
	for i := range n {
		result[i] = candidates[i].cand
	}
	return result, nil
}

// metadataScore computes the normalized metadata component in [0,1]
// and whether the entry satisfies every supplied filter field. The
// doc-type and keyword components carry equal weight; when the filter
// supplies only one field, that component carries the whole weight so
// an absent field never penalizes candidates.
func (r *Retriever) metadataScore(f Filter, e dataset.Entry) (score float64, matched bool) {
	if f.isEmpty() {
		return 0, true
	}

	var sum, weight float64
	matched = true

	if f.DocType != "" {
		weight++
		if fuzzyMatch(f.DocType, e.DocType, r.cfg.FuzzyThreshold) {
			sum++
		} else {
			matched = false
		}
	}

	if len(f.Keywords) > 0 {
		weight++
		hits := 0
		for _, want := range f.Keywords {
			for _, got := range e.Keywords {
				if fuzzyMatch(want, got, r.cfg.FuzzyThreshold) {
					hits++
					break
				}
			}
		}
		sum += float64(hits) / float64(len(f.Keywords))
		if hits == 0 {
			matched = false
		}
	}

	return sum / weight, matched
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
