package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docly-labs/texgen/internal/pipeline"
	"github.com/docly-labs/texgen/internal/retrieval"
	"github.com/docly-labs/texgen/internal/template"
)

type generateRequest struct {
	Query        string            `json:"query"`
	Template     string            `json:"template"`
	DocType      string            `json:"doc_type,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	K            int               `json:"k,omitempty"`
	Strict       bool              `json:"strict,omitempty"`
	Placeholders map[string]string `json:"placeholders,omitempty"`
}

type generateResponse struct {
	DocumentID string   `json:"document_id"`
	Stage      string   `json:"stage"`
	LaTeX      string   `json:"latex,omitempty"`
	ExampleIDs []string `json:"example_ids"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.Template == "" {
		req.Template = "article_minimal"
	}

	result, err := s.pipe.Run(r.Context(), pipeline.Request{
		Query:        req.Query,
		Filter:       retrieval.Filter{DocType: req.DocType, Keywords: req.Keywords},
		K:            req.K,
		Template:     req.Template,
		Strict:       req.Strict,
		Placeholders: req.Placeholders,
	})
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	resp := generateResponse{
		DocumentID: result.Document.ID,
		Stage:      result.Document.Stage.String(),
		LaTeX:      result.Document.FinalText,
	}
	for _, c := range result.Candidates {
		resp.ExampleIDs = append(resp.ExampleIDs, c.Entry.ID)
	}
	writeJSON(w, http.StatusOK, resp)
}

type searchRequest struct {
	Query    string   `json:"query"`
	DocType  string   `json:"doc_type,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	K        int      `json:"k,omitempty"`
}

type searchResult struct {
	ID              string  `json:"id"`
	DocType         string  `json:"doc_type"`
	UserPrompt      string  `json:"user_prompt"`
	SimilarityScore float64 `json:"similarity_score"`
	MetadataScore   float64 `json:"metadata_score"`
	CombinedScore   float64 `json:"combined_score"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.K <= 0 {
		req.K = 5
	}

	candidates, err := s.retriever.Retrieve(r.Context(), req.Query,
		retrieval.Filter{DocType: req.DocType, Keywords: req.Keywords}, req.K)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	results := make([]searchResult, len(candidates))
	for i, c := range candidates {
		results[i] = searchResult{
			ID:              c.Entry.ID,
			DocType:         c.Entry.DocType,
			UserPrompt:      c.Entry.UserPrompt,
			SimilarityScore: c.SimilarityScore,
			MetadataScore:   c.MetadataScore,
			CombinedScore:   c.CombinedScore,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": s.registry.Names()})
}

// statusForError maps the typed pipeline errors onto HTTP statuses:
// input and configuration errors are 4xx, strict-mode failures are 422
// (the caller should re-generate or drop strict), everything else 500.
func statusForError(err error) int {
	var unresolved *template.UnresolvedPlaceholderError
	var validation *template.StrictValidationError

	switch {
	case errors.Is(err, retrieval.ErrInvalidFilter),
		errors.Is(err, template.ErrUnknownTemplate):
		return http.StatusBadRequest
	case errors.Is(err, retrieval.ErrEmptyIndex):
		return http.StatusConflict
	case errors.As(err, &unresolved), errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
