// Package pipeline orchestrates one generation request end to end:
// retrieve examples, build the prompt, call the model, sanitize its
// output, and enforce the template. Processing is single-request and
// synchronous; the only blocking operations are the external embedding
// lookup and the model call.
package pipeline

import (
	"context"
	"fmt"

	"github.com/docly-labs/texgen/internal/llm"
	"github.com/docly-labs/texgen/internal/prompt"
	"github.com/docly-labs/texgen/internal/retrieval"
	"github.com/docly-labs/texgen/internal/sanitize"
	"github.com/docly-labs/texgen/internal/template"
)

// Request describes one generation run.
type Request struct {
	Query        string
	Filter       retrieval.Filter
	K            int
	Template     string
	Strict       bool
	Placeholders map[string]string
	MaxTokens    int
}

// Result carries the finished document plus the intermediate outputs
// useful for inspection.
type Result struct {
	Document   *Document
	Candidates []retrieval.RankedCandidate
	Prompt     string
	Usage      *llm.CompletionResponse
}

// Pipeline wires the retriever, the model provider, and the template
// machinery. All dependencies are initialized once at startup and
// treated as read-only, so a single Pipeline may serve concurrent
// requests as long as each request gets its own Document (which Run
// guarantees).
type Pipeline struct {
	retriever *retrieval.Retriever
	provider  llm.Provider
	registry  *template.Registry
	defaults  map[string]string
	forbidden []string
}

// New creates a Pipeline. defaults supplies fallback placeholder
// values from configuration.
func New(retriever *retrieval.Retriever, provider llm.Provider, registry *template.Registry, defaults map[string]string) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		provider:  provider,
		registry:  registry,
		defaults:  defaults,
		forbidden: sanitize.DefaultForbiddenMacros(),
	}
}

// Run executes the full pipeline for one request. Strict-mode errors
// are terminal: the document is returned halted at the stage that
// failed, never silently emitted partially processed.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.K <= 0 {
		req.K = 3
	}

	doc := NewDocument(req.Query, req.Strict)
	result := &Result{Document: doc}

	// Retrieval and template-lookup failures are input errors surfaced
	// immediately; the template is resolved before spending a model call.
	tmpl, err := p.registry.Get(req.Template)
	if err != nil {
		return result, err
	}

	candidates, err := p.retriever.Retrieve(ctx, req.Query, req.Filter, req.K)
	if err != nil {
		return result, err
	}
	result.Candidates = candidates

	result.Prompt = prompt.Build(req.Query, candidates, true)

	resp, err := p.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: result.Prompt},
		},
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return result, fmt.Errorf("model call failed: %w", err)
	}
	result.Usage = resp
	doc.RawText = resp.Content

	// Sanitizing always happens; it absorbs malformed output instead of
	// failing the request.
	sanitizer := sanitize.New(sanitize.Options{
		Strict:          req.Strict,
		ForbiddenMacros: p.forbidden,
	})
	doc.SanitizedText = sanitizer.Sanitize(doc.RawText)
	doc.Stage = StageSanitized

	doc.Body = template.DePreamble(doc.SanitizedText)
	doc.Stage = StageDePreambled

	wrapped := tmpl.Wrap(doc.Body)
	doc.Stage = StageWrapped

	filled, unresolved := template.Fill(wrapped, tmpl.Placeholders, req.Placeholders, p.defaults)
	if req.Strict && len(unresolved) > 0 {
		return result, &template.UnresolvedPlaceholderError{Tokens: unresolved}
	}
	doc.Stage = StagePlaceholdersFilled

	if req.Strict {
		if err := template.Validate(filled, p.forbidden); err != nil {
			return result, err
		}
		doc.Stage = StageValidated
	}

	doc.FinalText = filled
	doc.Stage = StageFinal
	return result, nil
}
