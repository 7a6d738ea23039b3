package pipeline

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/docly-labs/texgen/internal/dataset"
	"github.com/docly-labs/texgen/internal/llm"
	"github.com/docly-labs/texgen/internal/retrieval"
	"github.com/docly-labs/texgen/internal/template"
	"github.com/docly-labs/texgen/internal/vectordb"
)

type mockEmbedder struct {
	dims int
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dims)
		for j, ch := range text {
			vec[(int(ch)+j)%m.dims] += 1.0
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for j := range vec {
				vec[j] = float32(float64(vec[j]) / norm)
			}
		}
		results[i] = vec
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// fakeProvider returns a canned completion and records the last request.
type fakeProvider struct {
	content string
	err     error
	lastReq llm.CompletionRequest
}

func (f *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{
		Content:      f.content,
		InputTokens:  10,
		OutputTokens: 20,
		Model:        "fake",
	}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func newTestPipeline(t *testing.T, provider llm.Provider, defaults map[string]string) *Pipeline {
	t.Helper()
	ctx := context.Background()

	entries := []dataset.Entry{
		{ID: "E1", UserPrompt: "calculus homework", DocType: "assignment",
			Keywords: []string{"math"}, LaTeXOutput: `\section*{Problem 1}`},
		{ID: "E2", UserPrompt: "business letter", DocType: "letter",
			Keywords: []string{"formal"}, LaTeXOutput: `\opening{Dear Sir,}`},
	}

	store, err := dataset.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Replace(ctx, entries); err != nil {
		t.Fatal(err)
	}

	index, err := vectordb.New(&mockEmbedder{dims: 64})
	if err != nil {
		t.Fatal(err)
	}
	if err := index.Add(ctx, entries...); err != nil {
		t.Fatal(err)
	}

	retriever := retrieval.New(index, store, retrieval.DefaultConfig())
	return New(retriever, provider, template.NewRegistry(), defaults)
}

func TestRunProducesFinalDocument(t *testing.T) {
	provider := &fakeProvider{content: "Sure! Here's the LaTeX:\n\\section*{Problem 1}\nSolve $x^2 = 4$."}
	p := newTestPipeline(t, provider, nil)

	result, err := p.Run(context.Background(), Request{
		Query:        "calculus homework",
		K:            2,
		Template:     "article_minimal",
		Placeholders: map[string]string{"TITLE": "Homework 1"},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	doc := result.Document
	if doc.Stage != StageFinal {
		t.Errorf("Stage = %s, want final", doc.Stage)
	}
	if !strings.Contains(doc.FinalText, "Homework 1") {
		t.Errorf("fill value missing from final text:\n%s", doc.FinalText)
	}
	if strings.Contains(doc.FinalText, "<TITLE>") {
		t.Errorf("placeholder token survived:\n%s", doc.FinalText)
	}
	if strings.Contains(doc.FinalText, "Sure!") {
		t.Errorf("chat preface survived sanitizing:\n%s", doc.FinalText)
	}
	if strings.Count(doc.FinalText, template.BodyOpen) != 1 ||
		strings.Count(doc.FinalText, template.BodyClose) != 1 {
		t.Errorf("final text must contain exactly one document pair:\n%s", doc.FinalText)
	}
	if !strings.Contains(doc.FinalText, `\section*{Problem 1}`) {
		t.Errorf("body content lost:\n%s", doc.FinalText)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(result.Candidates))
	}
	if result.Usage == nil || result.Usage.OutputTokens != 20 {
		t.Errorf("usage not propagated: %+v", result.Usage)
	}
}

func TestRunStrictCollapsesModelPreamble(t *testing.T) {
	// The model ignored the body-only instruction and emitted a full
	// document of its own; the final output must carry exactly the
	// template preamble and one document pair.
	provider := &fakeProvider{content: "\\documentclass{report}\n" +
		"\\begin{document}\nGenerated body text.\n\\end{document}\n"}
	p := newTestPipeline(t, provider, map[string]string{"TITLE": "Default Title"})

	result, err := p.Run(context.Background(), Request{
		Query:    "calculus homework",
		Template: "article_minimal",
		Strict:   true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	final := result.Document.FinalText
	if strings.Contains(final, `\documentclass{report}`) {
		t.Errorf("model preamble survived:\n%s", final)
	}
	if strings.Count(final, `\documentclass`) != 1 {
		t.Errorf("expected exactly one documentclass:\n%s", final)
	}
	if strings.Count(final, template.BodyOpen) != 1 ||
		strings.Count(final, template.BodyClose) != 1 {
		t.Errorf("expected exactly one document pair:\n%s", final)
	}
	if !strings.Contains(final, "Generated body text.") {
		t.Errorf("body lost during enforcement:\n%s", final)
	}
	if result.Document.Stage != StageFinal {
		t.Errorf("Stage = %s, want final", result.Document.Stage)
	}
}

func TestRunStrictUnresolvedPlaceholder(t *testing.T) {
	provider := &fakeProvider{content: "Body text."}
	p := newTestPipeline(t, provider, nil)

	result, err := p.Run(context.Background(), Request{
		Query:    "calculus homework",
		Template: "article_minimal",
		Strict:   true,
	})

	var perr *template.UnresolvedPlaceholderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected UnresolvedPlaceholderError, got %v", err)
	}
	if len(perr.Tokens) != 1 || perr.Tokens[0] != "<TITLE>" {
		t.Errorf("Tokens = %v, want [<TITLE>]", perr.Tokens)
	}
	if result.Document.Stage != StageWrapped {
		t.Errorf("document should halt at wrapped, got %s", result.Document.Stage)
	}
	if result.Document.FinalText != "" {
		t.Errorf("halted document must not carry final text: %q", result.Document.FinalText)
	}
}

func TestRunNonStrictLeavesUnresolvedVisible(t *testing.T) {
	provider := &fakeProvider{content: "Body text."}
	p := newTestPipeline(t, provider, nil)

	result, err := p.Run(context.Background(), Request{
		Query:    "calculus homework",
		Template: "article_minimal",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(result.Document.FinalText, "<TITLE>") {
		t.Errorf("non-strict run should leave unresolved tokens visible:\n%s", result.Document.FinalText)
	}
	if result.Document.Stage != StageFinal {
		t.Errorf("Stage = %s, want final", result.Document.Stage)
	}
}

func TestRunStrictEmptyBody(t *testing.T) {
	provider := &fakeProvider{content: "```latex\n```"}
	p := newTestPipeline(t, provider, map[string]string{"TITLE": "T"})

	result, err := p.Run(context.Background(), Request{
		Query:    "calculus homework",
		Template: "article_minimal",
		Strict:   true,
	})

	var verr *template.StrictValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected StrictValidationError, got %v", err)
	}
	if verr.Rule != template.RuleNonEmptyBody {
		t.Errorf("Rule = %q, want %q", verr.Rule, template.RuleNonEmptyBody)
	}
	if result.Document.Stage != StagePlaceholdersFilled {
		t.Errorf("document should halt at placeholders_filled, got %s", result.Document.Stage)
	}
}

func TestRunUnknownTemplate(t *testing.T) {
	provider := &fakeProvider{content: "never called"}
	p := newTestPipeline(t, provider, nil)

	_, err := p.Run(context.Background(), Request{
		Query:    "anything",
		Template: "no_such_template",
	})
	if !errors.Is(err, template.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
	if provider.lastReq.Messages != nil {
		t.Error("model must not be called when the template is unknown")
	}
}

func TestRunProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream down")}
	p := newTestPipeline(t, provider, nil)

	result, err := p.Run(context.Background(), Request{
		Query:    "calculus homework",
		Template: "article_minimal",
	})
	if err == nil || !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if result.Document.Stage != StageRaw {
		t.Errorf("document should halt at raw, got %s", result.Document.Stage)
	}
}

func TestRunPromptCarriesExamples(t *testing.T) {
	provider := &fakeProvider{content: "Body."}
	p := newTestPipeline(t, provider, map[string]string{"TITLE": "T"})

	result, err := p.Run(context.Background(), Request{
		Query:    "calculus homework",
		Template: "article_minimal",
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if !strings.Contains(result.Prompt, "calculus homework") {
		t.Errorf("prompt missing user request:\n%s", result.Prompt)
	}
	if !strings.Contains(result.Prompt, `\section*{Problem 1}`) {
		t.Errorf("prompt missing retrieved example output:\n%s", result.Prompt)
	}
	if provider.lastReq.Messages[0].Content != result.Prompt {
		t.Error("prompt sent to provider differs from reported prompt")
	}
}
