package dataset

import "strings"

// Entry is a single dataset example: a user request paired with the
// LaTeX document that satisfied it, plus the metadata used for
// retrieval filtering. Entries are created at index-build time and
// never mutated afterwards.
type Entry struct {
	ID              string
	UserPrompt      string
	Keywords        []string
	DocType         string
	Structure       string
	ContentElements string
	LaTeXOutput     string
}

// EmbeddingText concatenates the fields that describe the entry into
// the text that gets embedded. The LaTeX output itself is excluded:
// queries are phrased like requests, not like LaTeX source.
func (e Entry) EmbeddingText() string {
	return strings.Join([]string{
		"DOC_ID: " + e.ID,
		"DOC_TYPE: " + e.DocType,
		"PROMPT: " + e.UserPrompt,
		"KEYWORDS: " + strings.Join(e.Keywords, ", "),
		"STRUCTURE: " + e.Structure,
		"ELEMENTS: " + e.ContentElements,
	}, "\n---\n")
}
