package prompt

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DocSpec is a structured document specification that can stand in
// for a free-text request. It converts to a prompt string and enters
// the pipeline through the same path as a plain request.
type DocSpec struct {
	DocumentType string    `json:"document_type"`
	Title        string    `json:"title,omitempty"`
	Author       string    `json:"author,omitempty"`
	Sections     []Section `json:"sections,omitempty"`
	Notes        string    `json:"notes,omitempty"`
}

// Section is one section of a DocSpec.
type Section struct {
	Title        string `json:"title"`
	Instructions string `json:"instructions,omitempty"`
}

// LoadDocSpec reads and parses a DocSpec JSON file.
func LoadDocSpec(path string) (*DocSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading doc spec %s: %w", path, err)
	}
	var spec DocSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing doc spec %s: %w", path, err)
	}
	return &spec, nil
}

// Request renders the spec as a request string describing the desired
// document structure.
func (s *DocSpec) Request() string {
	docType := s.DocumentType
	if docType == "" {
		docType = "document"
	}

	var lines []string
	lines = append(lines, "Document type: "+docType)
	if s.Title != "" {
		lines = append(lines, "Title: "+s.Title)
	}
	if s.Author != "" {
		lines = append(lines, "Author: "+s.Author)
	}
	lines = append(lines, "Sections:")
	for i, sec := range s.Sections {
		lines = append(lines, fmt.Sprintf("  - Section %d: %s", i+1, sec.Title))
		if sec.Instructions != "" {
			lines = append(lines, "    Instructions: "+sec.Instructions)
		}
	}
	if s.Notes != "" {
		lines = append(lines, "Notes:", s.Notes)
	}
	lines = append(lines, "", "Produce only LaTeX matching this structure.")

	return strings.Join(lines, "\n")
}
