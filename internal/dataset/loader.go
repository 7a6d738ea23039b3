package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// csvColumns are the expected header names, matched case-insensitively.
var csvColumns = []string{
	"id", "user_prompt", "keywords", "doc_type",
	"document_structure", "content_elements", "latex_output",
}

// LoadCSV reads a dataset spreadsheet export. The first row must be a
// header containing at least the id, user_prompt and latex_output
// columns; remaining known columns are optional and default to empty.
func LoadCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "user_prompt", "latex_output"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("dataset %s missing column %q", path, required)
		}
	}

	var entries []Entry
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset row: %w", err)
		}

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		entry := Entry{
			ID:              field("id"),
			UserPrompt:      field("user_prompt"),
			Keywords:        splitKeywords(field("keywords")),
			DocType:         strings.ToLower(field("doc_type")),
			Structure:       field("document_structure"),
			ContentElements: field("content_elements"),
			LaTeXOutput:     field("latex_output"),
		}
		if entry.ID == "" {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// splitKeywords parses a comma-separated keyword cell into lowercased,
// trimmed tokens, dropping empties.
func splitKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		kw := strings.ToLower(strings.TrimSpace(p))
		if kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
