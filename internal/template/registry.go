// Package template owns the document shells generated bodies are
// wrapped in, and the enforcement state machine that turns sanitized
// model output into a final single-preamble document.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Template is an immutable named document shell. Placeholders are the
// bare token names that may appear in the preamble or body as <NAME>.
type Template struct {
	Name         string
	Preamble     string
	Placeholders []string
}

const (
	// BodyOpen and BodyClose delimit the document body in every
	// assembled output.
	BodyOpen  = `\begin{document}`
	BodyClose = `\end{document}`
)

// placeholderRe matches placeholder tokens like <TITLE> or
// <STUDENT_NAME>.
var placeholderRe = regexp.MustCompile(`<([A-Z][A-Z0-9_]*)>`)

// builtinTemplates are always registered.
var builtinTemplates = []Template{
	{
		Name: "article_minimal",
		Preamble: `\documentclass{article}
\usepackage[utf8]{inputenc}
\title{<TITLE>}
`,
		Placeholders: []string{"TITLE"},
	},
	{
		Name: "assignment_course",
		Preamble: `\documentclass[12pt]{article}
\usepackage[utf8]{inputenc}
\usepackage[a4paper,margin=1in]{geometry}
\usepackage{amsmath,amssymb}
\title{<TITLE>}
\author{<STUDENT_NAME>}
\date{<DATE>}
`,
		Placeholders: []string{"TITLE", "STUDENT_NAME", "DATE"},
	},
	{
		Name: "report_basic",
		Preamble: `\documentclass[11pt]{report}
\usepackage[utf8]{inputenc}
\usepackage{graphicx}
\usepackage{hyperref}
\title{<TITLE>}
\author{<AUTHOR>}
`,
		Placeholders: []string{"TITLE", "AUTHOR"},
	},
}

// Registry is the static name → Template mapping. It is populated
// once at startup and read-only afterwards, so concurrent lookups are
// safe.
type Registry struct {
	templates map[string]Template
}

// NewRegistry creates a registry holding the builtin templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]Template, len(builtinTemplates))}
	for _, t := range builtinTemplates {
		r.templates[t.Name] = t
	}
	return r
}

// LoadDir registers every *.tex file under dir as a template named
// after its base filename. File content up to \begin{document} (or the
// whole file when absent) becomes the preamble; placeholders are
// discovered from <NAME> tokens. User templates shadow builtins of the
// same name. Call before serving requests: the registry is not safe
// for concurrent mutation.
func (r *Registry) LoadDir(dir string) error {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.tex")
	if err != nil {
		return fmt.Errorf("scanning template dir %s: %w", dir, err)
	}

	for _, rel := range matches {
		data, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			return fmt.Errorf("reading template %s: %w", rel, err)
		}

		preamble := string(data)
		if idx := strings.Index(preamble, BodyOpen); idx >= 0 {
			preamble = preamble[:idx]
		}

		name := strings.TrimSuffix(filepath.Base(rel), ".tex")
		r.templates[name] = Template{
			Name:         name,
			Preamble:     preamble,
			Placeholders: discoverPlaceholders(preamble),
		}
	}
	return nil
}

func discoverPlaceholders(text string) []string {
	seen := make(map[string]bool)
	var tokens []string
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			tokens = append(tokens, m[1])
		}
	}
	return tokens
}

// Get returns the named template or ErrUnknownTemplate.
func (r *Registry) Get(name string) (Template, error) {
	t, ok := r.templates[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return t, nil
}

// Names returns all registered template names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
