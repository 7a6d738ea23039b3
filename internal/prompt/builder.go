// Package prompt turns a user request and retrieved examples into the
// completion prompt sent to the model.
package prompt

import (
	"strings"

	"github.com/docly-labs/texgen/internal/retrieval"
)

// exampleSeparator visually delimits example blocks in the prompt.
const exampleSeparator = "------------------------------"

// Build assembles the generation prompt. When templateProvided is
// true the model is instructed to emit only the document body; the
// template shell wraps it afterwards, so any preamble it emits anyway
// is stripped by the enforcer.
func Build(userRequest string, examples []retrieval.RankedCandidate, templateProvided bool) string {
	parts := []string{
		"You are a STRICT LaTeX generator.",
		"Output ONLY valid LaTeX source.",
		"NEVER use markdown, NEVER use ``` fences.",
		"Do NOT explain anything, do not add commentary.",
		"",
	}

	if templateProvided {
		parts = append(parts,
			"IMPORTANT: A template will wrap your output. YOU MUST ONLY GENERATE",
			"the LaTeX BODY — the content that goes *inside* the document environment.",
			"DO NOT output any of the following anywhere in your response:",
			`- \documentclass{...}`,
			`- \usepackage{...}`,
			`- \begin{document}`,
			`- \end{document}`,
			`- Any preamble-level macros (eg. \newcommand, \title, \author).`,
			`Output should start with content elements like \section{...} or plain paragraphs.`,
			"",
		)
	} else {
		parts = append(parts,
			"If no template is provided, you may generate a full LaTeX document,",
			`including \documentclass and preamble as needed.`,
			"",
		)
	}

	if len(examples) > 0 {
		parts = append(parts, "EXAMPLES (for format guidance):")
		for _, ex := range examples {
			parts = append(parts,
				"EXAMPLE_PROMPT:",
				ex.Entry.UserPrompt,
				"EXAMPLE_LATEX:",
				ex.Entry.LaTeXOutput,
				exampleSeparator,
			)
		}
	}

	parts = append(parts,
		"USER_REQUEST:",
		userRequest,
		"Respond ONLY with LaTeX source (respect the body-only rule above if a template is supplied).",
	)

	return strings.Join(parts, "\n")
}
