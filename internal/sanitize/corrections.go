package sanitize

import "regexp"

// Correction is one entry of the data-driven rewrite table: a pattern
// for a known-bad token the model tends to emit and its canonical
// replacement. Corrections are applied in declaration order, exactly
// once per Sanitize call, and every replacement must not re-match its
// own pattern.
type Correction struct {
	Pattern *regexp.Regexp
	Replace string
}

// knownCommands are command names the duplicate-escape collapse is
// allowed to touch. A bare `\\` is a legitimate line break, so the
// collapse only fires when a recognized command name follows.
const knownCommands = `documentclass|usepackage|begin|end|section|subsection|subsubsection|paragraph|item|itemize|enumerate|textbf|textit|texttt|emph|noindent|title|author|date|maketitle|label|ref|cite`

// DefaultCorrections returns the standard correction table. Models
// frequently lose a leading backslash to escape-sequence mangling:
// `\noindent` arrives as a newline plus `oindent`, `\textbf` as a tab
// plus `extbf`.
func DefaultCorrections() []Correction {
	return []Correction{
		// Collapse duplicated escaping before known commands.
		{regexp.MustCompile(`\\{2,}(` + knownCommands + `)\b`), `\$1`},
		// Leading backslash eaten by a newline escape.
		{regexp.MustCompile(`(?m)^oindent\b`), `\noindent`},
		{regexp.MustCompile(`(?m)^ewline\b`), `\newline`},
		// Leading backslash eaten by a tab escape.
		{regexp.MustCompile("\t" + `extbf\{`), `\textbf{`},
		{regexp.MustCompile("\t" + `extit\{`), `\textit{`},
		{regexp.MustCompile("\t" + `exttt\{`), `\texttt{`},
		{regexp.MustCompile("\t" + `itle\{`), `\title{`},
		// Common hallucinated spellings.
		{regexp.MustCompile(`\\beign\{`), `\begin{`},
		{regexp.MustCompile(`\\edn\{`), `\end{`},
	}
}

func applyCorrections(text string, corrections []Correction) string {
	for _, c := range corrections {
		text = c.Pattern.ReplaceAllString(text, c.Replace)
	}
	return text
}
