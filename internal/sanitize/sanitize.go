// Package sanitize normalizes raw language-model output into LaTeX
// text the template enforcer can work with. The pipeline is a fixed
// sequence of pure text-to-text stages, applied exactly once per call;
// it never fails, and sanitizing its own output is a no-op.
package sanitize

import (
	"regexp"
	"strings"
)

// Options configures a Sanitizer. Zero values select the defaults.
type Options struct {
	// Strict additionally collapses duplicated preamble sequences.
	Strict bool
	// ForbiddenMacros overrides DefaultForbiddenMacros.
	ForbiddenMacros []string
	// Corrections overrides DefaultCorrections.
	Corrections []Correction
}

// Sanitizer rewrites untrusted model output into normalized LaTeX.
type Sanitizer struct {
	strict      bool
	forbidden   []string
	corrections []Correction
}

// New creates a Sanitizer from options.
func New(opts Options) *Sanitizer {
	forbidden := opts.ForbiddenMacros
	if forbidden == nil {
		forbidden = DefaultForbiddenMacros()
	}
	corrections := opts.Corrections
	if corrections == nil {
		corrections = DefaultCorrections()
	}
	return &Sanitizer{
		strict:      opts.Strict,
		forbidden:   forbidden,
		corrections: corrections,
	}
}

// ForbiddenMacros returns the macro set this sanitizer removes, so the
// strict validation gate can assert against the same set.
func (s *Sanitizer) ForbiddenMacros() []string {
	return s.forbidden
}

// Sanitize runs the full stage sequence. It is total and idempotent;
// the worst case result is an empty string.
func (s *Sanitizer) Sanitize(raw string) string {
	t := stripArtifacts(raw)
	t = applyCorrections(t, s.corrections)
	t = normalizeWhitespace(t)
	for _, macro := range s.forbidden {
		t = RemoveMacro(t, macro)
	}
	t = balanceEnvironments(t)
	t = escapeUnderscores(t)
	t = balanceBraces(t)
	if s.strict {
		t = collapsePreambles(t)
	}
	t = cutLeadingProse(t)
	return strings.TrimSpace(t)
}

var (
	fenceLineRe  = regexp.MustCompile("(?m)^[ \t]*```+[a-zA-Z]*[ \t]*$\n?")
	fenceRe      = regexp.MustCompile("```+")
	thinkingRe   = regexp.MustCompile(`(?s)'\s*thinking=.*$`)
	logprobsRe   = regexp.MustCompile(`(?s)\n?logprobs=.*$`)
	contextRe    = regexp.MustCompile(`(?s)context=\[.*\]\s*$`)
	latexStartRe = regexp.MustCompile(`(?m)\\[A-Za-z]+|^%`)
)

const endDocument = `\end{document}`

// stripArtifacts removes non-LaTeX debris around the model's answer:
// markdown code fences, local-client metadata dumps, and anything
// after the final \end{document}.
func stripArtifacts(text string) string {
	text = fenceLineRe.ReplaceAllString(text, "")
	text = fenceRe.ReplaceAllString(text, "")
	text = thinkingRe.ReplaceAllString(text, "")
	text = logprobsRe.ReplaceAllString(text, "")
	text = contextRe.ReplaceAllString(text, "")

	if idx := strings.LastIndex(text, endDocument); idx >= 0 {
		text = text[:idx+len(endDocument)]
	}

	return strings.TrimSpace(text)
}

// cutLeadingProse drops leading explanatory prose before the first
// LaTeX token. It must run after every other stage: corrections can
// mint the first token out of mangled text and environment balancing
// can delete a stray one, so an earlier anchor would not survive
// re-sanitizing.
func cutLeadingProse(text string) string {
	if loc := latexStartRe.FindStringIndex(text); loc != nil {
		text = text[loc[0]:]
	}
	return text
}

// escapeUnderscores escapes bare underscores outside $...$ and
// \(...\) math regions. Underscores already carrying a backslash are
// untouched.
func escapeUnderscores(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inDollar, inParen := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text):
			switch text[i+1] {
			case '(':
				inParen = true
			case ')':
				inParen = false
			}
			b.WriteByte(c)
			b.WriteByte(text[i+1])
			i++
		case c == '$':
			inDollar = !inDollar
			b.WriteByte(c)
		case c == '_' && !inDollar && !inParen:
			b.WriteString(`\_`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// balanceBraces appends closing braces when opens outnumber closes.
// Surplus closes are left alone; deleting them would risk eating a
// legitimate group end.
func balanceBraces(text string) string {
	diff := strings.Count(text, "{") - strings.Count(text, "}")
	if diff > 0 {
		text += strings.Repeat("}", diff)
	}
	return text
}

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// normalizeWhitespace canonicalizes line endings, strips tab
// characters (a frequent escape-mangling artifact), and collapses
// blank-line runs to a single blank line.
func normalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\t", "")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

const documentClass = `\documentclass`

// collapsePreambles keeps the first \documentclass invocation and
// deletes any later duplicates, so at most one preamble-defining
// sequence survives strict sanitization.
func collapsePreambles(text string) string {
	first := findMacro(text, documentClass)
	if first < 0 {
		return text
	}

	head := text[:first+len(documentClass)]
	tail := text[first+len(documentClass):]
	return head + RemoveMacro(tail, documentClass)
}
