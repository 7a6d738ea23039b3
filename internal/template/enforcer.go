package template

import (
	"fmt"
	"strings"

	"github.com/docly-labs/texgen/internal/sanitize"
)

// Enforcement is the DePreamble → Wrap → Fill → Validate sequence
// below. The operations are pure; the generation pipeline drives them
// as a one-directional state machine over its per-request document.

// DePreamble extracts the body interior from text that may carry a
// model-generated preamble. When a \begin{document} is present,
// everything up to and including it is stripped, and the first
// following \end{document} plus anything after it is dropped. Text
// without a preamble is already pure body.
func DePreamble(text string) string {
	if idx := strings.Index(text, BodyOpen); idx >= 0 {
		text = text[idx+len(BodyOpen):]
	}
	if idx := strings.Index(text, BodyClose); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// Wrap emits the template shell around the body.
func (t Template) Wrap(body string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(t.Preamble, "\n"))
	b.WriteString("\n")
	b.WriteString(BodyOpen)
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(BodyClose)
	b.WriteString("\n")
	return b.String()
}

// Fill substitutes every declared placeholder token with its value,
// preferring request values over defaults. Tokens that resolve to
// neither are left visible and reported in unresolved.
func Fill(text string, placeholders []string, values, defaults map[string]string) (filled string, unresolved []string) {
	for _, name := range placeholders {
		token := "<" + name + ">"
		if !strings.Contains(text, token) {
			continue
		}
		if v, ok := values[name]; ok {
			text = strings.ReplaceAll(text, token, v)
		} else if v, ok := defaults[name]; ok {
			text = strings.ReplaceAll(text, token, v)
		} else {
			unresolved = append(unresolved, token)
		}
	}
	return text, unresolved
}

// Validate asserts the structural invariants of a final document:
// exactly one \begin{document}/\end{document} pair, no forbidden
// macros, and a non-blank body. It reports the first violated rule.
func Validate(text string, forbidden []string) error {
	opens := strings.Count(text, BodyOpen)
	closes := strings.Count(text, BodyClose)
	if opens != 1 || closes != 1 {
		return &StrictValidationError{
			Rule:   RuleSinglePreamble,
			Detail: fmt.Sprintf("expected exactly one document environment, found %d open / %d close", opens, closes),
		}
	}

	for _, macro := range forbidden {
		if sanitize.ContainsMacro(text, macro) {
			return &StrictValidationError{
				Rule:   RuleNoForbidden,
				Detail: "forbidden macro present: " + macro,
			}
		}
	}

	start := strings.Index(text, BodyOpen) + len(BodyOpen)
	end := strings.Index(text, BodyClose)
	if end < start {
		return &StrictValidationError{
			Rule:   RuleSinglePreamble,
			Detail: "document close precedes document open",
		}
	}
	if strings.TrimSpace(text[start:end]) == "" {
		return &StrictValidationError{
			Rule:   RuleNonEmptyBody,
			Detail: "document body is empty",
		}
	}

	return nil
}
