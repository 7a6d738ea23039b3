package sanitize

import "strings"

// DefaultForbiddenMacros are macros stripped from model output:
// redefinition macros that would fight the template preamble, and
// raw-write/shell-escape/file-inclusion commands that are unsafe in
// untrusted documents.
func DefaultForbiddenMacros() []string {
	return []string{
		`\newcommand`,
		`\renewcommand`,
		`\providecommand`,
		`\def`,
		`\write18`,
		`\immediate`,
		`\input`,
		`\include`,
		`\openout`,
		`\catcode`,
	}
}

// ContainsMacro reports whether text invokes the macro. The next
// character after the name must not be a letter, so `\input` does not
// flag `\inputencoding`.
func ContainsMacro(text, macro string) bool {
	for i := 0; ; {
		idx := strings.Index(text[i:], macro)
		if idx < 0 {
			return false
		}
		pos := i + idx
		end := pos + len(macro)
		if end >= len(text) || !isLetter(text[end]) {
			return true
		}
		i = end
	}
}

// RemoveMacro deletes every invocation of the macro, including an
// optional star form, an optional control-sequence argument (as in
// `\def\x{...}`), and any immediately following brace- or
// bracket-delimited argument groups. Unbalanced braces are consumed to
// end of text rather than left dangling.
func RemoveMacro(text, macro string) string {
	var b strings.Builder
	for {
		idx := findMacro(text, macro)
		if idx < 0 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:idx])
		text = text[idx+len(macro):]
		text = skipArguments(text)
	}
	return b.String()
}

// findMacro locates the next invocation of macro, skipping longer
// command names that merely share the prefix.
func findMacro(text, macro string) int {
	for i := 0; ; {
		idx := strings.Index(text[i:], macro)
		if idx < 0 {
			return -1
		}
		pos := i + idx
		end := pos + len(macro)
		if end >= len(text) || !isLetter(text[end]) {
			return pos
		}
		i = end
	}
}

// skipArguments consumes the argument part of a macro invocation.
func skipArguments(text string) string {
	// Star form.
	if len(text) > 0 && text[0] == '*' {
		text = text[1:]
	}

	// A single control-sequence argument, e.g. the \x in \def\x{1}.
	if len(text) > 1 && text[0] == '\\' && isLetter(text[1]) {
		i := 1
		for i < len(text) && isLetter(text[i]) {
			i++
		}
		text = text[i:]
	}

	// Brace and bracket groups.
	for len(text) > 0 {
		switch text[0] {
		case '{':
			text = text[skipBalanced(text, '{', '}'):]
		case '[':
			text = text[skipBalanced(text, '[', ']'):]
		default:
			return text
		}
	}
	return text
}

// skipBalanced returns the index just past the group that opens at
// text[0], or len(text) when the group never closes.
func skipBalanced(text string, open, close byte) int {
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(text)
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
