package sanitize

import (
	"regexp"
	"sort"
	"strings"
)

var (
	envTokenRe = regexp.MustCompile(`\\(begin|end)\{([A-Za-z]+\*?)\}`)
	itemRe     = regexp.MustCompile(`\\item\b`)
)

// edit is a pending mutation of the scanned text: deletion of
// [start,end) when insert is empty, or insertion of insert at start.
type edit struct {
	start, end int
	insert     string
}

// balanceEnvironments repairs malformed environment structure with a
// single stack scan:
//   - an \end whose environment does not match the innermost open
//     \begin is treated as stray and deleted
//   - \begin environments still open at end of text are closed in LIFO
//     order by synthetic \end lines appended at the end
//   - a matched itemize/enumerate pair containing no \item gets one
//     synthetic \item inserted after the \begin
func balanceEnvironments(text string) string {
	type openEnv struct {
		name     string
		bodyFrom int // position just past the \begin token
	}

	var stack []openEnv
	var edits []edit

	for _, m := range envTokenRe.FindAllStringSubmatchIndex(text, -1) {
		kind := text[m[2]:m[3]]
		name := text[m[4]:m[5]]

		if kind == "begin" {
			stack = append(stack, openEnv{name: name, bodyFrom: m[1]})
			continue
		}

		if len(stack) == 0 || stack[len(stack)-1].name != name {
			// Stray close: no matching open at the innermost level.
			edits = append(edits, edit{start: m[0], end: m[1]})
			continue
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if isListEnv(name) && !itemRe.MatchString(text[top.bodyFrom:m[0]]) {
			edits = append(edits, edit{start: top.bodyFrom, end: top.bodyFrom, insert: "\n\\item"})
		}
	}

	var tail strings.Builder
	for i := len(stack) - 1; i >= 0; i-- {
		env := stack[i]
		if isListEnv(env.name) && !itemRe.MatchString(text[env.bodyFrom:]) {
			edits = append(edits, edit{start: env.bodyFrom, end: env.bodyFrom, insert: "\n\\item"})
		}
		tail.WriteString("\n\\end{" + env.name + "}")
	}

	return applyEdits(text, edits) + tail.String()
}

func isListEnv(name string) bool {
	return name == "itemize" || name == "enumerate"
}

func applyEdits(text string, edits []edit) string {
	if len(edits) == 0 {
		return text
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	pos := 0
	for _, e := range edits {
		b.WriteString(text[pos:e.start])
		b.WriteString(e.insert)
		pos = e.end
	}
	b.WriteString(text[pos:])
	return b.String()
}
