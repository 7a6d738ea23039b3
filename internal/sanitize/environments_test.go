package sanitize

import (
	"strings"
	"testing"
)

func TestBalanceEnvironmentsClosesUnmatchedBegin(t *testing.T) {
	got := balanceEnvironments("\\begin{center}\nsome text")
	if !strings.HasSuffix(got, `\end{center}`) {
		t.Errorf("unmatched \\begin not closed: %q", got)
	}
}

func TestBalanceEnvironmentsDeletesStrayEnd(t *testing.T) {
	got := balanceEnvironments("text\n\\end{itemize}\nmore")
	if strings.Contains(got, `\end{itemize}`) {
		t.Errorf("stray \\end not deleted: %q", got)
	}
	if !strings.Contains(got, "text") || !strings.Contains(got, "more") {
		t.Errorf("surrounding text lost: %q", got)
	}
}

func TestBalanceEnvironmentsMatchedPairUntouched(t *testing.T) {
	in := "\\begin{itemize}\n\\item a\n\\end{itemize}"
	if got := balanceEnvironments(in); got != in {
		t.Errorf("well-formed input modified:\nin:  %q\nout: %q", in, got)
	}
}

func TestBalanceEnvironmentsLIFOClose(t *testing.T) {
	got := balanceEnvironments("\\begin{itemize}\n\\item x\n\\begin{center}")

	centerIdx := strings.Index(got, `\end{center}`)
	itemizeIdx := strings.Index(got, `\end{itemize}`)
	if centerIdx < 0 || itemizeIdx < 0 {
		t.Fatalf("missing synthetic closes: %q", got)
	}
	if centerIdx > itemizeIdx {
		t.Errorf("closes not in LIFO order: %q", got)
	}
}

// Interleaved case: the \end that matches an outer environment but not
// the innermost open one is treated as stray and deleted; the open
// environments are closed at end of scope.
func TestBalanceEnvironmentsInterleaved(t *testing.T) {
	got := balanceEnvironments("\\begin{itemize}\\item a\\begin{center}\\end{itemize}text")

	if strings.Contains(got, `\end{itemize}text`) {
		t.Errorf("interleaved \\end{itemize} should be deleted where it appeared: %q", got)
	}
	for _, want := range []string{`\end{center}`, `\end{itemize}`} {
		if strings.Count(got, want) != 1 {
			t.Errorf("expected exactly one %s: %q", want, got)
		}
	}
	if !strings.HasSuffix(got, `\end{itemize}`) {
		t.Errorf("outermost environment should close last: %q", got)
	}
}

func TestBalanceEnvironmentsInsertsItemInEmptyList(t *testing.T) {
	got := balanceEnvironments("\\begin{itemize}\njust prose\n\\end{itemize}")
	if !strings.Contains(got, `\item`) {
		t.Errorf("list without \\item not repaired: %q", got)
	}
}

func TestBalanceEnvironmentsInsertsItemInUnclosedList(t *testing.T) {
	got := balanceEnvironments("\\begin{enumerate}\nprose")
	if !strings.Contains(got, `\item`) {
		t.Errorf("unclosed list without \\item not repaired: %q", got)
	}
	if !strings.HasSuffix(got, `\end{enumerate}`) {
		t.Errorf("unclosed list not closed: %q", got)
	}
}

func TestBalanceEnvironmentsNonListNoItem(t *testing.T) {
	got := balanceEnvironments("\\begin{center}\nprose\n\\end{center}")
	if strings.Contains(got, `\item`) {
		t.Errorf("\\item inserted into non-list environment: %q", got)
	}
}

func TestBalanceEnvironmentsIdempotent(t *testing.T) {
	inputs := []string{
		"\\begin{itemize}",
		"\\begin{itemize}\\begin{itemize}",
		"\\end{itemize}\\begin{center}",
		"\\begin{itemize}\\item a\\begin{center}\\end{itemize}",
		"\\begin{enumerate}nothing",
	}
	for _, in := range inputs {
		once := balanceEnvironments(in)
		if twice := balanceEnvironments(once); twice != once {
			t.Errorf("not idempotent for %q:\nonce:  %q\ntwice: %q", in, once, twice)
		}
	}
}
