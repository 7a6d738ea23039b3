package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// CompilePDF compiles final LaTeX text to a PDF at outPath by shelling
// out to pdflatex. It is best-effort plumbing around the core: a
// missing pdflatex or a compile failure is reported, never fatal to
// the generation itself.
func CompilePDF(ctx context.Context, tex string, outPath string) error {
	if _, err := exec.LookPath("pdflatex"); err != nil {
		return fmt.Errorf("pdflatex not installed: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "texgen-compile-")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	texFile := filepath.Join(tmpDir, "doc.tex")
	if err := os.WriteFile(texFile, []byte(tex), 0o644); err != nil {
		return fmt.Errorf("writing tex file: %w", err)
	}

	cmd := exec.CommandContext(ctx, "pdflatex", "-interaction=nonstopmode", "doc.tex")
	cmd.Dir = tmpDir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pdflatex failed: %w\n%s", err, out)
	}

	pdf, err := os.ReadFile(filepath.Join(tmpDir, "doc.pdf"))
	if err != nil {
		return fmt.Errorf("compilation finished but PDF missing: %w", err)
	}

	if err := os.WriteFile(outPath, pdf, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}
