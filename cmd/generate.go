package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docly-labs/texgen/internal/pipeline"
	"github.com/docly-labs/texgen/internal/prompt"
	"github.com/docly-labs/texgen/internal/retrieval"
)

var generateCmd = &cobra.Command{
	Use:   "generate [request]",
	Short: "Generate a LaTeX document from a free-text request",
	Long: `Retrieves similar dataset examples, prompts the configured model, and
forces its output into a valid document using the chosen template.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("template", "", "template name (default from config)")
	generateCmd.Flags().Bool("strict", false, "fail on structural violations instead of best-effort output")
	generateCmd.Flags().String("spec", "", "path to a document spec JSON file (replaces the request argument)")
	generateCmd.Flags().String("doc-type", "", "retrieval filter: document type")
	generateCmd.Flags().StringSlice("keywords", nil, "retrieval filter: keywords")
	generateCmd.Flags().Int("k", 0, "number of examples to retrieve (overrides config)")
	generateCmd.Flags().StringToString("set", nil, "placeholder values, e.g. --set TITLE='Homework 1'")
	generateCmd.Flags().String("out", "", "output .tex path (default from config)")
	generateCmd.Flags().Bool("compile", false, "also compile the output to PDF with pdflatex")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	specPath, _ := cmd.Flags().GetString("spec")
	var request string
	switch {
	case specPath != "":
		spec, err := prompt.LoadDocSpec(specPath)
		if err != nil {
			return err
		}
		request = spec.Request()
		if verbose {
			fmt.Fprintln(os.Stderr, "Document spec converted to request.")
		}
	case len(args) == 1:
		request = args[0]
	default:
		return fmt.Errorf("no request provided: pass a request argument or --spec")
	}

	templateName, _ := cmd.Flags().GetString("template")
	if templateName == "" {
		templateName = cfg.DefaultTemplate
	}
	strict, _ := cmd.Flags().GetBool("strict")
	if !cmd.Flags().Changed("strict") {
		strict = cfg.Strict
	}
	docType, _ := cmd.Flags().GetString("doc-type")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	k, _ := cmd.Flags().GetInt("k")
	if k == 0 {
		k = cfg.Retrieval.K
	}
	values, _ := cmd.Flags().GetStringToString("set")
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		outPath = cfg.OutputPath
	}
	compile, _ := cmd.Flags().GetBool("compile")

	store, index, err := openDataStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := createRegistry(cfg)
	if err != nil {
		return err
	}

	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return err
	}

	pipe := pipeline.New(createRetriever(cfg, index, store), provider, registry, cfg.Placeholders)

	result, err := pipe.Run(ctx, pipeline.Request{
		Query:        request,
		Filter:       retrieval.Filter{DocType: docType, Keywords: keywords},
		K:            k,
		Template:     templateName,
		Strict:       strict,
		Placeholders: values,
		MaxTokens:    cfg.MaxTokens,
	})
	if err != nil {
		if result != nil && result.Document != nil {
			return fmt.Errorf("generation halted at stage %s: %w", result.Document.Stage, err)
		}
		return err
	}

	if verbose {
		ids := make([]string, len(result.Candidates))
		for i, c := range result.Candidates {
			ids[i] = c.Entry.ID
		}
		fmt.Fprintf(os.Stderr, "Retrieved example IDs: %s\n", strings.Join(ids, ", "))
		if result.Usage != nil {
			fmt.Fprintf(os.Stderr, "Model %s: %d input / %d output tokens\n",
				result.Usage.Model, result.Usage.InputTokens, result.Usage.OutputTokens)
		}
	}

	if err := os.WriteFile(outPath, []byte(result.Document.FinalText), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Printf("Saved LaTeX to %s\n", outPath)

	if compile {
		pdfPath := strings.TrimSuffix(outPath, ".tex") + ".pdf"
		if err := pipeline.CompilePDF(ctx, result.Document.FinalText, pdfPath); err != nil {
			fmt.Fprintf(os.Stderr, "PDF compile error: %v\n", err)
		} else {
			fmt.Printf("Compiled PDF to %s\n", pdfPath)
		}
	}

	return nil
}
