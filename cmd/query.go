package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docly-labs/texgen/internal/retrieval"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Inspect retrieval ranking for a query",
	Long:  `Runs the retrieval stage only and prints the ranked candidates with their scores.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().String("doc-type", "", "filter by document type (fuzzy)")
	queryCmd.Flags().StringSlice("keywords", nil, "filter by keywords (fuzzy)")
	queryCmd.Flags().IntP("k", "k", 5, "maximum number of results")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	docType, _ := cmd.Flags().GetString("doc-type")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	k, _ := cmd.Flags().GetInt("k")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, index, err := openDataStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	retriever := createRetriever(cfg, index, store)

	candidates, err := retriever.Retrieve(ctx, args[0],
		retrieval.Filter{DocType: docType, Keywords: keywords}, k)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printCandidatesJSON(candidates)
	}
	printCandidatesTable(candidates)
	return nil
}

type candidateJSON struct {
	Rank       int      `json:"rank"`
	ID         string   `json:"id"`
	DocType    string   `json:"doc_type"`
	Keywords   []string `json:"keywords,omitempty"`
	Similarity float64  `json:"similarity_score"`
	Metadata   float64  `json:"metadata_score"`
	Combined   float64  `json:"combined_score"`
	UserPrompt string   `json:"user_prompt"`
}

func printCandidatesJSON(candidates []retrieval.RankedCandidate) error {
	var out []candidateJSON
	for i, c := range candidates {
		out = append(out, candidateJSON{
			Rank:       i + 1,
			ID:         c.Entry.ID,
			DocType:    c.Entry.DocType,
			Keywords:   c.Entry.Keywords,
			Similarity: c.SimilarityScore,
			Metadata:   c.MetadataScore,
			Combined:   c.CombinedScore,
			UserPrompt: truncate(c.Entry.UserPrompt, 200),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printCandidatesTable(candidates []retrieval.RankedCandidate) {
	fmt.Printf("Found %d candidate(s):\n\n", len(candidates))
	for i, c := range candidates {
		fmt.Printf("  %d. [%0.3f] %s (%s)\n", i+1, c.CombinedScore, c.Entry.ID, c.Entry.DocType)
		fmt.Printf("     sim=%.3f meta=%.3f keywords=%s\n",
			c.SimilarityScore, c.MetadataScore, strings.Join(c.Entry.Keywords, ","))
		fmt.Printf("     %s\n\n", truncate(c.Entry.UserPrompt, 120))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
