package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docly-labs/texgen/internal/dataset"
	"github.com/docly-labs/texgen/internal/progress"
	"github.com/docly-labs/texgen/internal/vectordb"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the similarity index from the dataset",
	Long:  `Loads the dataset CSV, stores entries in SQLite, embeds them, and persists the vector index.`,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().String("dataset", "", "dataset CSV path (overrides config)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	datasetPath, _ := cmd.Flags().GetString("dataset")
	if datasetPath == "" {
		datasetPath = cfg.DatasetPath
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Loading dataset from %s...\n", datasetPath)
	}
	entries, err := dataset.LoadCSV(datasetPath)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("dataset %s contains no entries", datasetPath)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	store, err := dataset.Open(filepath.Join(cfg.DataDir, "entries.db"))
	if err != nil {
		return fmt.Errorf("opening entry store: %w", err)
	}
	defer store.Close()

	if err := store.Replace(ctx, entries); err != nil {
		return fmt.Errorf("storing entries: %w", err)
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return err
	}

	index, err := vectordb.New(embedder)
	if err != nil {
		return fmt.Errorf("creating vector index: %w", err)
	}

	reporter := progress.NewReporter()
	reporter.Start(len(entries))
	for i, entry := range entries {
		if err := index.Add(ctx, entry); err != nil {
			return fmt.Errorf("indexing entry %s: %w", entry.ID, err)
		}
		reporter.Update(i+1, "Embedding "+entry.ID)
	}
	reporter.Finish()

	if err := index.Persist(ctx, cfg.DataDir); err != nil {
		return fmt.Errorf("persisting index: %w", err)
	}

	fmt.Printf("Indexed %d entries with %s into %s\n", len(entries), embedder.Name(), cfg.DataDir)
	return nil
}
