package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List registered document templates",
	RunE:  runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := createRegistry(cfg)
	if err != nil {
		return err
	}

	for _, name := range registry.Names() {
		tmpl, _ := registry.Get(name)
		fmt.Printf("  %-20s placeholders: %v\n", name, tmpl.Placeholders)
	}
	return nil
}
