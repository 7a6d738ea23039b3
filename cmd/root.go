package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "texgen",
	Short: "Retrieval-augmented LaTeX document generation",
	Long: `Texgen turns free-text requests into compilable LaTeX documents.
It retrieves similar prior examples from an embedded dataset,
conditions a language model on them, and forces the model's output
into a structurally valid single-preamble document.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".texgen.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
