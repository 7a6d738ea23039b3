package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docly-labs/texgen/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a texgen configuration interactively",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(cfgFile); err == nil && !force {
		return fmt.Errorf("%s already exists; use --force to overwrite", cfgFile)
	}

	if _, err := config.RunWizard(); err != nil {
		return err
	}
	return nil
}
