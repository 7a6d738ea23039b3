package config

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .texgen.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to texgen! Let's configure your project.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"ollama", "openai"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	provider := ProviderType(providerStr)

	// 2. Quality tier.
	qualityPrompt := promptui.Select{
		Label: "Select quality tier",
		Items: []string{
			"lite   - fast & cheap",
			"normal - balanced",
			"max    - highest quality",
		},
	}
	qualityIdx, _, err := qualityPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("quality selection: %w", err)
	}
	tiers := []QualityTier{QualityLite, QualityNormal, QualityMax}
	quality := tiers[qualityIdx]

	preset := GetPreset(provider, quality)

	cfg.Provider = provider
	cfg.EmbeddingProvider = provider
	cfg.Quality = quality
	cfg.Model = preset.Model
	cfg.EmbeddingModel = preset.EmbeddingModel

	// 3. Dataset path.
	datasetPrompt := promptui.Prompt{
		Label:   "Dataset CSV path",
		Default: cfg.DatasetPath,
	}
	dataset, err := datasetPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("dataset path: %w", err)
	}
	cfg.DatasetPath = dataset

	// 4. Strict mode default.
	strictPrompt := promptui.Select{
		Label: "Strict mode by default (structural violations fail the request)",
		Items: []string{"no", "yes"},
	}
	strictIdx, _, err := strictPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("strict selection: %w", err)
	}
	cfg.Strict = strictIdx == 1

	if provider == ProviderOpenAI && os.Getenv(APIKeyEnvVar(ProviderOpenAI)) == "" {
		fmt.Println()
		fmt.Println("Note: set OPENAI_API_KEY before running index or generate.")
	}

	if err := cfg.Save(".texgen.yml"); err != nil {
		return nil, err
	}
	fmt.Println()
	fmt.Println("Configuration saved to .texgen.yml")

	return cfg, nil
}
