package config

// QualityPreset describes the models to use for a given quality tier.
type QualityPreset struct {
	Model          string
	EmbeddingModel string
}

// qualityPresets maps each provider+quality combination to its model
// choices.
var qualityPresets = map[ProviderType]map[QualityTier]QualityPreset{
	ProviderOpenAI: {
		QualityLite:   {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
		QualityNormal: {Model: "gpt-4o", EmbeddingModel: "text-embedding-3-small"},
		QualityMax:    {Model: "gpt-4", EmbeddingModel: "text-embedding-3-large"},
	},
	ProviderOllama: {
		QualityLite:   {Model: "qwen2.5:1.5b-instruct", EmbeddingModel: "nomic-embed-text"},
		QualityNormal: {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
		QualityMax:    {Model: "llama3:70b", EmbeddingModel: "nomic-embed-text"},
	},
}

// GetPreset returns the quality preset for the given provider and
// tier, falling back to the normal OpenAI preset for unknown
// combinations.
func GetPreset(provider ProviderType, tier QualityTier) QualityPreset {
	if tiers, ok := qualityPresets[provider]; ok {
		if preset, ok := tiers[tier]; ok {
			return preset
		}
	}
	return qualityPresets[ProviderOpenAI][QualityNormal]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOllama,
		Model:             "qwen2.5:1.5b-instruct",
		EmbeddingProvider: ProviderOllama,
		EmbeddingModel:    "nomic-embed-text",
		Quality:           QualityNormal,
		DatasetPath:       "data/dataset.csv",
		DataDir:           ".texgen",
		DefaultTemplate:   "article_minimal",
		OutputPath:        "last_output.tex",
		MaxTokens:         2000,
		Retrieval: RetrievalConfig{
			K:              3,
			WSim:           0.7,
			WMeta:          0.3,
			FuzzyThreshold: 0.8,
		},
		Placeholders: map[string]string{
			"TITLE": "My Document",
			"DATE":  `\today`,
		},
	}
}
