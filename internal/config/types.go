package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// QualityTier controls the model selection trade-off between
// speed/cost and quality.
type QualityTier string

const (
	QualityLite   QualityTier = "lite"
	QualityNormal QualityTier = "normal"
	QualityMax    QualityTier = "max"
)

// RetrievalConfig holds the ranking constants.
type RetrievalConfig struct {
	K              int     `yaml:"k" koanf:"k"`
	WSim           float64 `yaml:"w_sim" koanf:"w_sim"`
	WMeta          float64 `yaml:"w_meta" koanf:"w_meta"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold" koanf:"fuzzy_threshold"`
}

// Config is the top-level texgen configuration, corresponding to
// .texgen.yml.
type Config struct {
	Provider          ProviderType      `yaml:"provider" koanf:"provider"`
	Model             string            `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType      `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string            `yaml:"embedding_model" koanf:"embedding_model"`
	Quality           QualityTier       `yaml:"quality" koanf:"quality"`
	DatasetPath       string            `yaml:"dataset_path" koanf:"dataset_path"`
	DataDir           string            `yaml:"data_dir" koanf:"data_dir"`
	TemplatesDir      string            `yaml:"templates_dir" koanf:"templates_dir"`
	DefaultTemplate   string            `yaml:"default_template" koanf:"default_template"`
	Strict            bool              `yaml:"strict" koanf:"strict"`
	OutputPath        string            `yaml:"output_path" koanf:"output_path"`
	MaxTokens         int               `yaml:"max_tokens" koanf:"max_tokens"`
	Retrieval         RetrievalConfig   `yaml:"retrieval" koanf:"retrieval"`
	Placeholders      map[string]string `yaml:"placeholders" koanf:"placeholders"`
}
