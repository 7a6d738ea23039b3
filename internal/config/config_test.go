package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing provider",
			mutate:  func(c *Config) { c.Provider = "" },
			wantErr: "provider is required",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "anthropic" },
			wantErr: "invalid provider",
		},
		{
			name:    "missing model",
			mutate:  func(c *Config) { c.Model = "" },
			wantErr: "model is required",
		},
		{
			name:    "unknown quality",
			mutate:  func(c *Config) { c.Quality = "ultra" },
			wantErr: "invalid quality",
		},
		{
			name:    "non-positive k",
			mutate:  func(c *Config) { c.Retrieval.K = 0 },
			wantErr: "retrieval.k",
		},
		{
			name: "metadata dominates",
			mutate: func(c *Config) {
				c.Retrieval.WSim = 0.3
				c.Retrieval.WMeta = 0.7
			},
			wantErr: "w_sim must be >=",
		},
		{
			name: "weights do not sum to 1",
			mutate: func(c *Config) {
				c.Retrieval.WSim = 0.7
				c.Retrieval.WMeta = 0.2
			},
			wantErr: "must sum to 1",
		},
		{
			name:    "fuzzy threshold out of range",
			mutate:  func(c *Config) { c.Retrieval.FuzzyThreshold = 1.5 },
			wantErr: "fuzzy_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".texgen.yml")

	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.Model = "gpt-4o"
	cfg.Strict = true
	cfg.Retrieval.K = 5
	cfg.Placeholders = map[string]string{"TITLE": "Saved Title"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Provider != ProviderOpenAI || loaded.Model != "gpt-4o" {
		t.Errorf("provider/model lost: %+v", loaded)
	}
	if !loaded.Strict {
		t.Error("strict flag lost")
	}
	if loaded.Retrieval.K != 5 {
		t.Errorf("retrieval.k = %d, want 5", loaded.Retrieval.K)
	}
	if loaded.Placeholders["TITLE"] != "Saved Title" {
		t.Errorf("placeholders lost: %v", loaded.Placeholders)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load() on missing file error: %v", err)
	}
	if cfg.Provider != ProviderOllama {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
	if cfg.Retrieval.WSim != 0.7 || cfg.Retrieval.WMeta != 0.3 {
		t.Errorf("expected default weights, got %+v", cfg.Retrieval)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("TEXGEN_MODEL", "llama3")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model != "llama3" {
		t.Errorf("env override ignored, model = %q", cfg.Model)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset(ProviderOllama, QualityLite)
	if p.Model != "qwen2.5:1.5b-instruct" {
		t.Errorf("unexpected preset: %+v", p)
	}

	fallback := GetPreset("unknown", "ultra")
	if fallback.Model != "gpt-4o" {
		t.Errorf("expected openai/normal fallback, got %+v", fallback)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("APIKeyEnvVar(openai) = %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("APIKeyEnvVar(ollama) = %q, want empty", got)
	}
}
