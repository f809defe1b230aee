// Package config loads the application configuration from YAML, filling in
// defaults and resolving credentials from the environment. The loaded
// config is read-only; per-request overrides travel in their own structs.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/smallnest/wikirag/log"
)

// ProviderConfig configures one model provider (embedding or generation).
// APIKeyEnv names the environment variable holding the credential; the key
// itself never lives in the config file.
type ProviderConfig struct {
	Name        string `yaml:"name"`
	Endpoint    string `yaml:"endpoint"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`

	// APIKey is resolved from APIKeyEnv at load time.
	APIKey string `yaml:"-"`
}

// SearchStoreConfig configures the Elasticsearch-compatible search store.
type SearchStoreConfig struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	PasswordEnv string `yaml:"password_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`

	Password string `yaml:"-"`
}

// SplitterConfig configures document chunking.
type SplitterConfig struct {
	MaxChunkSize int `yaml:"max_chunk_size"`
}

// RetrievalConfig configures search behavior.
type RetrievalConfig struct {
	Strategy        string  `yaml:"strategy"`
	MaxResults      int     `yaml:"max_results"`
	MergedHits      int     `yaml:"merged_hits"`
	MinScore        float64 `yaml:"min_score"`
	MaxContextChars int     `yaml:"max_context_chars"`
}

// GenerationConfig configures the generation dispatcher.
type GenerationConfig struct {
	Temperature     float64 `yaml:"temperature"`
	MaxTokens       int     `yaml:"max_tokens"`
	MaxContextChars int     `yaml:"max_context_chars"`
	CustomPrompt    string  `yaml:"custom_prompt"`
	PromptDocument  string  `yaml:"prompt_document"`
	AllowGeneral    bool    `yaml:"allow_general_knowledge"`
	MaxMessageChars int     `yaml:"max_message_chars"`
}

// CacheConfig configures the optional Redis embedding cache. Disabled when
// Addr is empty.
type CacheConfig struct {
	Addr        string `yaml:"addr"`
	PasswordEnv string `yaml:"password_env"`
	DB          int    `yaml:"db"`
	TTLSecs     int    `yaml:"ttl_secs"`

	Password string `yaml:"-"`
}

// IngestConfig configures the ingestion pipeline.
type IngestConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Config is the root application configuration.
type Config struct {
	Embedding   ProviderConfig    `yaml:"embedding"`
	Generation  ProviderConfig    `yaml:"generation"`
	SearchStore SearchStoreConfig `yaml:"search_store"`
	Splitter    SplitterConfig    `yaml:"splitter"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Generate    GenerationConfig  `yaml:"generate"`
	Cache       CacheConfig       `yaml:"cache"`
	Ingest      IngestConfig      `yaml:"ingest"`
}

// Load reads a config file. A missing file yields the defaults. Credentials
// named by *_env keys are resolved from the environment after an optional
// .env file is loaded.
func Load(path string) (*Config, error) {
	// .env is optional; absence is not an error.
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded: %v", err)
	}

	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)
	resolveCredentials(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Embedding:   ProviderConfig{Name: "ollama", Endpoint: "http://localhost:11434/api"},
		Generation:  ProviderConfig{Name: "ollama", Endpoint: "http://localhost:11434/api"},
		SearchStore: SearchStoreConfig{URL: "http://localhost:9200"},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Generation.TimeoutSecs == 0 {
		cfg.Generation.TimeoutSecs = 60
	}
	if cfg.SearchStore.TimeoutSecs == 0 {
		cfg.SearchStore.TimeoutSecs = 30
	}
	if cfg.Splitter.MaxChunkSize == 0 {
		cfg.Splitter.MaxChunkSize = 5000
	}
	if cfg.Retrieval.Strategy == "" {
		cfg.Retrieval.Strategy = "lexical"
	}
	if cfg.Retrieval.MaxResults == 0 {
		cfg.Retrieval.MaxResults = 5
	}
	if cfg.Retrieval.MergedHits == 0 {
		cfg.Retrieval.MergedHits = 3
	}
	if cfg.Retrieval.MinScore == 0 {
		cfg.Retrieval.MinScore = 1.0
	}
	if cfg.Generate.Temperature == 0 {
		cfg.Generate.Temperature = 0.7
	}
	if cfg.Generate.MaxTokens == 0 {
		cfg.Generate.MaxTokens = 1024
	}
	if cfg.Generate.MaxContextChars == 0 {
		cfg.Generate.MaxContextChars = 8000
	}
	if cfg.Generate.MaxMessageChars == 0 {
		cfg.Generate.MaxMessageChars = 1000
	}
	if cfg.Cache.TTLSecs == 0 {
		cfg.Cache.TTLSecs = 86400
	}
	if cfg.Ingest.Concurrency == 0 {
		cfg.Ingest.Concurrency = 4
	}
}

func resolveCredentials(cfg *Config) {
	cfg.Embedding.APIKey = fromEnv(cfg.Embedding.APIKeyEnv)
	cfg.Generation.APIKey = fromEnv(cfg.Generation.APIKeyEnv)
	cfg.SearchStore.Password = fromEnv(cfg.SearchStore.PasswordEnv)
	cfg.Cache.Password = fromEnv(cfg.Cache.PasswordEnv)
}

func fromEnv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
