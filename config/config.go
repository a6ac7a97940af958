// Package config loads the application configuration from a YAML file
// and secrets from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_secs"`
	MaxUploadBytes  int64  `yaml:"max_upload_bytes"`
}

// ChunkingConfig configures the text splitter.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// EmbeddingConfig selects and configures the embedding provider.
// Provider is "gemini" or "openai".
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// IndexConfig selects and configures the vector index.
// Provider is "pinecone" or "chromem".
type IndexConfig struct {
	Provider    string `yaml:"provider"`
	IndexName   string `yaml:"index_name"`
	PersistPath string `yaml:"persist_path"`
	TopK        int    `yaml:"top_k"`
}

// LLMConfig configures the answering model. BaseURL defaults to the
// Groq endpoint.
type LLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Config is the root application configuration. Secrets never appear
// in the YAML file; they are read from the environment by LoadSecrets.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	LLM       LLMConfig       `yaml:"llm"`

	// Populated from the environment, not the file.
	GoogleAPIKey   string `yaml:"-"`
	OpenAIAPIKey   string `yaml:"-"`
	GroqAPIKey     string `yaml:"-"`
	PineconeAPIKey string `yaml:"-"`
}

// Load reads the config file at path, applies defaults, and pulls
// secrets from the environment. A missing file is not an error; the
// defaults are used.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyDefaults(cfg)
	cfg.LoadSecrets()
	return cfg, nil
}

// LoadSecrets reads API keys from the environment.
func (c *Config) LoadSecrets() {
	c.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.GroqAPIKey = os.Getenv("GROQ_API_KEY")
	c.PineconeAPIKey = os.Getenv("PINECONE_API_KEY")
}

// Validate checks that the configuration is usable: a known provider
// for each pluggable component, and the credentials it needs.
func (c *Config) Validate() error {
	var problems []string

	switch c.Embedding.Provider {
	case "gemini":
		if c.GoogleAPIKey == "" {
			problems = append(problems, "GOOGLE_API_KEY is required for the gemini embedding provider")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is required for the openai embedding provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown embedding provider %q", c.Embedding.Provider))
	}

	switch c.Index.Provider {
	case "pinecone":
		if c.PineconeAPIKey == "" {
			problems = append(problems, "PINECONE_API_KEY is required for the pinecone index provider")
		}
		if c.Index.IndexName == "" {
			problems = append(problems, "index.index_name is required for the pinecone index provider")
		}
	case "chromem":
	default:
		problems = append(problems, fmt.Sprintf("unknown index provider %q", c.Index.Provider))
	}

	if c.GroqAPIKey == "" {
		problems = append(problems, "GROQ_API_KEY is required")
	}
	if c.Embedding.Dimensions <= 0 {
		problems = append(problems, "embedding.dimensions must be positive")
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		problems = append(problems, "chunking.chunk_overlap must be smaller than chunking.chunk_size")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}
	if cfg.Chunking.ChunkSize == 0 {
		cfg.Chunking.ChunkSize = 1000
	}
	if cfg.Chunking.ChunkOverlap == 0 {
		cfg.Chunking.ChunkOverlap = 200
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "gemini"
	}
	if cfg.Embedding.Model == "" && cfg.Embedding.Provider == "gemini" {
		cfg.Embedding.Model = "text-embedding-004"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Index.Provider == "" {
		cfg.Index.Provider = "pinecone"
	}
	if cfg.Index.IndexName == "" {
		cfg.Index.IndexName = "docbot"
	}
	if cfg.Index.TopK == 0 {
		cfg.Index.TopK = 10
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama-3.1-8b-instant"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
}
