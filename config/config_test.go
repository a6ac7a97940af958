package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing file falls back to defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)

		assert.Equal(t, ":8000", cfg.Server.Addr)
		assert.Equal(t, 1000, cfg.Chunking.ChunkSize)
		assert.Equal(t, 200, cfg.Chunking.ChunkOverlap)
		assert.Equal(t, "gemini", cfg.Embedding.Provider)
		assert.Equal(t, "text-embedding-004", cfg.Embedding.Model)
		assert.Equal(t, 768, cfg.Embedding.Dimensions)
		assert.Equal(t, "pinecone", cfg.Index.Provider)
		assert.Equal(t, 10, cfg.Index.TopK)
		assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
server:
  addr: ":9090"
chunking:
  chunk_size: 500
  chunk_overlap: 50
index:
  provider: chromem
  top_k: 5
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, 500, cfg.Chunking.ChunkSize)
		assert.Equal(t, 50, cfg.Chunking.ChunkOverlap)
		assert.Equal(t, "chromem", cfg.Index.Provider)
		assert.Equal(t, 5, cfg.Index.TopK)
		// untouched sections keep defaults
		assert.Equal(t, "gemini", cfg.Embedding.Provider)
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := writeConfig(t, "server: [not a mapping")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("secrets come from the environment", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "g-key")
		t.Setenv("GROQ_API_KEY", "q-key")
		t.Setenv("PINECONE_API_KEY", "p-key")

		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "g-key", cfg.GoogleAPIKey)
		assert.Equal(t, "q-key", cfg.GroqAPIKey)
		assert.Equal(t, "p-key", cfg.PineconeAPIKey)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		applyDefaults(cfg)
		cfg.GoogleAPIKey = "g"
		cfg.GroqAPIKey = "q"
		cfg.PineconeAPIKey = "p"
		return cfg
	}

	t.Run("complete config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing embedding credential", func(t *testing.T) {
		cfg := valid()
		cfg.GoogleAPIKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	})

	t.Run("missing groq credential", func(t *testing.T) {
		cfg := valid()
		cfg.GroqAPIKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GROQ_API_KEY")
	})

	t.Run("chromem needs no pinecone key", func(t *testing.T) {
		cfg := valid()
		cfg.Index.Provider = "chromem"
		cfg.PineconeAPIKey = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unknown providers are rejected", func(t *testing.T) {
		cfg := valid()
		cfg.Embedding.Provider = "weaviate"
		assert.Error(t, cfg.Validate())

		cfg = valid()
		cfg.Index.Provider = "milvus"
		assert.Error(t, cfg.Validate())
	})

	t.Run("overlap must be smaller than chunk size", func(t *testing.T) {
		cfg := valid()
		cfg.Chunking.ChunkOverlap = cfg.Chunking.ChunkSize
		assert.Error(t, cfg.Validate())
	})

	t.Run("multiple problems are reported together", func(t *testing.T) {
		cfg := valid()
		cfg.GroqAPIKey = ""
		cfg.GoogleAPIKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GROQ_API_KEY")
		assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	})
}
