// Command docbot runs the document question-answering HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aqua777/docbot/config"
	"github.com/aqua777/docbot/embedding"
	"github.com/aqua777/docbot/ingestion"
	"github.com/aqua777/docbot/llm"
	"github.com/aqua777/docbot/retriever"
	"github.com/aqua777/docbot/server"
	"github.com/aqua777/docbot/session"
	"github.com/aqua777/docbot/store"
	"github.com/aqua777/docbot/store/chromem"
	"github.com/aqua777/docbot/store/pinecone"
	"github.com/aqua777/docbot/synthesizer"
	"github.com/aqua777/docbot/textsplitter"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*configPath, logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, logger *slog.Logger) error {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded environment from .env")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	if info, ok := embedder.(embedding.EmbeddingModelWithInfo); ok {
		if dims := info.Info().Dimensions; dims != cfg.Embedding.Dimensions {
			return fmt.Errorf("embedding model %s produces %d dimensions, config expects %d",
				info.Info().ModelName, dims, cfg.Embedding.Dimensions)
		}
	}

	index, err := buildIndex(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := index.EnsureReady(ctx, cfg.Embedding.Dimensions); err != nil {
		return fmt.Errorf("vector index not ready: %w", err)
	}

	splitter := textsplitter.NewSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, nil, nil)
	model := llm.NewOpenAILLM(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.GroqAPIKey)

	pipeline := ingestion.New(splitter, embedder, index, ingestion.WithLogger(logger))
	retr := retriever.New(embedder, index,
		retriever.WithTopK(cfg.Index.TopK),
		retriever.WithLogger(logger))
	synth := synthesizer.New(model,
		synthesizer.WithCandidateTimeout(time.Duration(cfg.LLM.TimeoutSecs)*time.Second),
		synthesizer.WithLogger(logger))

	srv := server.New(pipeline, retr, synth, session.NewRegistry(),
		server.WithMaxUploadBytes(cfg.Server.MaxUploadBytes),
		server.WithLogger(logger))

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr,
			"embedding_provider", cfg.Embedding.Provider,
			"index_provider", cfg.Index.Provider,
			"model", cfg.LLM.Model)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func buildEmbedder(cfg *config.Config) (embedding.EmbeddingModel, error) {
	switch cfg.Embedding.Provider {
	case "gemini":
		return embedding.NewGeminiEmbedding(
			embedding.WithGeminiAPIKey(cfg.GoogleAPIKey),
			embedding.WithGeminiModel(cfg.Embedding.Model),
		), nil
	case "openai":
		return embedding.NewOpenAIEmbedding(cfg.OpenAIAPIKey, cfg.Embedding.Model, cfg.Embedding.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

func buildIndex(cfg *config.Config) (store.VectorIndex, error) {
	switch cfg.Index.Provider {
	case "pinecone":
		return pinecone.New(cfg.Index.IndexName,
			pinecone.WithAPIKey(cfg.PineconeAPIKey)), nil
	case "chromem":
		return chromem.New(cfg.Index.PersistPath)
	default:
		return nil, fmt.Errorf("unknown index provider %q", cfg.Index.Provider)
	}
}
