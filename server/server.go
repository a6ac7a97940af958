// Package server exposes the document question-answering service over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aqua777/docbot/schema"
	"github.com/aqua777/docbot/session"
	"github.com/aqua777/docbot/synthesizer"
)

// Ingestor processes one uploaded document into a session's namespace.
type Ingestor interface {
	Ingest(ctx context.Context, sessionID, filename, text string) (int, error)
}

// Retriever fetches the chunks most similar to a question.
type Retriever interface {
	Retrieve(ctx context.Context, sessionID, question string) (schema.RetrievalResult, error)
}

// Synthesizer generates the answer candidates for a question.
type Synthesizer interface {
	Synthesize(ctx context.Context, question string, input synthesizer.Input) []schema.Candidate
}

// Server wires the HTTP surface to the ingestion and answering pipelines.
type Server struct {
	router      *chi.Mux
	ingestor    Ingestor
	retriever   Retriever
	synthesizer Synthesizer
	sessions    *session.Registry
	maxUpload   int64
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes caps the size of a multipart upload request.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates the HTTP server over the given pipelines and session
// registry.
func New(ingestor Ingestor, retriever Retriever, synth Synthesizer, sessions *session.Registry, opts ...Option) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		ingestor:    ingestor,
		retriever:   retriever,
		synthesizer: synth,
		sessions:    sessions,
		maxUpload:   32 << 20,
		logger:      slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	r := s.router
	r.Use(requestID)
	r.Use(s.accessLogger)
	r.Use(middleware.Recoverer)
	r.Use(permissiveCORS)

	r.Get("/", s.handleRoot)
	r.Post("/upload", s.handleUpload)
	r.Post("/ask", s.handleAsk)
	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/files", s.handleSessionFiles)
		r.Get("/transcript", s.handleSessionTranscript)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
