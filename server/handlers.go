package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aqua777/docbot/reader"
	"github.com/aqua777/docbot/schema"
	"github.com/aqua777/docbot/synthesizer"
)

// FileStatus describes what happened to one file of an upload request.
type FileStatus struct {
	Filename string `json:"filename"`
	Status   string `json:"status"` // "indexed", "skipped" or "failed"
	Chunks   int    `json:"chunks,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

const (
	statusIndexed = "indexed"
	statusSkipped = "skipped"
	statusFailed  = "failed"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"error": fmt.Sprintf(format, args...)})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document bot backend is running!"})
}

// handleUpload ingests multipart files into the session's namespace.
// Each file is processed independently: unsupported or empty files are
// skipped, a file that fails mid-batch does not roll back the ones
// already indexed.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request: %s", err)
		return
	}

	sessionID := r.FormValue("session_id")
	files := r.MultipartForm.File["files"]
	if sessionID == "" || len(files) == 0 {
		writeError(w, http.StatusBadRequest, "A session ID and at least one file are required.")
		return
	}

	statuses := make([]FileStatus, 0, len(files))
	var processed []string
	for _, header := range files {
		status := s.ingestFile(r, sessionID, header)
		statuses = append(statuses, status)
		if status.Status == statusIndexed {
			processed = append(processed, status.Filename)
		}
	}

	s.sessions.RecordUpload(sessionID, processed...)
	if processed == nil {
		processed = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":         fmt.Sprintf("Successfully processed %d files.", len(processed)),
		"processed_files": processed,
		"files":           statuses,
	})
}

func (s *Server) ingestFile(r *http.Request, sessionID string, header *multipart.FileHeader) FileStatus {
	status := FileStatus{Filename: header.Filename}

	if !reader.Supported(header.Filename) {
		status.Status = statusSkipped
		status.Detail = "unsupported file format"
		return status
	}

	file, err := header.Open()
	if err != nil {
		status.Status = statusFailed
		status.Detail = "failed to open uploaded file"
		return status
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		status.Status = statusFailed
		status.Detail = "failed to read uploaded file"
		return status
	}

	text, err := reader.ExtractText(header.Filename, data)
	if err != nil {
		if errors.Is(err, reader.ErrUnsupportedFormat) {
			status.Status = statusSkipped
			status.Detail = "unsupported file format"
			return status
		}
		s.logger.Error("text extraction failed",
			"session_id", sessionID, "filename", header.Filename, "error", err)
		status.Status = statusFailed
		status.Detail = "failed to extract text"
		return status
	}

	stored, err := s.ingestor.Ingest(r.Context(), sessionID, header.Filename, text)
	if err != nil {
		s.logger.Error("ingestion failed",
			"session_id", sessionID, "filename", header.Filename, "error", err)
		status.Status = statusFailed
		status.Detail = "failed to index document"
		return status
	}
	if stored == 0 {
		status.Status = statusSkipped
		status.Detail = "no text content"
		return status
	}

	status.Status = statusIndexed
	status.Chunks = stored
	return status
}

type askRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

// parseAskRequest accepts either a JSON body or form values, so both
// browser clients and curl-style form posts work.
func parseAskRequest(r *http.Request) (askRequest, error) {
	var req askRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, fmt.Errorf("invalid form body: %w", err)
	}
	req.Question = r.FormValue("question")
	req.SessionID = r.FormValue("session_id")
	return req, nil
}

// handleAsk answers a question over the session's documents. The
// namespace is always queried; an empty result, not the session
// registry, selects the general-knowledge mode. The registry is display
// state and may be empty (a restart clears it) while the namespace
// still holds the session's chunks.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, err := parseAskRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%s", err)
		return
	}
	if req.Question == "" || req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "Question and session_id are required.")
		return
	}

	result, err := s.retriever.Retrieve(r.Context(), req.SessionID, req.Question)
	if err != nil {
		s.logger.Error("retrieval failed",
			"session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "An error occurred: %s", err)
		return
	}

	sources := schema.RetrievalResult{}
	input := synthesizer.NoContext()
	if !result.Empty() {
		sources = result
		input = synthesizer.WithContext(result)
	}

	candidates := s.synthesizer.Synthesize(r.Context(), req.Question, input)

	s.sessions.AppendTurn(req.SessionID, schema.Turn{Role: schema.RoleUser, Content: req.Question})
	s.sessions.AppendTurn(req.SessionID, schema.Turn{
		Role:       schema.RoleAssistant,
		Candidates: candidates,
		Sources:    sources,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": candidates,
		"sources":    sources,
	})
}

func (s *Server) handleSessionFiles(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"files":      s.sessions.Filenames(sessionID),
	})
}

func (s *Server) handleSessionTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"turns":      s.sessions.Transcript(sessionID),
	})
}
