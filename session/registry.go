package session

import (
	"sync"

	"github.com/aqua777/docbot/schema"
)

// Registry tracks per-session display state that does not live in the
// vector index: which files a session has uploaded and its conversation
// transcript. Sessions are created implicitly on first use. The
// registry is never consulted for retrieval decisions; the vector
// namespace is the source of truth, and a restart losing this state
// must not change answers.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*state
}

type state struct {
	filenames []string
	fileSet   map[string]struct{}
	turns     []schema.Turn
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*state),
	}
}

func (r *Registry) get(sessionID string) *state {
	s, ok := r.sessions[sessionID]
	if !ok {
		s = &state{fileSet: make(map[string]struct{})}
		r.sessions[sessionID] = s
	}
	return s
}

// RecordUpload registers filenames as ingested for the session.
// Re-uploading a filename is not an error; it is recorded once, in
// first-seen order.
func (r *Registry) RecordUpload(sessionID string, filenames ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(sessionID)
	for _, name := range filenames {
		if _, seen := s.fileSet[name]; seen {
			continue
		}
		s.fileSet[name] = struct{}{}
		s.filenames = append(s.filenames, name)
	}
}

// Filenames returns the files uploaded for the session, in upload
// order. An unknown session yields an empty slice.
func (r *Registry) Filenames(sessionID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return []string{}
	}
	out := make([]string, len(s.filenames))
	copy(out, s.filenames)
	return out
}

// AppendTurn records a conversation turn for the session.
func (r *Registry) AppendTurn(sessionID string, turn schema.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.get(sessionID)
	s.turns = append(s.turns, turn)
}

// Transcript returns a copy of the session's conversation history.
func (r *Registry) Transcript(sessionID string) []schema.Turn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return []schema.Turn{}
	}
	out := make([]schema.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}
