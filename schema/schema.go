package schema

import "fmt"

// RecordMetadata is the metadata stored alongside every vector record.
// It carries everything needed to rebuild a retrieval context without
// consulting any store other than the vector index itself.
type RecordMetadata struct {
	Text     string `json:"text"`
	Filename string `json:"filename"`
}

// VectorRecord is one (id, embedding, metadata) triple stored under a
// session namespace in the vector index.
type VectorRecord struct {
	ID       string         `json:"id"`
	Values   []float64      `json:"values"`
	Metadata RecordMetadata `json:"metadata"`
}

// ChunkRecordID derives the deterministic record identifier for a chunk.
// The same (filename, chunk index) pair always maps to the same id, so
// re-ingesting an unchanged document overwrites its records instead of
// duplicating them.
func ChunkRecordID(filename string, index int) string {
	return fmt.Sprintf("chunk_%s_%d", filename, index)
}

// RetrievedChunk is one match returned by a vector index query.
type RetrievedChunk struct {
	Text     string  `json:"content"`
	Filename string  `json:"filename"`
	Score    float64 `json:"-"`
}

// RetrievalResult is an ordered list of matches, highest score first.
type RetrievalResult []RetrievedChunk

// Empty reports whether retrieval found no matching chunks. An empty
// result selects the general-knowledge generation mode downstream; it is
// never treated as an error.
func (r RetrievalResult) Empty() bool {
	return len(r) == 0
}

// Filenames returns the distinct source filenames across all matches,
// in first-seen order.
func (r RetrievalResult) Filenames() []string {
	seen := make(map[string]bool, len(r))
	var names []string
	for _, c := range r {
		if !seen[c.Filename] {
			seen[c.Filename] = true
			names = append(names, c.Filename)
		}
	}
	return names
}

// Answer is the inner answer object of the generation contract.
// Data holds optional structured content (nested maps/slices of
// primitives) and is nil when the model has nothing tabular to show.
type Answer struct {
	Summary string `json:"summary"`
	Data    any    `json:"data"`
}

// Candidate is one independently generated answer instance. Three of
// them are produced per question, one per sampling temperature.
type Candidate struct {
	Answer          Answer   `json:"answer"`
	Reasoning       string   `json:"reasoning"`
	SourceDocuments []string `json:"source_documents"`
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a session's conversation transcript. User turns
// hold free text in Content; assistant turns hold the generated
// candidates plus the retrieval sources they were grounded on. Turns are
// never mutated after creation.
type Turn struct {
	Role       Role            `json:"role"`
	Content    string          `json:"content,omitempty"`
	Candidates []Candidate     `json:"candidates,omitempty"`
	Sources    RetrievalResult `json:"sources,omitempty"`
}
