package synthesizer

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aqua777/docbot/llm"
	"github.com/aqua777/docbot/outputparser"
	"github.com/aqua777/docbot/prompts"
	"github.com/aqua777/docbot/schema"
)

// CandidateTemperatures are the sampling temperatures for the parallel
// candidate generations, one candidate per temperature.
var CandidateTemperatures = []float32{0.2, 0.7, 1.0}

// DefaultCandidateTimeout bounds each candidate generation.
const DefaultCandidateTimeout = 60 * time.Second

// Input is the retrieval outcome a synthesis run is grounded on.
// WithContext grounds the answer on retrieved chunks; NoContext asks
// the model to answer from general knowledge and say so.
type Input struct {
	chunks  schema.RetrievalResult
	general bool
}

// WithContext grounds synthesis on the retrieved chunks.
func WithContext(chunks schema.RetrievalResult) Input {
	return Input{chunks: chunks}
}

// NoContext requests a general-knowledge answer.
func NoContext() Input {
	return Input{general: true}
}

// Grounded reports whether synthesis will be grounded on retrieved
// chunks. An input built from an empty retrieval is not grounded.
func (i Input) Grounded() bool {
	return !i.general && !i.chunks.Empty()
}

// Synthesizer generates answer candidates for a question by fanning the
// same prompt out to the model at several temperatures in parallel.
type Synthesizer struct {
	llm      llm.LLM
	grounded *prompts.PromptTemplate
	general  *prompts.PromptTemplate
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithCandidateTimeout bounds each candidate generation.
func WithCandidateTimeout(timeout time.Duration) Option {
	return func(s *Synthesizer) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// New creates a Synthesizer over the given LLM.
func New(model llm.LLM, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		llm:      model,
		grounded: prompts.NewGroundedAnswerPrompt(),
		general:  prompts.NewGeneralKnowledgePrompt(),
		timeout:  DefaultCandidateTimeout,
		logger:   slog.New(slog.NewJSONHandler(os.Stderr, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Synthesize generates one candidate per temperature in
// CandidateTemperatures, in parallel, and returns them in temperature
// order. It never returns an error: a failed or unparseable generation
// becomes a fallback candidate in its slot, so one bad candidate never
// takes down the others.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, input Input) []schema.Candidate {
	grounded := input.Grounded()
	prompt := s.grounded
	vars := map[string]string{
		"context":  prompts.FormatContext(input.chunks),
		"question": question,
	}
	if !grounded {
		prompt = s.general
		vars = map[string]string{"question": question}
	}
	messages := prompt.FormatMessages(vars)

	candidates := make([]schema.Candidate, len(CandidateTemperatures))
	var wg sync.WaitGroup
	for i, temperature := range CandidateTemperatures {
		wg.Add(1)
		go func(i int, temperature float32) {
			defer wg.Done()
			candidates[i] = s.generate(ctx, messages, temperature, grounded)
		}(i, temperature)
	}
	wg.Wait()

	return candidates
}

func (s *Synthesizer) generate(ctx context.Context, messages []llm.ChatMessage, temperature float32, grounded bool) schema.Candidate {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.llm.ChatWithFormat(ctx, messages, llm.JSONResponseFormat(), llm.WithTemperature(temperature))
	if err != nil {
		s.logger.Error("candidate generation failed", "temperature", temperature, "error", err)
		return outputparser.FailureCandidate(err)
	}

	c := outputparser.ParseCandidate(raw)
	if !grounded {
		c = stripGrounding(c)
	}
	return c
}

// stripGrounding enforces the general-knowledge contract on a parsed
// candidate: no structured data, no document citations, whatever the
// model actually returned. The sentinel keeps the raw output in data so
// an unparseable response stays diagnosable.
func stripGrounding(c schema.Candidate) schema.Candidate {
	if c.Answer.Summary == outputparser.SentinelSummary {
		return c
	}
	c.Answer.Data = nil
	c.SourceDocuments = []string{}
	return c
}
