package textsplitter

import (
	"fmt"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// RegexSegmenter segments text with a punctuation regex. It is the
// zero-dependency fallback and handles CJK sentence terminators too.
type RegexSegmenter struct {
	regexStr string
}

func NewRegexSegmenter(regexStr string) *RegexSegmenter {
	if regexStr == "" {
		regexStr = DefaultChunkingRegex
	}
	return &RegexSegmenter{regexStr: regexStr}
}

func (s *RegexSegmenter) Segment(text string) []string {
	return splitByRegex(s.regexStr)(text)
}

// EnglishSegmenter uses the neurosnap/sentences Punkt tokenizer with its
// bundled English training data, which keeps abbreviations like "Dr." or
// "e.g." from being mistaken for sentence boundaries.
type EnglishSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewEnglishSegmenter creates a segmenter backed by the embedded English
// Punkt training data.
func NewEnglishSegmenter() (*EnglishSegmenter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load english sentence tokenizer: %w", err)
	}
	return &EnglishSegmenter{tokenizer: tok}, nil
}

func (s *EnglishSegmenter) Segment(text string) []string {
	sents := s.tokenizer.Tokenize(text)
	out := make([]string, len(sents))
	for i, sent := range sents {
		out[i] = sent.Text
	}
	return out
}
