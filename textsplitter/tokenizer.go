package textsplitter

import (
	"strconv"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// RuneTokenizer counts every rune as one token, which makes the chunk
// size and overlap plain character budgets. This is the tokenizer the
// ingestion pipeline uses: chunk size 1000 / overlap 200 then mean
// 1000 and 200 characters.
type RuneTokenizer struct{}

func NewRuneTokenizer() *RuneTokenizer {
	return &RuneTokenizer{}
}

func (t *RuneTokenizer) Encode(text string) []string {
	return strings.Split(text, "")
}

// WordTokenizer counts whitespace-separated words.
type WordTokenizer struct{}

func NewWordTokenizer() *WordTokenizer {
	return &WordTokenizer{}
}

func (t *WordTokenizer) Encode(text string) []string {
	return strings.Fields(text)
}

// TikTokenTokenizer counts model tokens using tiktoken encodings, for
// callers that want the budget expressed in LLM tokens rather than
// characters.
type TikTokenTokenizer struct {
	encoding *tiktoken.Tiktoken
}

// NewTikTokenTokenizer creates a tokenizer for the given encoding name.
// An empty name defaults to cl100k_base.
func NewTikTokenTokenizer(encodingName string) (*TikTokenTokenizer, error) {
	if encodingName == "" {
		encodingName = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, err
	}
	return &TikTokenTokenizer{encoding: enc}, nil
}

func (t *TikTokenTokenizer) Encode(text string) []string {
	// The splitter only uses len(); stringified ids satisfy the interface.
	ids := t.encoding.Encode(text, nil, nil)
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = strconv.Itoa(id)
	}
	return tokens
}
