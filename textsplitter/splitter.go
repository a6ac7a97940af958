package textsplitter

import "strings"

const (
	// DefaultChunkSize and DefaultChunkOverlap match the ingestion
	// contract: 1000-character chunks with 200 characters of overlap.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200

	DefaultParagraphSep  = "\n\n"
	DefaultSeparator     = " "
	DefaultChunkingRegex = `[^,.;。？！]+[,.;。？！]?|[,.;。？！]`
)

// textSplit holds one intermediate split and its measured size.
type textSplit struct {
	text       string
	isSentence bool
	tokenSize  int
}

// Splitter splits text into bounded chunks, preferring natural
// boundaries: paragraphs first, then sentences, then a punctuation
// regex, then words, then single characters. Adjacent chunks overlap by
// up to ChunkOverlap so no boundary severs all shared context.
//
// Splitting is deterministic: the same input always yields the same
// chunk sequence, which the ingestion pipeline relies on for idempotent
// re-ingestion.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
	Tokenizer    Tokenizer
	Segmenter    SentenceSegmenter

	splitFns    []func(string) []string
	subSplitFns []func(string) []string
}

// NewSplitter creates a Splitter. Zero or nil arguments select the
// defaults: 1000/200 with a rune tokenizer, so sizes are character
// counts, and regex-based sentence segmentation.
func NewSplitter(chunkSize, chunkOverlap int, tokenizer Tokenizer, segmenter SentenceSegmenter) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	if tokenizer == nil {
		tokenizer = NewRuneTokenizer()
	}
	if segmenter == nil {
		segmenter = NewRegexSegmenter("")
	}

	s := &Splitter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		Tokenizer:    tokenizer,
		Segmenter:    segmenter,
	}

	s.splitFns = []func(string) []string{
		splitBySep(DefaultParagraphSep),
		segmenter.Segment,
	}
	s.subSplitFns = []func(string) []string{
		splitByRegex(DefaultChunkingRegex),
		splitBySep(DefaultSeparator),
		splitByChar(),
	}
	return s
}

// SplitText splits text into chunks of at most ChunkSize. Empty or
// whitespace-only input yields no chunks.
func (s *Splitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	splits := s.split(text, s.ChunkSize)
	chunks := s.merge(splits, s.ChunkSize)
	return s.postprocess(chunks)
}

// split recursively breaks text down until every piece fits the budget.
func (s *Splitter) split(text string, chunkSize int) []textSplit {
	size := s.tokenSize(text)
	if size <= chunkSize {
		return []textSplit{{text: text, isSentence: true, tokenSize: size}}
	}

	pieces, isSentence := s.splitsByFns(text)
	var splits []textSplit
	for _, piece := range pieces {
		size := s.tokenSize(piece)
		if size <= chunkSize {
			splits = append(splits, textSplit{text: piece, isSentence: isSentence, tokenSize: size})
		} else {
			splits = append(splits, s.split(piece, chunkSize)...)
		}
	}
	return splits
}

// merge packs splits into chunks, carrying up to ChunkOverlap from the
// tail of each closed chunk into the next one. Carried overlap is shed
// from the front whenever keeping it would push a chunk past the budget,
// so no chunk ever exceeds chunkSize.
func (s *Splitter) merge(splits []textSplit, chunkSize int) []string {
	type bufItem struct {
		text string
		size int
	}
	var (
		chunks      []string
		curChunk    []bufItem
		curChunkLen int
		newChunk    = true
	)

	closeChunk := func() {
		var sb strings.Builder
		for _, item := range curChunk {
			sb.WriteString(item.text)
		}
		chunks = append(chunks, sb.String())

		lastChunk := curChunk
		curChunk = nil
		curChunkLen = 0
		newChunk = true

		for i := len(lastChunk) - 1; i >= 0; i-- {
			if curChunkLen+lastChunk[i].size > s.ChunkOverlap {
				break
			}
			curChunkLen += lastChunk[i].size
			curChunk = append([]bufItem{lastChunk[i]}, curChunk...)
		}
	}

	for _, split := range splits {
		if curChunkLen+split.tokenSize > chunkSize {
			if !newChunk {
				closeChunk()
			}
			// Only carried overlap remains; drop from the front until
			// the split fits.
			for len(curChunk) > 0 && curChunkLen+split.tokenSize > chunkSize {
				curChunkLen -= curChunk[0].size
				curChunk = curChunk[1:]
			}
		}
		curChunk = append(curChunk, bufItem{text: split.text, size: split.tokenSize})
		curChunkLen += split.tokenSize
		newChunk = false
	}

	if !newChunk {
		var sb strings.Builder
		for _, item := range curChunk {
			sb.WriteString(item.text)
		}
		chunks = append(chunks, sb.String())
	}
	return chunks
}

func (s *Splitter) postprocess(chunks []string) []string {
	var out []string
	for _, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func (s *Splitter) tokenSize(text string) int {
	return len(s.Tokenizer.Encode(text))
}

// splitsByFns applies the primary split functions (paragraph, sentence)
// and falls back to sub-sentence splits (regex, word, character) when
// neither produces more than one piece.
func (s *Splitter) splitsByFns(text string) ([]string, bool) {
	for _, fn := range s.splitFns {
		if splits := fn(text); len(splits) > 1 {
			return splits, true
		}
	}
	var splits []string
	for _, fn := range s.subSplitFns {
		if splits = fn(text); len(splits) > 1 {
			break
		}
	}
	return splits, false
}

var _ TextSplitter = (*Splitter)(nil)
