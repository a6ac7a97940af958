package textsplitter

// TextSplitter is the interface for splitting raw document text into chunks.
type TextSplitter interface {
	SplitText(text string) []string
}

// Tokenizer measures text against the chunk budget. The splitter only
// cares about len(Encode(text)), so a tokenizer defines the unit the
// chunk size and overlap are counted in (runes, words, model tokens).
type Tokenizer interface {
	Encode(text string) []string
}

// SentenceSegmenter is the primary strategy for breaking text into
// sentences before the splitter falls back to coarser cuts.
type SentenceSegmenter interface {
	Segment(text string) []string
}
